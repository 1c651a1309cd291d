package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sampad/pkg/domain-errors"
)

func TestParseRegistrationID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRegistrationID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRegistrationID("42")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseRegistrationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round trips a generated id", func(t *testing.T) {
		generated := NewRegistrationID()
		parsed, err := ParseRegistrationID(generated.String())
		require.NoError(t, err)
		assert.Equal(t, generated, parsed)
		assert.False(t, parsed.IsNil())
	})
}

func TestNewRegistrationID_Unique(t *testing.T) {
	seen := make(map[RegistrationID]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewRegistrationID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestRegistrationID_JSONText(t *testing.T) {
	generated := NewRegistrationID()
	text, err := generated.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, generated.String(), string(text))

	var decoded RegistrationID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, generated, decoded)
	assert.Error(t, decoded.UnmarshalText([]byte("nope")))
}
