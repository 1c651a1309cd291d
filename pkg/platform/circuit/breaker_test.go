package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := New("kafka", WithFailureThreshold(2), WithSuccessThreshold(2))

	assert.False(t, b.RecordFailure())
	assert.True(t, b.RecordFailure())
	assert.True(t, b.IsOpen())
	assert.False(t, b.RecordFailure(), "already open")
}

func TestSuccessResetsFailureCountWhileClosed(t *testing.T) {
	b := New("kafka", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	assert.False(t, b.RecordFailure())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerClosesAfterConsecutiveSuccesses(t *testing.T) {
	b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()

	assert.False(t, b.RecordSuccess())
	b.RecordFailure()
	assert.False(t, b.RecordSuccess(), "a failure restarts the success streak")
	assert.True(t, b.RecordSuccess())
	assert.Equal(t, "closed", b.State().String())
}

func TestReset(t *testing.T) {
	b := New("kafka", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, "kafka", b.Name())
}
