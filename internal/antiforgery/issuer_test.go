package antiforgery

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/requestcontext"
)

const testSecret = "test-antiforgery-secret-0123456789"

var issuedAt = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(testSecret, 30*time.Minute)
	require.NoError(t, err)
	return issuer
}

func TestNewIssuer_RejectsBadConfig(t *testing.T) {
	_, err := NewIssuer("", time.Minute)
	assert.Error(t, err)
	_, err = NewIssuer(testSecret, 0)
	assert.Error(t, err)
}

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.Issue(at(issuedAt))
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(30*time.Minute), token.ExpiresAt.UTC())
	assert.False(t, token.ID.IsNil())

	verified, err := issuer.Verify(at(issuedAt.Add(time.Minute)), token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.ID, verified.ID)
	assert.True(t, token.ExpiresAt.Equal(verified.ExpiresAt))
}

func TestIssuer_TokensAreDistinct(t *testing.T) {
	issuer := newTestIssuer(t)
	a, err := issuer.Issue(at(issuedAt))
	require.NoError(t, err)
	b, err := issuer.Issue(at(issuedAt))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Value, b.Value)
}

func TestIssuer_VerifyRejects(t *testing.T) {
	issuer := newTestIssuer(t)
	token, err := issuer.Issue(at(issuedAt))
	require.NoError(t, err)

	other, err := NewIssuer("a-different-secret-entirely", 30*time.Minute)
	require.NoError(t, err)
	foreign, err := other.Issue(at(issuedAt))
	require.NoError(t, err)

	wrongAudience, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        token.ID.String(),
		Audience:  jwt.ClaimStrings{"admin"},
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}}).SignedString(issuer.key)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:       token.ID.String(),
		Audience: jwt.ClaimStrings{audience},
	}}).SignedString(issuer.key)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        token.ID.String(),
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct {
		raw string
		now time.Time
		msg string
	}{
		"empty":          {"", issuedAt, "antiforgery token missing"},
		"garbage":        {"not.a.jwt", issuedAt, "antiforgery token invalid"},
		"tampered":       {token.Value[:len(token.Value)-2] + "xx", issuedAt, "antiforgery token invalid"},
		"expired":        {token.Value, issuedAt.Add(31 * time.Minute), "antiforgery token expired"},
		"foreign key":    {foreign.Value, issuedAt, "antiforgery token invalid"},
		"wrong audience": {wrongAudience, issuedAt, "antiforgery token invalid"},
		"no expiry":      {noExpiry, issuedAt, "antiforgery token invalid"},
		"alg none":       {noneAlg, issuedAt, "antiforgery token invalid"},
		"truncated":      {strings.Split(token.Value, ".")[0], issuedAt, "antiforgery token invalid"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Verify(at(tc.now), tc.raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
			assert.EqualError(t, err, tc.msg)
		})
	}
}
