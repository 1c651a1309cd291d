// Package antiforgery issues one-time submission tokens and rejects form posts that
// do not carry a fresh, unused one.
package antiforgery

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	id "sampad/pkg/domain"
	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/requestcontext"
)

// HeaderName is the request header carrying the token.
const HeaderName = "X-CSRF-TOKEN"

const (
	audience = "registration"
	keyInfo  = "sampad antiforgery signing key v1"
	keySize  = 32
)

// Claims are the registered JWT claims of a submission token.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is an issued token and when it stops being accepted.
type Token struct {
	Value     string
	ID        id.TokenID
	ExpiresAt time.Time
}

// Issuer signs and verifies submission tokens with an HKDF-derived HS256 key.
type Issuer struct {
	key []byte
	ttl time.Duration
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("antiforgery secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("antiforgery ttl must be positive")
	}
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}
	return &Issuer{key: key, ttl: ttl}, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a token valid from the request time for the configured TTL.
func (i *Issuer) Issue(ctx context.Context) (*Token, error) {
	now := requestcontext.Now(ctx)
	tokenID := id.NewTokenID()
	expiresAt := jwt.NewNumericDate(now.Add(i.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	}).SignedString(i.key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign antiforgery token")
	}
	return &Token{Value: signed, ID: tokenID, ExpiresAt: expiresAt.Time}, nil
}

// Verify checks signature, algorithm, audience and expiry against the request time.
// Every failure is a CodeForbidden domain error.
func (i *Issuer) Verify(ctx context.Context, raw string) (*Token, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeForbidden, "antiforgery token missing")
	}
	now := requestcontext.Now(ctx)
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeForbidden, "antiforgery token expired")
		}
		return nil, dErrors.New(dErrors.CodeForbidden, "antiforgery token invalid")
	}
	tokenID, err := id.ParseTokenID(claims.ID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "antiforgery token invalid")
	}
	return &Token{Value: raw, ID: tokenID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
