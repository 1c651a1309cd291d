// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "sampad/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a token ID where a registration ID is expected.
type (
	RegistrationID uuid.UUID
	TokenID        uuid.UUID
)

// NewRegistrationID assigns a fresh identifier. Registrations receive exactly one, at creation.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// NewTokenID returns a random anti-forgery token identifier.
func NewTokenID() TokenID { return TokenID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseRegistrationID(s string) (RegistrationID, error) {
	id, err := parseUUID(s, "registration ID")
	return RegistrationID(id), err
}

func ParseTokenID(s string) (TokenID, error) {
	id, err := parseUUID(s, "token ID")
	return TokenID(id), err
}

func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id TokenID) String() string        { return uuid.UUID(id).String() }

// MarshalText renders the canonical UUID form in JSON and logs.
func (id RegistrationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RegistrationID) UnmarshalText(b []byte) error {
	parsed, err := ParseRegistrationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TokenID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic. Nil UUIDs are rejected at the boundary.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
