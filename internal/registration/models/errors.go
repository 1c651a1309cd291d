package models

import (
	"sampad/pkg/platform/sentinel"
	"sampad/pkg/registrationform"
)

// UniqueViolation is returned by stores when a write collides with an existing
// national code or phone. It unwraps to sentinel.ErrAlreadyUsed.
type UniqueViolation struct {
	Field string
}

func (e *UniqueViolation) Error() string {
	return e.Field + " already registered"
}

func (e *UniqueViolation) Unwrap() error {
	return sentinel.ErrAlreadyUsed
}

func NationalCodeTaken() error { return &UniqueViolation{Field: registrationform.FieldNationalCode} }
func PhoneTaken() error        { return &UniqueViolation{Field: registrationform.FieldPhone} }
