// Package store persists registrations. Every backend enforces uniqueness of
// national code and phone atomically and reports collisions as
// *models.UniqueViolation.
package store

import (
	"errors"
	"fmt"
	"strings"

	"sampad/internal/registration/models"
	"sampad/pkg/platform/sentinel"
)

var errRegistrationRequired = errors.New("registration is required")

// violationFor maps a constraint or column name onto the field it guards.
func violationFor(name string) error {
	switch {
	case strings.Contains(name, "national_code"):
		return models.NationalCodeTaken()
	case strings.Contains(name, "phone"):
		return models.PhoneTaken()
	}
	return fmt.Errorf("unique constraint %q: %w", name, sentinel.ErrAlreadyUsed)
}
