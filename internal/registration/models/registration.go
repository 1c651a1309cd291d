package models

import (
	"time"

	id "sampad/pkg/domain"
	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/payment"
	"sampad/pkg/registrationform"
	"sampad/pkg/validation"
)

// Registration is one participant's sign-up. It is created once and never updated here.
type Registration struct {
	ID           id.RegistrationID
	Name         string
	IsSampad     bool
	NationalCode string
	Phone        string
	// IsRegistered and Date are reserved for the payment-confirmation workflow;
	// creation always leaves them false and unset.
	IsRegistered bool
	Date         *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tier returns the fee tier this registration falls into.
func (r *Registration) Tier() payment.Tier {
	return payment.TierFor(r.IsSampad)
}

// NewRegistration builds a registration from data that already passed the shared rules.
// The invariants are re-asserted so no store ever receives a malformed row.
func NewRegistration(regID id.RegistrationID, data registrationform.Validated, now time.Time) (*Registration, error) {
	if regID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInternal, "registration id must be assigned")
	}
	if data.Name == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "registration name cannot be empty")
	}
	if len([]rune(data.Name)) > registrationform.MaxNameLength {
		return nil, dErrors.New(dErrors.CodeInternal, "registration name exceeds maximum length")
	}
	if !validation.IsDigits(data.NationalCode, registrationform.NationalCodeDigits) {
		return nil, dErrors.New(dErrors.CodeInternal, "registration national code is malformed")
	}
	if !validation.IsMobile(data.Phone) {
		return nil, dErrors.New(dErrors.CodeInternal, "registration phone is malformed")
	}
	return &Registration{
		ID:           regID,
		Name:         data.Name,
		IsSampad:     data.IsSampad,
		NationalCode: data.NationalCode,
		Phone:        data.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Taken reports which unique values already belong to some registration.
type Taken struct {
	NationalCode bool
	Phone        bool
}

// Result is what a successful registration returns to the caller.
type Result struct {
	Registration *Registration
	Payment      payment.Descriptor
}
