package models

import (
	"time"

	id "sampad/pkg/domain"
	"sampad/pkg/payment"
)

// EventRegistrationCreated is the outbox event type for new registrations.
const EventRegistrationCreated = "registration.created"

// AggregateRegistration is the outbox aggregate type.
const AggregateRegistration = "registration"

// RegistrationCreated is published for downstream payment confirmation.
// Personal identifiers are masked.
type RegistrationCreated struct {
	RegistrationID id.RegistrationID `json:"registrationId"`
	Tier           payment.Tier      `json:"tier"`
	Amount         int64             `json:"amount"`
	PhoneMasked    string            `json:"phoneMasked"`
	Client         ClientPlatform    `json:"client"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// ClientPlatform summarizes the submitting device.
type ClientPlatform struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile"`
}
