package service

import (
	"context"
	"encoding/json"
	"fmt"

	"sampad/internal/registration/models"
	"sampad/pkg/payment"
	"sampad/pkg/platform/outbox"
	"sampad/pkg/platform/privacy"
	"sampad/pkg/requestcontext"
)

// appendCreated writes the registration.created event inside the caller's transaction.
func (s *Service) appendCreated(ctx context.Context, reg *models.Registration) error {
	if s.outbox == nil {
		return nil
	}
	client := requestcontext.ClientInfo(ctx)
	desc := payment.For(reg.Tier(), s.account)
	payload, err := json.Marshal(models.RegistrationCreated{
		RegistrationID: reg.ID,
		Tier:           desc.Tier,
		Amount:         desc.Amount,
		PhoneMasked:    privacy.MaskPhone(reg.Phone),
		Client: models.ClientPlatform{
			Browser: client.Browser,
			OS:      client.OS,
			Mobile:  client.Mobile,
		},
		OccurredAt: reg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal registration event: %w", err)
	}
	entry := outbox.NewEntry(models.AggregateRegistration, reg.ID.String(), models.EventRegistrationCreated, payload, reg.CreatedAt)
	if err := s.outbox.Append(ctx, entry); err != nil {
		return fmt.Errorf("append registration event: %w", err)
	}
	return nil
}
