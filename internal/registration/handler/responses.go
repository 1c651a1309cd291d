package handler

import (
	"context"
	"time"

	"sampad/internal/registration/models"
	"sampad/pkg/i18n"
	"sampad/pkg/payment"
)

type PaymentResponse struct {
	Amount  int64  `json:"amount"`
	Card    string `json:"card"`
	Owner   string `json:"owner"`
	Message string `json:"message"`
}

type RegisterResponse struct {
	ID      string          `json:"id"`
	Payment PaymentResponse `json:"payment"`
}

type RegistrationResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	IsSampad     bool             `json:"isSampad"`
	NationalCode string           `json:"nationalCode"`
	Phone        string           `json:"phone"`
	IsRegistered bool             `json:"isRegistered"`
	Date         *string          `json:"date"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Payment      *PaymentResponse `json:"payment,omitempty"`
}

type ListResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
	Total         int                    `json:"total"`
}

func toPaymentResponse(ctx context.Context, p payment.Descriptor) PaymentResponse {
	return PaymentResponse{
		Amount:  p.Amount,
		Card:    p.CardNumber,
		Owner:   p.Owner,
		Message: i18n.T(ctx, p.MessageKey),
	}
}

func toRegistrationResponse(reg *models.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:           reg.ID.String(),
		Name:         reg.Name,
		IsSampad:     reg.IsSampad,
		NationalCode: reg.NationalCode,
		Phone:        reg.Phone,
		IsRegistered: reg.IsRegistered,
		CreatedAt:    reg.CreatedAt,
		UpdatedAt:    reg.UpdatedAt,
	}
	if reg.Date != nil {
		d := reg.Date.Format(time.DateOnly)
		resp.Date = &d
	}
	return resp
}

func toListResponse(regs []*models.Registration) ListResponse {
	out := make([]RegistrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, toRegistrationResponse(reg))
	}
	return ListResponse{Registrations: out, Total: len(out)}
}
