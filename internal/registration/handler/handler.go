package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sampad/internal/registration/models"
	id "sampad/pkg/domain"
	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/payment"
	"sampad/pkg/platform/httputil"
	request "sampad/pkg/platform/middleware/request"
	"sampad/pkg/registrationform"
	"sampad/pkg/validation"
)

// Service defines the registration operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Submit(ctx context.Context, form registrationform.Form, prior validation.FieldErrors) (*models.Result, error)
	List(ctx context.Context) ([]*models.Registration, error)
	Get(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	PaymentFor(reg *models.Registration) payment.Descriptor
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes. guard wraps the submission endpoint only; pass nil for none.
func (h *Handler) Register(r chi.Router, guard func(http.Handler) http.Handler) {
	submit := http.Handler(http.HandlerFunc(h.HandleSubmit))
	if guard != nil {
		submit = guard(submit)
	}
	r.Method(http.MethodPost, "/registrations", submit)
	r.Get("/registrations", h.HandleList)
	r.Get("/registrations/{id}", h.HandleGet)
}

// HandleSubmit validates and stores a registration and answers with payment instructions.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	body, ok := httputil.DecodeJSON[RawForm](w, r, h.logger)
	if !ok {
		return
	}
	// mistyped fields are validated with the rest of the form
	form, typeErrs := body.ToForm()
	res, err := h.service.Submit(ctx, form, typeErrs)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.InfoContext(ctx, "registration rejected", "error", err, "request_id", requestID)
		} else {
			h.logger.ErrorContext(ctx, "registration failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(ctx, w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &RegisterResponse{
		ID:      res.Registration.ID.String(),
		Payment: toPaymentResponse(ctx, res.Payment),
	})
}

// HandleList returns every registration.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regs, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list registrations failed", "error", err, "request_id", request.GetRequestID(ctx))
		httputil.WriteError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(regs))
}

// HandleGet returns one registration with its payment instructions.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(ctx, w, dErrors.New(dErrors.CodeBadRequest, "invalid registration id"))
		return
	}

	reg, err := h.service.Get(ctx, regID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "get registration failed", "error", err, "request_id", requestID, "registration_id", regID.String())
		}
		httputil.WriteError(ctx, w, err)
		return
	}

	resp := toRegistrationResponse(reg)
	pay := toPaymentResponse(ctx, h.service.PaymentFor(reg))
	resp.Payment = &pay
	httputil.WriteJSON(w, http.StatusOK, resp)
}
