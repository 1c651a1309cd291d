// Package service orchestrates the registration workflow: shared rules, the
// uniqueness lookup, the transactional insert and the payment descriptor.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	registrationmetrics "sampad/internal/registration/metrics"
	"sampad/internal/registration/models"
	id "sampad/pkg/domain"
	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/payment"
	"sampad/pkg/platform/outbox"
	"sampad/pkg/platform/privacy"
	"sampad/pkg/platform/sentinel"
	"sampad/pkg/platform/tracer"
	"sampad/pkg/registrationform"
	"sampad/pkg/requestcontext"
	"sampad/pkg/validation"
)

// Store is the persistence contract. Create must enforce uniqueness of national
// code and phone atomically and report collisions as *models.UniqueViolation.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindTaken(ctx context.Context, nationalCode, phone string) (models.Taken, error)
	FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	List(ctx context.Context) ([]*models.Registration, error)
}

// OutboxAppender receives events written in the registration transaction.
type OutboxAppender interface {
	Append(ctx context.Context, entry *outbox.Entry) error
}

// Service runs the registration workflow.
type Service struct {
	store   Store
	tx      StoreTx
	outbox  OutboxAppender
	logger  *slog.Logger
	metrics *registrationmetrics.Metrics
	tracer  tracer.Tracer
	account payment.Account
	newID   func() id.RegistrationID
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  slog.Default(),
		tracer:  tracer.NewNoop(),
		account: payment.DefaultAccount,
		newID:   id.NewRegistrationID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newInMemoryStoreTx()
	}
	return s
}

// Validate applies the shared rules and then the uniqueness lookup for every
// field that is well formed. prior holds errors found before the form was built,
// such as mistyped JSON values; they take precedence over rule failures on the
// same field. Violations come back as validation.FieldErrors wrapped in a
// CodeValidation domain error.
func (s *Service) Validate(ctx context.Context, form registrationform.Form, prior validation.FieldErrors) (*registrationform.Validated, error) {
	ctx, span := s.tracer.Start(ctx, "registration.validate")
	data, err := s.validate(ctx, form, prior)
	span.End(err)
	return data, err
}

func (s *Service) validate(ctx context.Context, form registrationform.Form, prior validation.FieldErrors) (*registrationform.Validated, error) {
	form.Normalize()
	data, ruleErrs, err := registrationform.Check(form)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to run validation rules")
	}
	fieldErrs := append(validation.FieldErrors(nil), prior...)
	for _, fe := range ruleErrs {
		fieldErrs = fieldErrs.Add(fe)
	}

	nationalCode, phone := form.NationalCode, form.Phone
	if fieldErrs.HasField(registrationform.FieldNationalCode) {
		nationalCode = ""
	}
	if fieldErrs.HasField(registrationform.FieldPhone) {
		phone = ""
	}
	if nationalCode != "" || phone != "" {
		taken, err := s.store.FindTaken(ctx, nationalCode, phone)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check registration uniqueness")
		}
		if taken.NationalCode {
			fieldErrs = fieldErrs.Add(duplicate(registrationform.FieldNationalCode))
		}
		if taken.Phone {
			fieldErrs = fieldErrs.Add(duplicate(registrationform.FieldPhone))
		}
	}

	if len(fieldErrs) > 0 {
		return nil, s.rejected(fieldErrs.Ordered(registrationform.FieldOrder))
	}
	return data, nil
}

// Register persists already-validated data and returns the new id with its
// payment descriptor. A unique violation raised at insert time is reported as a
// duplicate-value field error on the colliding field.
func (s *Service) Register(ctx context.Context, data registrationform.Validated) (*models.Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registration.register", tracer.Bool("is_sampad", data.IsSampad))

	var reg *models.Registration
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := models.NewRegistration(s.newID(), data, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.store.Create(txCtx, r); err != nil {
			return err
		}
		if err := s.appendCreated(txCtx, r); err != nil {
			return err
		}
		reg = r
		return nil
	})
	if err != nil {
		err = s.registerErr(ctx, err)
		span.End(err)
		return nil, err
	}

	desc := payment.For(reg.Tier(), s.account)
	span.SetAttributes(tracer.String("registration_id", reg.ID.String()), tracer.String("tier", string(desc.Tier)))
	span.End(nil)

	if s.metrics != nil {
		s.metrics.IncrementCreated(string(desc.Tier))
		s.metrics.ObserveRegister(start)
	}
	s.logger.InfoContext(ctx, "registration created",
		"registration_id", reg.ID.String(),
		"tier", string(desc.Tier),
		"phone", privacy.MaskPhone(reg.Phone),
		"national_code", privacy.MaskNationalCode(reg.NationalCode),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Result{Registration: reg, Payment: desc}, nil
}

// Submit validates form and registers it.
func (s *Service) Submit(ctx context.Context, form registrationform.Form, prior validation.FieldErrors) (*models.Result, error) {
	data, err := s.Validate(ctx, form, prior)
	if err != nil {
		return nil, err
	}
	return s.Register(ctx, *data)
}

// List returns every registration ordered by creation time.
func (s *Service) List(ctx context.Context) ([]*models.Registration, error) {
	regs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return regs, nil
}

// Get returns one registration.
func (s *Service) Get(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	if regID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "registration ID required")
	}
	reg, err := s.store.FindByID(ctx, regID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	return reg, nil
}

// PaymentFor recomputes the descriptor for a stored registration.
func (s *Service) PaymentFor(reg *models.Registration) payment.Descriptor {
	return payment.For(reg.Tier(), s.account)
}

func (s *Service) registerErr(ctx context.Context, err error) error {
	var uv *models.UniqueViolation
	if errors.As(err, &uv) {
		if s.metrics != nil {
			s.metrics.IncrementConflict(uv.Field)
		}
		s.logger.WarnContext(ctx, "registration lost uniqueness race",
			"field", uv.Field,
			"request_id", requestcontext.RequestID(ctx),
		)
		return s.rejected(validation.FieldErrors{duplicate(uv.Field)})
	}
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "registration already exists")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register")
}

func (s *Service) rejected(fieldErrs validation.FieldErrors) error {
	if s.metrics != nil {
		s.metrics.RecordValidationFailures(fieldErrs)
	}
	return dErrors.Wrap(fieldErrs, dErrors.CodeValidation, "validation failed")
}

func duplicate(field string) validation.FieldError {
	return validation.FieldError{Field: field, Kind: validation.KindDuplicate, Key: field + ".unique"}
}
