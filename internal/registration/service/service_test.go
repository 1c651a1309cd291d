package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,OutboxAppender

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	registrationmetrics "sampad/internal/registration/metrics"
	"sampad/internal/registration/models"
	"sampad/internal/registration/service/mocks"
	"sampad/internal/registration/store"
	id "sampad/pkg/domain"
	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/payment"
	"sampad/pkg/platform/outbox"
	"sampad/pkg/registrationform"
	"sampad/pkg/requestcontext"
	sampadtest "sampad/pkg/testutil"
	"sampad/pkg/validation"
)

var fixedNow = time.Date(2025, 3, 21, 9, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	outbox  *outbox.InMemory
	metrics *registrationmetrics.Metrics
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
	s.store = store.NewInMemory()
	s.outbox = outbox.NewInMemory()
	s.metrics = registrationmetrics.New(prometheus.NewRegistry())
	s.service = New(s.store,
		WithOutbox(s.outbox),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ServiceSuite) fieldErrors(err error) validation.FieldErrors {
	s.T().Helper()
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "expected validation code, got %v", err)
	var fe validation.FieldErrors
	s.Require().True(errors.As(err, &fe), "expected field errors, got %v", err)
	return fe
}

func (s *ServiceSuite) count() int {
	n, err := s.store.Count(context.Background())
	s.Require().NoError(err)
	return n
}

func (s *ServiceSuite) TestSubmit_NonSampadSucceeds() {
	result, err := s.service.Submit(s.ctx, sampadtest.NewFormBuilder().Build(), nil)
	s.Require().NoError(err)

	s.False(result.Registration.ID.IsNil())
	s.Equal(int64(100000), result.Payment.Amount)
	s.Equal(payment.TierNonSampad, result.Payment.Tier)
	s.Equal(payment.DefaultAccount.CardNumber, result.Payment.CardNumber)
	s.Equal(payment.DefaultAccount.Owner, result.Payment.Owner)
	s.Equal(1, s.count())
}

func (s *ServiceSuite) TestSubmit_SampadSucceeds() {
	result, err := s.service.Submit(s.ctx, sampadtest.NewFormBuilder().Sampad().Build(), nil)
	s.Require().NoError(err)
	s.Equal(int64(50000), result.Payment.Amount)
	s.Equal("payment.message.sampad", result.Payment.MessageKey)
}

func (s *ServiceSuite) TestSubmit_DuplicateReportsBothFields() {
	form := sampadtest.NewFormBuilder().Build()
	_, err := s.service.Submit(s.ctx, form, nil)
	s.Require().NoError(err)

	_, err = s.service.Submit(s.ctx, form, nil)
	fe := s.fieldErrors(err)
	s.True(fe.Has(registrationform.FieldNationalCode, validation.KindDuplicate))
	s.True(fe.Has(registrationform.FieldPhone, validation.KindDuplicate))
	s.Equal([]string{"nationalCode", "phone"}, []string{fe[0].Field, fe[1].Field})
	s.Equal("nationalCode.unique", fe[0].Key)
	s.Equal(1, s.count())
}

func (s *ServiceSuite) TestSubmit_FormatErrors() {
	cases := []struct {
		name  string
		form  registrationform.Form
		field string
		kind  validation.Kind
	}{
		{"short national code", sampadtest.NewFormBuilder().WithNationalCode("12345").Build(), registrationform.FieldNationalCode, validation.KindWrongFormat},
		{"wrong phone prefix", sampadtest.NewFormBuilder().WithPhone("08123456789").Build(), registrationform.FieldPhone, validation.KindWrongFormat},
		{"empty name", sampadtest.NewFormBuilder().WithName("").Build(), registrationform.FieldName, validation.KindRequired},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Submit(s.ctx, tc.form, nil)
			fe := s.fieldErrors(err)
			s.True(fe.Has(tc.field, tc.kind), "%v", fe)
			s.Equal(0, s.count())
		})
	}
}

func (s *ServiceSuite) TestValidate_SkipsUniquenessForMalformedFields() {
	_, err := s.service.Submit(s.ctx, sampadtest.NewFormBuilder().Build(), nil)
	s.Require().NoError(err)

	// Same phone, malformed national code: only the phone can be a duplicate.
	_, err = s.service.Validate(s.ctx, sampadtest.NewFormBuilder().WithNationalCode("12").Build(), nil)
	fe := s.fieldErrors(err)
	s.True(fe.Has(registrationform.FieldNationalCode, validation.KindWrongFormat))
	s.True(fe.Has(registrationform.FieldPhone, validation.KindDuplicate))
}

func (s *ServiceSuite) TestValidate_PriorErrorsStillCheckUniqueness() {
	_, err := s.service.Submit(s.ctx, sampadtest.NewFormBuilder().Build(), nil)
	s.Require().NoError(err)

	mistyped := validation.FieldErrors{{
		Field: registrationform.FieldName,
		Kind:  validation.KindWrongFormat,
		Key:   validation.KeyInvalidType,
	}}
	_, err = s.service.Validate(s.ctx, sampadtest.NewFormBuilder().WithName("").Build(), mistyped)
	fe := s.fieldErrors(err)

	name, ok := fe.Get(registrationform.FieldName)
	s.Require().True(ok)
	s.Equal(validation.KeyInvalidType, name.Key, "a mistyped value is not also reported as missing")
	s.True(fe.Has(registrationform.FieldNationalCode, validation.KindDuplicate))
	s.True(fe.Has(registrationform.FieldPhone, validation.KindDuplicate))
	s.Len(fe, 3)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ValidationFailures.WithLabelValues("name", string(validation.KindWrongFormat))))
}

func (s *ServiceSuite) TestValidate_TrimsBeforeChecking() {
	data, err := s.service.Validate(s.ctx, sampadtest.NewFormBuilder().
		WithName("  Ali Rezaei  ").
		WithNationalCode(" 1234567890 ").
		WithPhone("09123456789 ").
		Build(), nil)
	s.Require().NoError(err)
	s.Equal("Ali Rezaei", data.Name)
	s.Equal("1234567890", data.NationalCode)
	s.Equal("09123456789", data.Phone)
}

func (s *ServiceSuite) TestValidate_IsIdempotent() {
	form := sampadtest.NewFormBuilder().WithPhone("bad").Build()
	_, first := s.service.Validate(s.ctx, form, nil)
	_, second := s.service.Validate(s.ctx, form, nil)
	s.Equal(s.fieldErrors(first), s.fieldErrors(second))
	s.Equal(0, s.count())
}

func (s *ServiceSuite) TestRegister_PersistsExactlyAsValidated() {
	data := registrationform.Validated{Name: "سارا", IsSampad: true, NationalCode: "0012345678", Phone: "09351234567"}
	result, err := s.service.Register(s.ctx, data)
	s.Require().NoError(err)

	stored, err := s.service.Get(s.ctx, result.Registration.ID)
	s.Require().NoError(err)
	s.Equal(data.Name, stored.Name)
	s.Equal(data.IsSampad, stored.IsSampad)
	s.Equal(data.NationalCode, stored.NationalCode)
	s.Equal(data.Phone, stored.Phone)
	s.False(stored.IsRegistered)
	s.Nil(stored.Date)
	s.Equal(fixedNow, stored.CreatedAt)
}

func (s *ServiceSuite) TestRegister_AppendsMaskedEvent() {
	ctx := requestcontext.WithClient(s.ctx, requestcontext.Client{Browser: "Firefox", OS: "Android", Mobile: true})
	result, err := s.service.Register(ctx, registrationform.Validated{Name: "Ali", NationalCode: "1234567890", Phone: "09123456789"})
	s.Require().NoError(err)

	entries := s.outbox.Entries()
	s.Require().Len(entries, 1)
	s.Equal(models.EventRegistrationCreated, entries[0].EventType)
	s.Equal(result.Registration.ID.String(), entries[0].AggregateID)

	var event models.RegistrationCreated
	s.Require().NoError(json.Unmarshal(entries[0].Payload, &event))
	s.Equal(result.Registration.ID, event.RegistrationID)
	s.Equal(payment.TierNonSampad, event.Tier)
	s.Equal(int64(100000), event.Amount)
	s.Equal("0912*****89", event.PhoneMasked)
	s.Equal(models.ClientPlatform{Browser: "Firefox", OS: "Android", Mobile: true}, event.Client)
	s.NotContains(string(entries[0].Payload), "1234567890")
}

func (s *ServiceSuite) TestRegister_ConcurrentCollisionsAdmitOne() {
	data := registrationform.Validated{Name: "Ali", NationalCode: "1234567890", Phone: "09123456789"}
	result := sampadtest.RunConcurrent(16, func(int) error {
		_, err := s.service.Register(s.ctx, data)
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(15), result.Conflicts)
	s.Equal(int32(0), result.Errors)
	s.Equal(1, s.count())
	s.Equal(float64(15), testutil.ToFloat64(s.metrics.PersistenceConflicts.WithLabelValues("nationalCode")))
}

func (s *ServiceSuite) TestSubmit_ConcurrentDistinctFormsAllSucceed() {
	result := sampadtest.RunConcurrent(20, func(idx int) error {
		_, err := s.service.Submit(s.ctx, sampadtest.NewFormBuilder().Unique(idx+1).Build(), nil)
		return err
	})
	s.Equal(int32(20), result.Successes)
	s.Equal(20, s.count())
}

func (s *ServiceSuite) TestPaymentAccountOverride() {
	svc := New(s.store, WithPaymentAccount(payment.Account{CardNumber: "6219 8610 0000 0000"}))
	result, err := svc.Submit(s.ctx, sampadtest.NewFormBuilder().Build(), nil)
	s.Require().NoError(err)
	s.Equal("6219 8610 0000 0000", result.Payment.CardNumber)
	s.Equal(payment.DefaultAccount.Owner, result.Payment.Owner)
}

func (s *ServiceSuite) TestGet() {
	s.Run("nil id is a bad request", func() {
		_, err := s.service.Get(s.ctx, id.RegistrationID{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
	s.Run("unknown id is not found", func() {
		_, err := s.service.Get(s.ctx, id.NewRegistrationID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestValidationMetrics() {
	_, _ = s.service.Submit(s.ctx, sampadtest.NewFormBuilder().WithName("").WithPhone("1").Build(), nil)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ValidationFailures.WithLabelValues("name", string(validation.KindRequired))))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ValidationFailures.WithLabelValues("phone", string(validation.KindWrongFormat))))
}

// Failure paths that need a store the in-memory backend cannot simulate.
type ServiceMockSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	outbox  *mocks.MockOutboxAppender
	service *Service
	regID   id.RegistrationID
}

func TestServiceMockSuite(t *testing.T) {
	suite.Run(t, new(ServiceMockSuite))
}

func (s *ServiceMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.outbox = mocks.NewMockOutboxAppender(s.ctrl)
	s.regID = id.RegistrationID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	s.service = New(s.store,
		WithOutbox(s.outbox),
		WithIDGenerator(func() id.RegistrationID { return s.regID }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ServiceMockSuite) TestRaceLostAtInsertBecomesDuplicate() {
	s.store.EXPECT().FindTaken(gomock.Any(), "1234567890", "09123456789").Return(models.Taken{}, nil)
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.PhoneTaken())

	_, err := s.service.Submit(context.Background(), sampadtest.NewFormBuilder().Build(), nil)

	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	var fe validation.FieldErrors
	s.Require().True(errors.As(err, &fe))
	s.Len(fe, 1)
	s.True(fe.Has(registrationform.FieldPhone, validation.KindDuplicate))
}

func (s *ServiceMockSuite) TestLookupFailureIsInternal() {
	s.store.EXPECT().FindTaken(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.Taken{}, errors.New("connection refused"))

	_, err := s.service.Submit(context.Background(), sampadtest.NewFormBuilder().Build(), nil)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceMockSuite) TestOutboxFailureAbortsRegistration() {
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.outbox.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := s.service.Register(context.Background(), registrationform.Validated{Name: "Ali", NationalCode: "1234567890", Phone: "09123456789"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceMockSuite) TestUsesGeneratedID() {
	s.store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, reg *models.Registration) error {
		s.Equal(s.regID, reg.ID)
		return nil
	})
	s.outbox.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.Register(context.Background(), registrationform.Validated{Name: "Ali", NationalCode: "1234567890", Phone: "09123456789"})
	s.Require().NoError(err)
	s.Equal(s.regID, result.Registration.ID)
}

func (s *ServiceMockSuite) TestCancelledContextIsTimeout() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.service.Register(ctx, registrationform.Validated{Name: "Ali", NationalCode: "1234567890", Phone: "09123456789"})
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

func (s *ServiceMockSuite) TestListFailureIsInternal() {
	s.store.EXPECT().List(gomock.Any()).Return(nil, errors.New("boom"))
	_, err := s.service.List(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
