package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/i18n"
	"sampad/pkg/validation"
)

func TestWriteError_FieldErrors(t *testing.T) {
	fe := validation.FieldErrors{
		{Field: "name", Kind: validation.KindRequired, Key: "name.required"},
		{Field: "phone", Kind: validation.KindDuplicate, Key: "phone.unique"},
	}
	err := dErrors.Wrap(fe, dErrors.CodeValidation, "validation failed")

	t.Run("persian by default", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(context.Background(), w, err)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body ValidationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "اطلاعات وارد شده معتبر نیست.", body.Message)
		assert.Equal(t, []string{"لطفاً نام خود را وارد کنید."}, body.Errors["name"])
		assert.Equal(t, []string{"این شماره تلفن قبلاً ثبت شده است."}, body.Errors["phone"])
	})

	t.Run("english when negotiated", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(i18n.WithLanguage(context.Background(), i18n.English), w, err)

		var body ValidationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "The given data was invalid.", body.Message)
		assert.Equal(t, []string{"Please enter your name."}, body.Errors["name"])
	})

	t.Run("bare field errors are still a 422", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(context.Background(), w, fmt.Errorf("submit: %w", fe))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestWriteError_DomainCodes(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		wire   string
	}{
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodeBadRequest, http.StatusBadRequest, "bad_request"},
		{dErrors.CodeInvalidInput, http.StatusBadRequest, "bad_request"},
		{dErrors.CodeValidation, http.StatusUnprocessableEntity, "validation_error"},
		{dErrors.CodeConflict, http.StatusConflict, "conflict"},
		{dErrors.CodeForbidden, http.StatusForbidden, "forbidden"},
		{dErrors.CodeTimeout, http.StatusGatewayTimeout, "timeout"},
		{dErrors.CodeUnavailable, http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), w, dErrors.New(tc.code, "registration not found"))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wire, body.Error)
			assert.Equal(t, "registration not found", body.Message)
		})
	}
}

func TestWriteError_InternalDetailsAreHidden(t *testing.T) {
	ctx := i18n.WithLanguage(context.Background(), i18n.English)

	t.Run("internal domain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(ctx, w, dErrors.Wrap(errors.New("pq: connection reset"), dErrors.CodeInternal, "failed to create registration"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "internal_error", body.Error)
		assert.Equal(t, "Internal server error.", body.Message)
	})

	t.Run("unclassified error", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(ctx, w, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}
