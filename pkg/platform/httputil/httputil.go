package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	dErrors "sampad/pkg/domain-errors"
	"sampad/pkg/i18n"
	"sampad/pkg/validation"
)

// ValidationResponse is the 422 body: a summary message plus localized messages per field.
type ValidationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// ErrorResponse is the body for every other failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
// Field errors anywhere in the chain become a localized 422; domain errors map by code;
// anything else is an opaque 500.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		WriteJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Message: i18n.T(ctx, i18n.KeyValidationFailed),
			Errors:  fieldErrs.Localize(i18n.Renderer(i18n.Language(ctx))).Map(),
		})
		return
	}

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		message := domainErr.Message
		if status == http.StatusInternalServerError {
			// internal messages describe our plumbing, not the caller's request
			message = i18n.T(ctx, i18n.KeyInternalError)
		}
		WriteJSON(w, status, ErrorResponse{
			Error:   DomainCodeToHTTPCode(domainErr.Code),
			Message: message,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   DomainCodeToHTTPCode(dErrors.CodeInternal),
		Message: i18n.T(ctx, i18n.KeyInternalError),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the "error" field of the JSON body.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}
