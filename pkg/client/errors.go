package client

import (
	"errors"
	"regexp"
)

var (
	// ErrMissingToken means no anti-forgery token could be obtained; the caller should reload.
	ErrMissingToken = errors.New("توکن CSRF پیدا نشد — صفحه را رفرش کنید.")

	// ErrSubmissionInFlight is returned while another Submit on the same Client is running.
	ErrSubmissionInFlight = errors.New("درخواست قبلی هنوز در حال ارسال است.")
)

// duplicatePattern recognizes a uniqueness complaint in any server wording.
var duplicatePattern = regexp.MustCompile(`(?i)unique|تکراری|قبلا`)

// ServerError is any response other than 201 or 422.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// TransportError covers network failures and undecodable success responses.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
