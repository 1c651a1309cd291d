// Package client submits registrations to the Sampad service. It runs the shared
// form rules before any network call, fetches an anti-forgery token, and maps every
// response into a Result or one of the package's error types.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	"sampad/pkg/i18n"
	"sampad/pkg/payment"
	"sampad/pkg/registrationform"
	"sampad/pkg/validation"
)

const (
	tokenPath        = "/antiforgery-token"
	registrationPath = "/registrations"
	tokenHeader      = "X-CSRF-TOKEN"
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Client. Only BaseURL is required.
type Config struct {
	BaseURL    string
	HTTPClient HTTPDoer
	Timeout    time.Duration
	// Language selects the locale for local messages and the Accept-Language header.
	Language language.Tag
	// SkipAntiForgery posts without fetching a token, for servers that run with it disabled.
	SkipAntiForgery bool
}

// Payment is the transfer instruction shown after a successful submission.
type Payment struct {
	Amount  int64
	Card    string
	Owner   string
	Message string
}

// Result is a successful submission.
type Result struct {
	ID      string
	Payment Payment
	// Message is the localized confirmation text.
	Message string
}

// Client submits one registration at a time.
type Client struct {
	baseURL     string
	http        HTTPDoer
	lang        language.Tag
	antiForgery bool
	inFlight    atomic.Bool
}

func New(cfg Config) *Client {
	lang := cfg.Language
	if lang == language.Und {
		lang = i18n.Persian
	}
	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        doer,
		lang:        lang,
		antiForgery: !cfg.SkipAntiForgery,
	}
}

// Submit validates form locally and, when it passes, posts it once.
//
// Errors are one of: validation.FieldErrors (local rules or a 422), ErrMissingToken,
// ErrSubmissionInFlight, *ServerError or *TransportError.
func (c *Client) Submit(ctx context.Context, form registrationform.Form) (*Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	validated, fieldErrs, err := registrationform.Check(form)
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs.Localize(i18n.Renderer(c.lang))
	}

	var token string
	if c.antiForgery {
		token, err = c.fetchToken(ctx)
		if err != nil {
			return nil, ErrMissingToken
		}
	}

	body, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+registrationPath, bytes.NewReader(body))
	if err != nil {
		return nil, c.transportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.lang.String())
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.transportError(err)
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		return c.success(raw, validated.IsSampad)
	case http.StatusUnprocessableEntity:
		if fe := c.fieldErrors(raw); len(fe) > 0 {
			return nil, fe
		}
	}
	return nil, c.serverError(resp.StatusCode, raw)
}

// InFlight reports whether a submission is running, for disabling a submit control.
func (c *Client) InFlight() bool {
	return c.inFlight.Load()
}

// Message renders err for display in the client's language.
func (c *Client) Message(err error) string {
	p := i18n.Printer(c.lang)
	var fe validation.FieldErrors
	switch {
	case errors.Is(err, ErrMissingToken):
		return p.Sprintf(i18n.KeyMissingToken)
	case errors.Is(err, ErrSubmissionInFlight):
		return p.Sprintf(i18n.KeyInFlight)
	case errors.As(err, &fe):
		return p.Sprintf(i18n.KeyValidationFailed)
	default:
		return err.Error()
	}
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return "", err
	}
	if strings.TrimSpace(body.Token) == "" {
		return "", fmt.Errorf("empty token")
	}
	return body.Token, nil
}

type paymentBody struct {
	Amount  int64  `json:"amount"`
	Card    string `json:"card"`
	Owner   string `json:"owner"`
	Message string `json:"message"`
}

func (c *Client) success(raw []byte, isSampad bool) (*Result, error) {
	var body struct {
		ID      string       `json:"id"`
		Payment *paymentBody `json:"payment"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, c.transportError(err)
	}

	res := &Result{ID: body.ID, Message: i18n.Printer(c.lang).Sprintf(i18n.KeySubmitted)}
	if body.Payment != nil && body.Payment.Amount > 0 {
		res.Payment = Payment(*body.Payment)
		return res, nil
	}

	// The server left the payment out; derive it from the same fee table.
	p := payment.For(payment.TierFor(isSampad), payment.DefaultAccount)
	res.Payment = Payment{
		Amount:  p.Amount,
		Card:    p.CardNumber,
		Owner:   p.Owner,
		Message: i18n.Printer(c.lang).Sprintf(p.MessageKey),
	}
	return res, nil
}

// fieldErrors maps a 422 body. The first message per field is kept, and any message
// that reads as a uniqueness complaint becomes the canonical duplicate text.
func (c *Client) fieldErrors(raw []byte) validation.FieldErrors {
	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}

	fields := make([]string, 0, len(body.Errors))
	for field := range body.Errors {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	render := i18n.Renderer(c.lang)
	var out validation.FieldErrors
	for _, field := range fields {
		msgs := body.Errors[field]
		if len(msgs) == 0 {
			continue
		}
		fe := validation.FieldError{Field: field, Message: msgs[0]}
		if duplicatePattern.MatchString(msgs[0]) {
			fe.Kind = validation.KindDuplicate
			fe.Key = field + ".unique"
			fe.Message = render(fe.Key)
		}
		out = out.Add(fe)
	}
	return out.Ordered(registrationform.FieldOrder)
}

func (c *Client) serverError(status int, raw []byte) *ServerError {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)

	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		msg = i18n.Printer(c.lang).Sprintf(i18n.KeyServerError, strconv.Itoa(status))
	}
	return &ServerError{Status: status, Message: msg}
}

func (c *Client) transportError(err error) *TransportError {
	return &TransportError{
		Message: i18n.Printer(c.lang).Sprintf(i18n.KeyTransportFailure),
		Err:     err,
	}
}
