package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"sampad/internal/antiforgery"
	"sampad/internal/platform/health"
	registrationhandler "sampad/internal/registration/handler"
	"sampad/internal/registration/service"
	"sampad/internal/registration/store"
	httptransport "sampad/internal/transport/http"
	"sampad/pkg/client"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	Language         string
	LastResponse     *http.Response
	LastResponseBody []byte
	LastForm         map[string]any
	ClientErr        error
	ClientResult     *client.Result
	baselineTotal    int
	lastToken        string
	server           *httptest.Server
}

// NewTestContext targets BASE_URL when set and otherwise starts the full router in-process.
func NewTestContext() *TestContext {
	tc := &TestContext{
		BaseURL:    os.Getenv("BASE_URL"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Language:   "en",
	}
	if tc.BaseURL == "" {
		tc.server = httptest.NewServer(newInProcessRouter())
		tc.BaseURL = tc.server.URL
	}
	return tc
}

func newInProcessRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer, err := antiforgery.NewIssuer("e2e-antiforgery-secret-0123456789", 5*time.Minute)
	if err != nil {
		panic(err)
	}
	return httptransport.NewRouter(httptransport.RouterDeps{
		Logger:        logger,
		Registrations: registrationhandler.New(service.New(store.NewInMemory()), logger),
		Guard:         antiforgery.NewGuard(issuer, antiforgery.NewCacheReplayStore(time.Minute), logger, nil),
		Health:        health.New("e2e"),
	})
}

// Close stops the in-process server, if any.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
}

// Client returns a Go client bound to the service under test.
func (tc *TestContext) Client() *client.Client {
	return client.New(client.Config{BaseURL: tc.BaseURL, HTTPClient: tc.HTTPClient})
}

// FetchToken asks the service for a fresh anti-forgery token.
func (tc *TestContext) FetchToken() (string, error) {
	if err := tc.GET("/antiforgery-token", nil); err != nil {
		return "", err
	}
	if tc.GetLastResponseStatus() != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d: %s", tc.GetLastResponseStatus(), tc.LastResponseBody)
	}
	token, err := tc.GetResponseField("token")
	if err != nil {
		return "", err
	}
	s, _ := token.(string)
	return s, nil
}

// POSTWithHeaders makes a POST request with optional headers
func (tc *TestContext) POSTWithHeaders(path string, body any, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", tc.Language)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept-Language", tc.Language)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a dotted path such as "payment.amount" from the JSON response.
func (tc *TestContext) GetResponseField(path string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, part := range strings.Split(path, ".") {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", path)
		}
		if data, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %s not found in response", path)
		}
	}
	return data, nil
}

// RegistrationTotal reads the total from GET /registrations.
func (tc *TestContext) RegistrationTotal() (int, error) {
	if err := tc.GET("/registrations", nil); err != nil {
		return 0, err
	}
	total, err := tc.GetResponseField("total")
	if err != nil {
		return 0, err
	}
	n, ok := total.(float64)
	if !ok {
		return 0, fmt.Errorf("total is %T", total)
	}
	return int(n), nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
