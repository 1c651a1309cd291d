// Package requestcontext carries request-scoped values (request id, clock, client metadata)
// through context.Context so services never need the *http.Request.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey struct{}
	nowKey       struct{}
	clientKey    struct{}
)

// Client describes the caller as seen by the edge middleware.
type Client struct {
	IP        string
	UserAgent string
	Browser   string
	OS        string
	Mobile    bool
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id or an empty string outside HTTP requests.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, t)
}

// Now returns the request-scoped time, falling back to the wall clock for workers, CLI and tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(nowKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

func ClientInfo(ctx context.Context) Client {
	if c, ok := ctx.Value(clientKey{}).(Client); ok {
		return c
	}
	return Client{}
}

// ClientIP returns the resolved client IP or "unknown".
func ClientIP(ctx context.Context) string {
	if ip := ClientInfo(ctx).IP; ip != "" {
		return ip
	}
	return "unknown"
}

func UserAgent(ctx context.Context) string {
	return ClientInfo(ctx).UserAgent
}
