// Package tracer is a small tracing abstraction so services can emit spans
// without importing OpenTelemetry directly.
package tracer

import "context"

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span is an in-flight unit of traced work.
type Span interface {
	// End finishes the span and records err when it is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
}

// Attribute is a key/value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }
func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }
func Int(key string, value int) Attribute { return Attribute{Key: key, Value: value} }
