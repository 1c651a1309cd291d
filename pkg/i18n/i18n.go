// Package i18n resolves the caller's language and renders catalog messages with x/text.
// Persian is the default; English is available through Accept-Language.
package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	Persian = language.Persian
	English = language.English
)

// Supported lists the catalog languages; the first entry is the fallback.
var Supported = []language.Tag{Persian, English}

var matcher = language.NewMatcher(Supported)

type tagKey struct{}

// Match picks the best supported language for an Accept-Language header value.
func Match(acceptLanguage string) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return Persian
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Persian
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Persian
	}
	return Supported[idx]
}

// Middleware stores the negotiated language in the request context and echoes it in Content-Language.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := Match(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), tag)))
	})
}

func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, tagKey{}, tag)
}

// Language returns the negotiated language, Persian when none was negotiated.
func Language(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(tagKey{}).(language.Tag); ok {
		return tag
	}
	return Persian
}

func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// T renders key in the context's language.
func T(ctx context.Context, key message.Reference, args ...any) string {
	return Printer(Language(ctx)).Sprintf(key, args...)
}

// Renderer adapts a printer to validation.FieldErrors.Localize.
func Renderer(tag language.Tag) func(key string) string {
	p := Printer(tag)
	return func(key string) string { return p.Sprintf(key) }
}
