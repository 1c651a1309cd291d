// Package metadata resolves who is calling: client IP (honoring X-Forwarded-For only from
// trusted proxies) and a parsed User-Agent summary used in registration events.
package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"

	"sampad/pkg/requestcontext"
)

// MaxForwardedHeaderLength caps X-Forwarded-For / X-Real-IP before parsing.
const MaxForwardedHeaderLength = 500

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies lists prefixes allowed to set forwarding headers. Empty means never trust them.
	TrustedProxies []netip.Prefix
}

// Middleware handles client metadata extraction with configurable trusted proxies.
type Middleware struct {
	trusted []netip.Prefix
}

func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		return &Middleware{}
	}
	return &Middleware{trusted: cfg.TrustedProxies}
}

// Handler stores a requestcontext.Client for downstream handlers and services.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := DescribeUserAgent(r.Header.Get("User-Agent"))
		client.IP = m.clientIP(r)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithClient(r.Context(), client)))
	})
}

// DescribeUserAgent summarizes a User-Agent header. Unknown parts are left empty.
func DescribeUserAgent(raw string) requestcontext.Client {
	client := requestcontext.Client{UserAgent: raw}
	if strings.TrimSpace(raw) == "" {
		return client
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	client.Browser = strings.TrimSpace(name)
	client.OS = strings.TrimSpace(ua.OS())
	client.Mobile = ua.Mobile()
	return client
}

func (m *Middleware) clientIP(r *http.Request) string {
	remote := remoteIP(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}
	if !m.isTrusted(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if len(xff) > MaxForwardedHeaderLength {
			return remote
		}
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if _, err := netip.ParseAddr(first); err != nil {
			return remote
		}
		return first
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && len(xri) <= MaxForwardedHeaderLength {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return remote
}

func (m *Middleware) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteIP(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return strings.Trim(remoteAddr, "[]")
	}
	return host
}
