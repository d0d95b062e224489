package httpapi

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/digest-flow/internal/usage"
)

const (
	clientCookie    = "summarizer_uuid"
	clientCookieAge = 365 * 24 * time.Hour
)

// clientFromRequest identifies the caller. With issue set, a caller
// without the cookie gets a fresh UUID cookie; otherwise the request
// fingerprint stands in.
func clientFromRequest(w http.ResponseWriter, r *http.Request, issue bool) usage.Client {
	c := usage.Client{
		IP:        clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Referer:   r.Header.Get("Referer"),
	}

	if ck, err := r.Cookie(clientCookie); err == nil && strings.TrimSpace(ck.Value) != "" {
		c.UUID = ck.Value
		return c
	}

	if issue {
		c.UUID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     clientCookie,
			Value:    c.UUID,
			Path:     "/",
			MaxAge:   int(clientCookieAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return c
}

// clientIP extracts client IP from headers or RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
