package auth

import (
	"context"
	"net/http"
	"strings"
)

type userKey struct{}

// WithUser returns a context carrying the authenticated user's email.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey{}, email)
}

// CurrentUser returns the authenticated user's email, if any.
func CurrentUser(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userKey{}).(string)
	return email, ok && email != ""
}

// SessionID extracts the session id from the session cookie or, failing
// that, an "Authorization: Bearer" header.
func SessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
