package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/ayush/todolist/backend/internal/auth"
	"github.com/ayush/todolist/backend/internal/httpjson"
)

// SessionResolver maps a session id to the owning user's email; "" means no
// such session.
type SessionResolver interface {
	Lookup(ctx context.Context, sessionID string) (string, error)
}

// RequireAuth is middleware that resolves the session and injects the
// user's email into the request context. Requests without a valid session
// stop here with 401.
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := auth.SessionID(r)
			if sid == "" {
				httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			email, err := sessions.Lookup(r.Context(), sid)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("session lookup")
				httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if email == "" {
				httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), email)))
		})
	}
}
