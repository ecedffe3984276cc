package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RequestLogger attaches l to each request context and logs one line per
// completed request.
func RequestLogger(l zerolog.Logger) func(http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})
	return func(next http.Handler) http.Handler {
		return hlog.NewHandler(l)(
			hlog.RequestIDHandler("req_id", "X-Request-Id")(
				hlog.RemoteAddrHandler("ip")(access(next)),
			),
		)
	}
}
