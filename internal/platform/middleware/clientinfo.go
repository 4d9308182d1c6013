package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mssola/useragent"

	"atrium/pkg/requestcontext"
)

// ClientInfo logs the operator's browser and OS on console requests so
// admin actions can be traced back to a client in the audit trail.
func ClientInfo(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := r.Header.Get("User-Agent"); raw != "" {
				ua := useragent.New(raw)
				name, version := ua.Browser()
				logger.DebugContext(r.Context(), "console client",
					"browser", name,
					"browser_version", version,
					"os", ua.OS(),
					"mobile", ua.Mobile(),
					"request_id", requestcontext.RequestID(r.Context()),
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}
