package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "atrium/pkg/domain-errors"
	"atrium/pkg/platform/httputil"
	"atrium/pkg/requestcontext"
)

// TokenVerifier checks console credentials. Implemented by the session issuer.
type TokenVerifier interface {
	// VerifySession validates a short-lived session JWT.
	VerifySession(token string) error
	// VerifyAdminToken validates the long-lived shared admin token.
	VerifyAdminToken(token string) error
}

// RequireAdmin guards console routes. It accepts either a session JWT as a
// bearer token or the shared admin token in X-Admin-Token.
func RequireAdmin(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "); bearer != r.Header.Get("Authorization") && bearer != "" {
				if err := verifier.VerifySession(bearer); err == nil {
					next.ServeHTTP(w, r)
					return
				}
				logger.WarnContext(ctx, "invalid session token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "session expired or invalid"))
				return
			}

			if token := r.Header.Get("X-Admin-Token"); token != "" {
				if err := verifier.VerifyAdminToken(token); err == nil {
					next.ServeHTTP(w, r)
					return
				}
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid admin token"))
				return
			}

			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin credentials required"))
		})
	}
}
