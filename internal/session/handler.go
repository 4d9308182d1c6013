package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"atrium/pkg/platform/httputil"
	"atrium/pkg/requestcontext"
)

type Handler struct {
	issuer *Issuer
	logger *slog.Logger
}

func NewHandler(issuer *Issuer, logger *slog.Logger) *Handler {
	return &Handler{issuer: issuer, logger: logger}
}

// Register mounts the session exchange route. It sits outside RequireAdmin
// since it is the way credentials are first presented.
func (h *Handler) Register(r chi.Router) {
	r.Post("/console/session", h.HandleExchange)
}

type exchangeRequest struct {
	AdminToken string `json:"admin_token"`
}

type exchangeResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HandleExchange trades the shared admin token for a session JWT.
func (h *Handler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[exchangeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	token, expiry, err := h.issuer.Exchange(req.AdminToken)
	if err != nil {
		h.logger.WarnContext(ctx, "session exchange rejected", "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, exchangeResponse{
		SessionToken: token,
		ExpiresAt:    expiry,
	})
}
