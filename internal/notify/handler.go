package notify

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"atrium/pkg/platform/httputil"
)

// Handler exposes the notification feed for the UI to poll.
type Handler struct {
	feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/console/notifications", h.HandleRecent)
}

func (h *Handler) HandleRecent(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.feed.Recent())
}
