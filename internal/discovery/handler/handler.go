package handler

import (
	"context"
	"log/slog"
	"net/http"
	stdsync "sync"

	"github.com/go-chi/chi/v5"

	"atrium/internal/discovery/service"
	"atrium/internal/upstream"
	dErrors "atrium/pkg/domain-errors"
	"atrium/pkg/platform/httputil"
	keyedsync "atrium/pkg/platform/sync"
	"atrium/pkg/requestcontext"
	s "atrium/pkg/string"
)

// sessionHeader names the console session a request belongs to. Each
// session gets its own assigner; requests without the header share a
// default one.
const sessionHeader = "X-Console-Session"

// AssignerFactory builds a fresh assigner for a new console session.
type AssignerFactory func() (*service.Assigner, error)

type Handler struct {
	factory  AssignerFactory
	settings *upstream.ValidationSettings
	logger   *slog.Logger

	mu       stdsync.RWMutex
	sessions map[string]*service.Assigner
	locks    *keyedsync.KeyedMutex
}

// New creates the discovery handler. The factory runs once per session key.
// When the server settings have email-domain discovery switched off, the
// routes that stage or attach domains refuse with a forbidden error.
func New(factory AssignerFactory, rawSettings *upstream.ValidationSettings, logger *slog.Logger) *Handler {
	return &Handler{
		factory:  factory,
		settings: rawSettings,
		logger:   logger,
		sessions: make(map[string]*service.Assigner),
		locks:    keyedsync.NewKeyedMutex(),
	}
}

func (h *Handler) domainsEnabled(w http.ResponseWriter) bool {
	if h.settings != nil && !h.settings.EmailDomainsEnabled {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "email domain discovery is disabled for this deployment"))
		return false
	}
	return true
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/console/organizations", h.HandleListOrganizations)
	r.Post("/console/organizations/filter", h.HandleSetFilter)
	r.Get("/console/organizations/discoverable", h.HandleListDiscoverable)
	r.Post("/console/organizations/{id}/email-domains", h.HandleAttachDomains)
	r.Get("/console/discovery", h.HandleGetState)
	r.Post("/console/discovery/domains", h.HandleAddDomain)
	r.Delete("/console/discovery/domains/{domain}", h.HandleRemoveDomain)
	r.Post("/console/discovery/input", h.HandleInputChanged)
	r.Post("/console/discovery/selection", h.HandleSelectOrganization)
	r.Post("/console/discovery/submit", h.HandleSubmit)
}

// assigner returns the session's assigner, creating it on first use. New
// sessions pull the discoverable organization list right away so the
// picker starts out filtered.
func (h *Handler) assigner(r *http.Request) (*service.Assigner, string, error) {
	key := r.Header.Get(sessionHeader)
	if key == "" {
		key = "default"
	}

	h.mu.RLock()
	a, ok := h.sessions[key]
	h.mu.RUnlock()
	if ok {
		return a, key, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if a, ok := h.sessions[key]; ok {
		return a, key, nil
	}
	a, err := h.factory()
	if err != nil {
		return nil, key, err
	}
	if err := a.RefreshDiscoverable(r.Context()); err != nil {
		// The session still works, the picker just shows organizations
		// that are already discoverable until the next refresh.
		h.logger.WarnContext(r.Context(), "initial discoverable refresh failed", "error", err)
	}
	h.sessions[key] = a
	return a, key, nil
}

// HandleListOrganizations returns the organizations visible for the current
// filter, minus the ones already discoverable. more=true fetches the next
// page first.
func (h *Handler) HandleListOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, key, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if r.URL.Query().Get("more") == "true" {
		h.locks.WithLock(key, func() {
			a.Loader().LoadMore(ctx)
		})
	}

	httputil.WriteJSON(w, http.StatusOK, OrganizationListResponse{
		Organizations: a.Visible(),
		State:         a.Loader().State(),
	})
}

// HandleSetFilter updates the filter text. The refresh is debounced the
// same way keystrokes are, so bursts of updates collapse to one fetch.
func (h *Handler) HandleSetFilter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	a, _, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[FilterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// The debounced fetch fires after this handler has responded, when
	// net/http has already cancelled the request context. Detach from the
	// cancellation but keep the values so the request ID still propagates.
	a.Loader().SetFilter(context.WithoutCancel(ctx), req.Filter)
	w.WriteHeader(http.StatusAccepted)
}

// HandleListDiscoverable refreshes and returns the organizations that
// already have email-domain discovery enabled.
func (h *Handler) HandleListDiscoverable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, _, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := a.RefreshDiscoverable(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a.Discoverable())
}

// HandleAttachDomains is the one-shot form of the workflow: select the
// organization from the path, stage each domain through the usual checks
// and submit. The first rejected domain aborts the call with its flags.
func (h *Handler) HandleAttachDomains(w http.ResponseWriter, r *http.Request) {
	if !h.domainsEnabled(w) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	a, key, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	orgID := chi.URLParam(r, "id")
	req, ok := httputil.DecodeAndPrepare[AttachDomainsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var rejected string
	h.locks.WithLock(key, func() {
		a.SelectOrganization(orgID)
		for _, domain := range req.Domains {
			if !a.Domains().Add(ctx, domain) {
				rejected = domain
				return
			}
		}
	})
	if rejected != "" {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, DomainResultResponse{
			Accepted: false,
			Domains:  a.Domains().Domains(),
			Flags:    a.Domains().Flags(),
		})
		return
	}

	if err := a.Submit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "attach email domains failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetState returns the discovery workflow snapshot.
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	a, _, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, DiscoveryStateResponse{
		Domains:       a.Domains().Domains(),
		Flags:         a.Domains().Flags(),
		SelectedOrgID: a.Selected(),
		CanSubmit:     a.CanSubmit(),
	})
}

// HandleAddDomain stages an email domain. Rejections come back with the
// flag that caused them, mirroring the inline form feedback.
func (h *Handler) HandleAddDomain(w http.ResponseWriter, r *http.Request) {
	if !h.domainsEnabled(w) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	a, key, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var accepted bool
	h.locks.WithLock(key, func() {
		accepted = a.Domains().Add(ctx, req.Domain)
	})

	status := http.StatusOK
	if !accepted {
		status = http.StatusUnprocessableEntity
	}
	httputil.WriteJSON(w, status, DomainResultResponse{
		Accepted: accepted,
		Domains:  a.Domains().Domains(),
		Flags:    a.Domains().Flags(),
	})
}

// HandleRemoveDomain drops a staged domain.
func (h *Handler) HandleRemoveDomain(w http.ResponseWriter, r *http.Request) {
	a, key, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	domain := s.NormalizeDomain(chi.URLParam(r, "domain"))
	if domain == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "domain path parameter is required"))
		return
	}

	h.locks.WithLock(key, func() {
		a.Domains().Remove(domain)
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleInputChanged clears the inline domain error flags. The UI calls it
// on every edit of the domain input.
func (h *Handler) HandleInputChanged(w http.ResponseWriter, r *http.Request) {
	a, _, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	a.Domains().InputChanged()
	w.WriteHeader(http.StatusNoContent)
}

// HandleSelectOrganization records the submit target.
func (h *Handler) HandleSelectOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	a, _, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SelectOrganizationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	a.SelectOrganization(req.OrganizationID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit attaches the staged domains to the selected organization.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.domainsEnabled(w) {
		return
	}
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	a, _, err := h.assigner(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := a.Submit(ctx); err != nil {
		h.logger.ErrorContext(ctx, "discovery submit failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, DiscoveryStateResponse{
		Domains:       a.Domains().Domains(),
		Flags:         a.Domains().Flags(),
		SelectedOrgID: a.Selected(),
		CanSubmit:     a.CanSubmit(),
	})
}
