package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"atrium/internal/tenantform/models"
	"atrium/internal/tenantform/service"
	"atrium/internal/upstream"
	dErrors "atrium/pkg/domain-errors"
	"atrium/pkg/platform/httputil"
	"atrium/pkg/requestcontext"
	s "atrium/pkg/string"
)

// Service defines the tenant form workflow operations the HTTP layer needs.
type Service interface {
	CheckDomain(ctx context.Context, domain string) error
	GeneratePassword() (string, error)
	Submit(ctx context.Context, input models.FormInput) (*upstream.Tenant, error)
}

type Handler struct {
	service     Service
	rawSettings *upstream.ValidationSettings
	logger      *slog.Logger
}

// New creates the tenant form handler. rawSettings is the uncompiled remote
// snapshot, echoed to the UI so it can mirror the same rules.
func New(service Service, rawSettings *upstream.ValidationSettings, logger *slog.Logger) *Handler {
	return &Handler{service: service, rawSettings: rawSettings, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/console/tenants", h.HandleCreateTenant)
	r.Get("/console/tenant-domains/availability", h.HandleCheckDomain)
	r.Post("/console/tenant-passwords", h.HandleGeneratePassword)
	r.Get("/console/validation-settings", h.HandleGetSettings)
}

// HandleCreateTenant runs the full tenant creation workflow.
func (h *Handler) HandleCreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateTenantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tenant, err := h.service.Submit(ctx, req.ToInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "create tenant failed", "error", err, "request_id", requestID)
		writeWorkflowError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toTenantResponse(tenant))
}

// HandleCheckDomain runs the synchronous rule pipeline and, when clean, the
// memoized remote availability check for a single domain value.
func (h *Handler) HandleCheckDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := s.NormalizeDomain(r.URL.Query().Get("domain"))
	if domain == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "domain query parameter is required"))
		return
	}

	if err := h.service.CheckDomain(ctx, domain); err != nil {
		if errors.Is(err, service.ErrSuperseded) {
			// A newer value replaced this one; nothing to render.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeWorkflowError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AvailabilityResponse{Domain: domain, Available: true})
}

// HandleGeneratePassword synthesizes a password from the remote policy for
// the UI to write into the password field.
func (h *Handler) HandleGeneratePassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.service.GeneratePassword()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "password generation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, GeneratedPasswordResponse{Password: password})
}

// HandleGetSettings returns the validation settings snapshot for the UI.
func (h *Handler) HandleGetSettings(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.rawSettings)
}

// writeWorkflowError renders field-scoped failures with their field and
// reason; everything else goes through the shared domain error mapping.
func writeWorkflowError(w http.ResponseWriter, err error) {
	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		httputil.WriteJSON(w, httputil.DomainCodeToHTTPStatus(fieldErr.Code()), FieldErrorResponse{
			Error:            string(fieldErr.Code()),
			ErrorDescription: fieldErr.Message,
			Field:            string(fieldErr.Field),
			Reason:           string(fieldErr.Reason),
		})
		return
	}
	httputil.WriteError(w, err)
}
