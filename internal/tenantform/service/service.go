// Package service implements the tenant creation workflow: the ordered
// synchronous rule pipeline, memoized remote availability checks, password
// generation, and the single-send submit that builds the creation payload.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"atrium/internal/notify"
	tenantmetrics "atrium/internal/tenantform/metrics"
	"atrium/internal/tenantform/models"
	"atrium/internal/upstream"
	dErrors "atrium/pkg/domain-errors"
	"atrium/pkg/validation"
)

// API is the identity platform surface the tenant form depends on.
type API interface {
	CheckTenantDomainAvailability(ctx context.Context, domain string) (bool, error)
	CreateTenant(ctx context.Context, req *upstream.CreateTenantRequest) (*upstream.Tenant, error)
}

// Service runs the tenant creation form workflow against one settings
// snapshot. The snapshot is injected at construction and never refetched
// mid-workflow.
type Service struct {
	api      API
	settings *models.Settings
	domains  *Checker
	notifier notify.Notifier
	metrics  *tenantmetrics.Metrics
	logger   *slog.Logger
}

func New(api API, settings *models.Settings, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "api client is required")
	}
	if settings == nil {
		settings = &models.Settings{}
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}

	checker, err := NewChecker(models.FieldDomain, api.CheckTenantDomainAvailability, cfg.cacheEntries)
	if err != nil {
		return nil, err
	}

	return &Service{
		api:      api,
		settings: settings,
		domains:  checker,
		notifier: cfg.notifier,
		metrics:  cfg.metrics,
		logger:   cfg.logger,
	}, nil
}

// Settings exposes the snapshot the form runs against, for the UI to mirror.
func (s *Service) Settings() *models.Settings {
	return s.settings
}

// CheckDomain runs the synchronous domain rules and, only when they all
// pass, the memoized remote availability check. The remote collaborator is
// never invoked for a value that fails a synchronous rule.
func (s *Service) CheckDomain(ctx context.Context, domain string) error {
	start := time.Now()
	domain = strings.TrimSpace(domain)

	if fieldErr := ValidateTenantDomain(s.settings, domain); fieldErr != nil {
		s.observeDomainCheck("invalid", start)
		return fieldErr
	}

	err := s.domains.Check(ctx, domain)
	switch {
	case err == nil:
		s.observeDomainCheck("available", start)
	case errors.Is(err, ErrSuperseded):
		s.observeDomainCheck("stale", start)
	default:
		s.observeDomainCheck("unavailable", start)
	}
	return err
}

// GeneratePassword synthesizes a password from the snapshot's policy and
// reports it for the UI to write into the password field.
func (s *Service) GeneratePassword() (string, error) {
	password, err := GeneratePassword(s.settings.PasswordPolicy)
	if err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.IncrementPasswordsGenerated()
	}
	return password, nil
}

// Submit validates the complete form and, when clean, builds the immutable
// creation payload and sends it exactly once. Submission failures surface
// through the notification sink and leave the form state untouched so the
// operator can retry.
func (s *Service) Submit(ctx context.Context, input models.FormInput) (*upstream.Tenant, error) {
	if fieldErr := s.validateSubmit(ctx, input); fieldErr != nil {
		return nil, fieldErr
	}

	req := &upstream.CreateTenantRequest{
		Domain:           strings.TrimSpace(input.Domain),
		OrganizationName: strings.TrimSpace(input.OrganizationName),
		Owner: upstream.Owner{
			Username:           strings.TrimSpace(input.Username),
			Email:              strings.TrimSpace(input.Email),
			FirstName:          strings.TrimSpace(input.FirstName),
			LastName:           strings.TrimSpace(input.LastName),
			Password:           input.Password,
			ProvisioningMethod: provisioningMethod(input),
		},
	}

	tenant, err := s.api.CreateTenant(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "tenant creation failed",
			"domain", req.Domain,
			"error", err,
		)
		s.notify(ctx, notify.LevelError, "Tenant creation failed", err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "tenant creation failed")
	}

	if s.metrics != nil {
		s.metrics.IncrementTenantCreated()
	}
	s.notify(ctx, notify.LevelSuccess, "Tenant created", "Tenant "+tenant.Domain+" was created")

	// The form instance is complete; drop its memoized checks.
	s.domains.Reset()
	return tenant, nil
}

// validateSubmit runs the submit-time synchronous checks and the full field
// pipeline. The first failing field is reported; other fields keep their
// state.
func (s *Service) validateSubmit(ctx context.Context, input models.FormInput) error {
	required := []struct {
		field models.Field
		value string
	}{
		{models.FieldDomain, input.Domain},
		{models.FieldFirstName, input.FirstName},
		{models.FieldLastName, input.LastName},
		{models.FieldEmail, input.Email},
		{models.FieldPassword, input.Password},
		{models.FieldUsername, input.Username},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return models.NewFieldError(r.field, models.ReasonRequired, string(r.field)+" is required")
		}
	}

	if !validation.IsEmail(strings.TrimSpace(input.Email)) {
		return models.NewFieldError(models.FieldEmail, models.ReasonInvalidEmail,
			"email must be a valid address")
	}

	if fieldErr := ValidateOrganizationName(s.settings, input.OrganizationName); fieldErr != nil {
		return fieldErr
	}
	if fieldErr := ValidateUsername(s.settings, strings.TrimSpace(input.Username)); fieldErr != nil {
		return fieldErr
	}
	return s.CheckDomain(ctx, input.Domain)
}

func provisioningMethod(input models.FormInput) string {
	if input.ProvisioningMethod != "" {
		return input.ProvisioningMethod
	}
	return "input-password"
}

func (s *Service) notify(ctx context.Context, level notify.Level, message, description string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, level, message, description)
	}
}

func (s *Service) observeDomainCheck(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDomainCheck(outcome, start)
	}
}
