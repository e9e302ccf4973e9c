// Package tenant issues and verifies tenant API keys
package tenant

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	domainTenant "github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// apiKeyBytes is the entropy of a generated key
const apiKeyBytes = 32

// CreateRequest is validated before a tenant is created
type CreateRequest struct {
	TenantID string `json:"tenant_id" validate:"required,min=2,max=64"`
}

// Credentials are returned once, on tenant creation
type Credentials struct {
	TenantID string `json:"tenant_id"`
	APIKey   string `json:"api_key"`
}

// Service manages tenants and their API keys
type Service struct {
	repo     domainTenant.Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates the tenant service
func NewService(repo domainTenant.Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   log.NewModuleLogger("tenant", "service"),
	}
}

// Create registers tenantID with a fresh API key.
// Returns domainTenant.ErrTenantExists when the id is taken.
func (s *Service) Create(ctx context.Context, tenantID string) (*Credentials, error) {
	if err := s.validate.Struct(CreateRequest{TenantID: tenantID}); err != nil {
		return nil, fmt.Errorf("invalid tenant id: %w", err)
	}

	apiKey, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &domainTenant.Tenant{ID: tenantID, APIKey: apiKey}); err != nil {
		return nil, err
	}

	log.FromContext(ctx, s.logger).Info("Tenant created", "tenant_id", tenantID)
	return &Credentials{TenantID: tenantID, APIKey: apiKey}, nil
}

// Verify checks apiKey against the key stored for tenantID
func (s *Service) Verify(ctx context.Context, tenantID, apiKey string) error {
	if apiKey == "" {
		return domainTenant.ErrMissingCredentials
	}

	t, err := s.repo.FindByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant: %w", err)
	}
	if t == nil {
		return domainTenant.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(t.APIKey), []byte(apiKey)) != 1 {
		return domainTenant.ErrInvalidCredentials
	}
	return nil
}

// Exists reports whether tenantID is registered
func (s *Service) Exists(ctx context.Context, tenantID string) (bool, error) {
	t, err := s.repo.FindByID(ctx, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to load tenant: %w", err)
	}
	return t != nil, nil
}

// GenerateAPIKey returns 32 random bytes as unpadded base64url
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
