// Package tenant defines tenants and their API credentials
package tenant

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTenantExists       = errors.New("tenant already exists")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrMissingCredentials = errors.New("missing API key")
	ErrInvalidCredentials = errors.New("invalid API key")
)

// Tenant owns documents and an API key
type Tenant struct {
	ID        string
	APIKey    string
	CreatedAt time.Time
}

// Repository persists tenants
type Repository interface {
	// Create returns ErrTenantExists when the id is taken
	Create(ctx context.Context, t *Tenant) error
	// FindByID returns nil, nil when the tenant does not exist
	FindByID(ctx context.Context, tenantID string) (*Tenant, error)
}
