package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tourassist/backend/internal/domain/tenant"
)

var _ tenant.Repository = (*TenantRepositoryImpl)(nil)

// TenantRepositoryImpl stores tenants in sqlite
type TenantRepositoryImpl struct {
	db *sql.DB
}

// NewTenantRepository creates a tenant repository
func NewTenantRepository(db *sql.DB) tenant.Repository {
	return &TenantRepositoryImpl{db: db}
}

// Create inserts t; an existing tenant id yields tenant.ErrTenantExists
func (r *TenantRepositoryImpl) Create(ctx context.Context, t *tenant.Tenant) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (tenant_id, api_key, created_at) VALUES (?, ?, ?)`,
		t.ID, t.APIKey, t.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrTenantExists
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the tenant does not exist
func (r *TenantRepositoryImpl) FindByID(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT tenant_id, api_key, created_at FROM tenants WHERE tenant_id = ?`, tenantID,
	).Scan(&t.ID, &t.APIKey, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &t, nil
}
