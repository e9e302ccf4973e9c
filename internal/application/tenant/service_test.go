package tenant

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainTenant "github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "tenants.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(storage.NewTenantRepository(db))
}

func TestService_CreateAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	creds, err := svc.Create(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", creds.TenantID)

	raw, err := base64.RawURLEncoding.DecodeString(creds.APIKey)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	assert.NoError(t, svc.Verify(ctx, "t1", creds.APIKey))

	exists, err := svc.Exists(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestService_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Create(ctx, "t1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "t1")
	assert.ErrorIs(t, err, domainTenant.ErrTenantExists)
}

func TestService_CreateValidatesID(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		tenantID string
		wantErr  bool
	}{
		{"empty", "", true},
		{"too short", "a", true},
		{"minimum", "ab", false},
		{"maximum", strings.Repeat("x", 64), false},
		{"too long", strings.Repeat("x", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.tenantID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestService_KeyIsScopedToTenant rejects a valid key presented for another tenant
func TestService_KeyIsScopedToTenant(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	creds1, err := svc.Create(ctx, "t1")
	require.NoError(t, err)
	creds2, err := svc.Create(ctx, "t2")
	require.NoError(t, err)
	assert.NotEqual(t, creds1.APIKey, creds2.APIKey)

	assert.ErrorIs(t, svc.Verify(ctx, "t2", creds1.APIKey), domainTenant.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Verify(ctx, "t1", creds2.APIKey), domainTenant.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Verify(ctx, "t1", ""), domainTenant.ErrMissingCredentials)
	assert.ErrorIs(t, svc.Verify(ctx, "ghost", creds1.APIKey), domainTenant.ErrInvalidCredentials)
}
