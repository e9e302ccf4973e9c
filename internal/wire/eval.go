package wire

import (
	"context"
	"fmt"

	appEval "github.com/tourassist/backend/internal/application/eval"
	appTenant "github.com/tourassist/backend/internal/application/tenant"
	"github.com/tourassist/backend/internal/infrastructure/vector"
)

// EvalApp composes the eval CLI
type EvalApp struct {
	harness *appEval.Harness
	tenants *appTenant.Service
	backend vector.Backend
	index   *vector.IndexManager
}

// NewEvalApp creates the eval application
func NewEvalApp(harness *appEval.Harness, tenants *appTenant.Service, backend vector.Backend, index *vector.IndexManager) *EvalApp {
	return &EvalApp{
		harness: harness,
		tenants: tenants,
		backend: backend,
		index:   index,
	}
}

// Run evaluates cases loaded from casesPath against tenantID and writes the
// artifacts to outputDir
func (a *EvalApp) Run(ctx context.Context, tenantID, casesPath, outputDir string) (*appEval.Summary, error) {
	exists, err := a.tenants.Exists(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("tenant %q not found", tenantID)
	}

	cases, err := appEval.LoadCases(casesPath)
	if err != nil {
		return nil, err
	}

	if vector.IsVolatile(a.backend) {
		if err := a.index.Rebuild(ctx); err != nil {
			return nil, err
		}
	}

	return a.harness.Run(ctx, tenantID, cases, outputDir)
}
