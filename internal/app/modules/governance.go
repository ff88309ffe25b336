package modules

import (
	"context"

	"vmigrate.io/vmigrate/internal/api/handlers"
)

// GovernanceModule contributes the audit trail.
type GovernanceModule struct {
	infra *Infrastructure
}

func NewGovernanceModule(infra *Infrastructure) *GovernanceModule {
	return &GovernanceModule{infra: infra}
}

func (m *GovernanceModule) Name() string { return "governance" }

func (m *GovernanceModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Audit = m.infra.AuditLogger
}

func (m *GovernanceModule) Shutdown(context.Context) error { return nil }
