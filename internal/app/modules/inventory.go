package modules

import (
	"context"

	"vmigrate.io/vmigrate/internal/api/handlers"
)

// InventoryModule wires the workload and migration target stores.
type InventoryModule struct {
	infra *Infrastructure
}

// NewInventoryModule creates the inventory module.
func NewInventoryModule(infra *Infrastructure) *InventoryModule {
	return &InventoryModule{infra: infra}
}

func (m *InventoryModule) Name() string { return "inventory" }

func (m *InventoryModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil || m.infra == nil || m.infra.Repositories == nil {
		return
	}
	deps.Workloads = m.infra.Repositories.Workloads
	deps.MigrationTargets = m.infra.Repositories.MigrationTargets
}

func (m *InventoryModule) Shutdown(context.Context) error { return nil }
