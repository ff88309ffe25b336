package modules

import (
	"context"

	"vmigrate.io/vmigrate/internal/api/handlers"
	"vmigrate.io/vmigrate/internal/service"
)

// MigrationModule wires the migration store and the run service.
type MigrationModule struct {
	infra   *Infrastructure
	service *service.MigrationService
	async   bool
}

// NewMigrationModule creates the migration module. Runs use the migration
// worker pool when migration.async is enabled.
func NewMigrationModule(infra *Infrastructure) *MigrationModule {
	cfg := infra.Config.Migration
	svc := service.NewMigrationService(
		infra.Repositories.Migrations,
		infra.Pools,
		infra.AuditLogger,
		cfg.TransferDelay,
	)
	return &MigrationModule{infra: infra, service: svc, async: cfg.Async}
}

func (m *MigrationModule) Name() string { return "migration" }

func (m *MigrationModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Migrations = m.infra.Repositories.Migrations
	deps.MigrationService = m.service
	deps.AsyncRuns = m.async
}

func (m *MigrationModule) Shutdown(context.Context) error { return nil }
