package repository

import (
	"fmt"
)

// Repositories groups the three aggregate stores rooted at one data directory.
type Repositories struct {
	Workloads        *WorkloadRepository
	MigrationTargets *MigrationTargetRepository
	Migrations       *MigrationRepository
}

// Open creates the store directories under dataDir and returns the repositories.
func Open(dataDir string) (*Repositories, error) {
	workloads, err := NewWorkloadRepository(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open workload repository: %w", err)
	}
	targets, err := NewMigrationTargetRepository(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open migration target repository: %w", err)
	}
	migrations, err := NewMigrationRepository(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open migration repository: %w", err)
	}
	return &Repositories{
		Workloads:        workloads,
		MigrationTargets: targets,
		Migrations:       migrations,
	}, nil
}

// Dirs lists the store directories, for readiness checks.
func (r *Repositories) Dirs() []string {
	return []string{r.Workloads.Dir(), r.MigrationTargets.Dir(), r.Migrations.Dir()}
}
