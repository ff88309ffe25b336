package repository

import (
	"context"
	"path/filepath"

	"vmigrate.io/vmigrate/internal/domain"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// MigrationRepository stores migrations, each embedding a snapshot of its
// source workload and target.
type MigrationRepository struct {
	store documentStore[*domain.Migration]
}

// NewMigrationRepository opens (creating if needed) <dataDir>/migrations.
func NewMigrationRepository(dataDir string) (*MigrationRepository, error) {
	dir := filepath.Join(dataDir, MigrationsDir)
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &MigrationRepository{
		store: documentStore[*domain.Migration]{
			dir:    dir,
			kind:   "migration",
			log:    newLogger("migration"),
			idOf:   func(m *domain.Migration) string { return m.ID() },
			encode: func(m *domain.Migration) any { return m.Document() },
			decode: func(data []byte) (*domain.Migration, error) {
				return decodeDocument(data, domain.MigrationFromDocument)
			},
			notFound: apperrors.ErrMigrationNotFoundf,
			conflict: apperrors.ErrMigrationExistsf,
		},
	}, nil
}

// Dir returns the directory holding the migration documents.
func (r *MigrationRepository) Dir() string { return r.store.dir }

func (r *MigrationRepository) Create(ctx context.Context, m *domain.Migration) error {
	return r.store.create(ctx, m)
}

func (r *MigrationRepository) Get(ctx context.Context, id string) (*domain.Migration, error) {
	return r.store.get(ctx, id)
}

func (r *MigrationRepository) ListAll(ctx context.Context) ([]*domain.Migration, error) {
	return r.store.list(ctx)
}

// Update persists the migration's current state, including a state change
// made by a run.
func (r *MigrationRepository) Update(ctx context.Context, m *domain.Migration) error {
	return r.store.update(ctx, m)
}

func (r *MigrationRepository) Delete(ctx context.Context, id string) error {
	return r.store.delete(ctx, id)
}
