package repository

import (
	"context"
	"path/filepath"

	"vmigrate.io/vmigrate/internal/domain"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// MigrationTargetRepository stores migration targets.
type MigrationTargetRepository struct {
	store documentStore[*domain.MigrationTarget]
}

// NewMigrationTargetRepository opens (creating if needed) <dataDir>/migration_targets.
func NewMigrationTargetRepository(dataDir string) (*MigrationTargetRepository, error) {
	dir := filepath.Join(dataDir, MigrationTargetsDir)
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &MigrationTargetRepository{
		store: documentStore[*domain.MigrationTarget]{
			dir:    dir,
			kind:   "migration target",
			log:    newLogger("migration_target"),
			idOf:   func(t *domain.MigrationTarget) string { return t.ID() },
			encode: func(t *domain.MigrationTarget) any { return t.Document() },
			decode: func(data []byte) (*domain.MigrationTarget, error) {
				return decodeDocument(data, domain.MigrationTargetFromDocument)
			},
			notFound: apperrors.ErrMigrationTargetNotFoundf,
			conflict: apperrors.ErrMigrationTargetExistsf,
		},
	}, nil
}

// Dir returns the directory holding the target documents.
func (r *MigrationTargetRepository) Dir() string { return r.store.dir }

func (r *MigrationTargetRepository) Create(ctx context.Context, t *domain.MigrationTarget) error {
	return r.store.create(ctx, t)
}

func (r *MigrationTargetRepository) Get(ctx context.Context, id string) (*domain.MigrationTarget, error) {
	return r.store.get(ctx, id)
}

func (r *MigrationTargetRepository) ListAll(ctx context.Context) ([]*domain.MigrationTarget, error) {
	return r.store.list(ctx)
}

func (r *MigrationTargetRepository) Update(ctx context.Context, t *domain.MigrationTarget) error {
	return r.store.update(ctx, t)
}

func (r *MigrationTargetRepository) Delete(ctx context.Context, id string) error {
	return r.store.delete(ctx, id)
}
