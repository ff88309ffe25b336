// Package seed loads a YAML fixture of workloads, migration targets and
// migrations into the document stores.
//
// Loading is idempotent: entries whose id is already stored are skipped,
// and a workload whose ip is already taken is skipped with a warning.
//
// Import Path: vmigrate.io/vmigrate/internal/seed
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"vmigrate.io/vmigrate/internal/domain"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
	"vmigrate.io/vmigrate/internal/pkg/logger"
	"vmigrate.io/vmigrate/internal/repository"
)

// Fixture is the top-level YAML document.
type Fixture struct {
	Workloads        []domain.WorkloadDocument        `yaml:"workloads"`
	MigrationTargets []domain.MigrationTargetDocument `yaml:"migration_targets"`
	Migrations       []MigrationEntry                 `yaml:"migrations"`
}

// MigrationEntry references a stored workload and target by id. Selected
// names are resolved against the source workload's storage.
type MigrationEntry struct {
	ID       string   `yaml:"id"`
	Source   string   `yaml:"source"`
	Target   string   `yaml:"target"`
	Selected []string `yaml:"selected"`
}

// Result counts what Apply did per kind.
type Result struct {
	Created map[string]int
	Skipped map[string]int
}

const (
	kindWorkload        = "workload"
	kindMigrationTarget = "migration_target"
	kindMigration       = "migration"
)

func newResult() Result {
	return Result{Created: map[string]int{}, Skipped: map[string]int{}}
}

// LoadFile reads and decodes a fixture. Unknown keys are rejected.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Decode(data)
}

// Decode parses a fixture from YAML bytes.
func Decode(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Apply writes the fixture into repos. Workloads and targets go first so
// migrations can reference them.
func Apply(ctx context.Context, repos *repository.Repositories, f *Fixture) (Result, error) {
	res := newResult()

	for _, doc := range f.Workloads {
		if err := applyWorkload(ctx, repos.Workloads, doc, &res); err != nil {
			return res, err
		}
	}
	for _, doc := range f.MigrationTargets {
		if err := applyTarget(ctx, repos.MigrationTargets, doc, &res); err != nil {
			return res, err
		}
	}
	for _, entry := range f.Migrations {
		if err := applyMigration(ctx, repos, entry, &res); err != nil {
			return res, err
		}
	}

	logger.Info("Seed applied",
		zap.Any("created", res.Created),
		zap.Any("skipped", res.Skipped),
	)
	return res, nil
}

func applyWorkload(ctx context.Context, repo *repository.WorkloadRepository, doc domain.WorkloadDocument, res *Result) error {
	if stored, err := exists(ctx, doc.ID, func(id string) error { _, err := repo.Get(ctx, id); return err }); err != nil {
		return err
	} else if stored {
		res.Skipped[kindWorkload]++
		return nil
	}

	w, err := domain.WorkloadFromDocument(doc)
	if err != nil {
		return fmt.Errorf("seed workload %q: %w", doc.IP, err)
	}
	if err := repo.Create(ctx, w); err != nil {
		if apperrors.IsDuplicate(err) {
			logger.Warn("Seed workload skipped: ip already registered",
				zap.String("ip", w.IP()),
				zap.String("workload_id", w.ID()),
			)
			res.Skipped[kindWorkload]++
			return nil
		}
		return fmt.Errorf("seed workload %q: %w", doc.IP, err)
	}
	res.Created[kindWorkload]++
	return nil
}

func applyTarget(ctx context.Context, repo *repository.MigrationTargetRepository, doc domain.MigrationTargetDocument, res *Result) error {
	if stored, err := exists(ctx, doc.ID, func(id string) error { _, err := repo.Get(ctx, id); return err }); err != nil {
		return err
	} else if stored {
		res.Skipped[kindMigrationTarget]++
		return nil
	}

	t, err := domain.MigrationTargetFromDocument(doc)
	if err != nil {
		return fmt.Errorf("seed migration target %q: %w", doc.ID, err)
	}
	if err := repo.Create(ctx, t); err != nil {
		return fmt.Errorf("seed migration target %q: %w", doc.ID, err)
	}
	res.Created[kindMigrationTarget]++
	return nil
}

func applyMigration(ctx context.Context, repos *repository.Repositories, entry MigrationEntry, res *Result) error {
	if entry.ID == "" {
		return fmt.Errorf("seed migration: id is required")
	}
	if stored, err := exists(ctx, entry.ID, func(id string) error { _, err := repos.Migrations.Get(ctx, id); return err }); err != nil {
		return err
	} else if stored {
		res.Skipped[kindMigration]++
		return nil
	}

	source, err := repos.Workloads.Get(ctx, entry.Source)
	if err != nil {
		return fmt.Errorf("seed migration %q: source: %w", entry.ID, err)
	}
	target, err := repos.MigrationTargets.Get(ctx, entry.Target)
	if err != nil {
		return fmt.Errorf("seed migration %q: target: %w", entry.ID, err)
	}
	selected, err := selectMountPoints(source, entry.Selected)
	if err != nil {
		return fmt.Errorf("seed migration %q: %w", entry.ID, err)
	}

	m, err := domain.RestoreMigration(entry.ID, selected, source, target, domain.MigrationStateNotStarted, "")
	if err != nil {
		return fmt.Errorf("seed migration %q: %w", entry.ID, err)
	}
	if err := repos.Migrations.Create(ctx, m); err != nil {
		return fmt.Errorf("seed migration %q: %w", entry.ID, err)
	}
	res.Created[kindMigration]++
	return nil
}

func selectMountPoints(source *domain.Workload, names []string) ([]domain.MountPoint, error) {
	byName := make(map[string]domain.MountPoint, len(source.Storage()))
	for _, mp := range source.Storage() {
		byName[mp.Name()] = mp
	}
	out := make([]domain.MountPoint, 0, len(names))
	for _, name := range names {
		mp, ok := byName[name]
		if !ok {
			return nil, apperrors.BusinessRulef(apperrors.CodeMountPointNotInSource,
				"mount point %q is not part of workload %s", name, source.ID())
		}
		out = append(out, mp)
	}
	return out, nil
}

// exists reports whether id is already stored. An empty id is never stored.
func exists(ctx context.Context, id string, get func(string) error) (bool, error) {
	if id == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := get(id)
	if err == nil {
		return true, nil
	}
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}
