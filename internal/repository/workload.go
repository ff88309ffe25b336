package repository

import (
	"context"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/domain"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// WorkloadRepository stores workloads and keeps their ip unique.
type WorkloadRepository struct {
	store documentStore[*domain.Workload]

	// mu serializes the scan-then-write of Create and Update.
	mu sync.Mutex
}

// NewWorkloadRepository opens (creating if needed) <dataDir>/workloads.
func NewWorkloadRepository(dataDir string) (*WorkloadRepository, error) {
	dir := filepath.Join(dataDir, WorkloadsDir)
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &WorkloadRepository{
		store: documentStore[*domain.Workload]{
			dir:    dir,
			kind:   "workload",
			log:    newLogger("workload"),
			idOf:   func(w *domain.Workload) string { return w.ID() },
			encode: func(w *domain.Workload) any { return w.Document() },
			decode: func(data []byte) (*domain.Workload, error) {
				return decodeDocument(data, domain.WorkloadFromDocument)
			},
			notFound: apperrors.ErrWorkloadNotFoundf,
			conflict: apperrors.ErrWorkloadExistsf,
		},
	}, nil
}

// Dir returns the directory holding the workload documents.
func (r *WorkloadRepository) Dir() string { return r.store.dir }

// Create stores a new workload. It fails with WORKLOAD_ALREADY_EXISTS when
// a stored workload has the same ip.
func (r *WorkloadRepository) Create(ctx context.Context, w *domain.Workload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.list(ctx)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.IP() == w.IP() {
			r.store.log.Info("workload ip already registered",
				zap.String("ip", w.IP()),
				zap.String("existing_id", other.ID()),
			)
			return apperrors.Duplicate(apperrors.CodeWorkloadExists, "workload with this ip already exists").
				WithParams(map[string]interface{}{"ip": w.IP(), "id": other.ID()})
		}
	}
	return r.store.create(ctx, w)
}

// Get loads the workload with the given id.
func (r *WorkloadRepository) Get(ctx context.Context, id string) (*domain.Workload, error) {
	return r.store.get(ctx, id)
}

// ListAll returns every decodable workload.
func (r *WorkloadRepository) ListAll(ctx context.Context) ([]*domain.Workload, error) {
	return r.store.list(ctx)
}

// Update replaces a stored workload. The ip cannot change.
func (r *WorkloadRepository) Update(ctx context.Context, w *domain.Workload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.store.get(ctx, w.ID())
	if err != nil {
		return err
	}
	if current.IP() != w.IP() {
		return apperrors.BusinessRule(apperrors.CodeWorkloadIPImmutable, "workload ip cannot be changed").
			WithParams(map[string]interface{}{"id": w.ID(), "ip": current.IP()})
	}
	return r.store.update(ctx, w)
}

// Delete removes the workload with the given id.
func (r *WorkloadRepository) Delete(ctx context.Context, id string) error {
	return r.store.delete(ctx, id)
}
