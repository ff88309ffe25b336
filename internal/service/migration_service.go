// Package service provides the business operations that span the domain
// model, the document store and background workers.
//
// The domain package decides state transitions; services load, drive and
// persist. Services never hold a document lock across a transfer.
//
// Import Path: vmigrate.io/vmigrate/internal/service
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/domain"
	"vmigrate.io/vmigrate/internal/governance/audit"
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
	"vmigrate.io/vmigrate/internal/pkg/logger"
	"vmigrate.io/vmigrate/internal/pkg/worker"
)

// MigrationStore is the subset of the migration repository the service needs.
type MigrationStore interface {
	Get(ctx context.Context, id string) (*domain.Migration, error)
	Update(ctx context.Context, m *domain.Migration) error
}

// AuditLogger records migration run events.
type AuditLogger interface {
	LogMigration(ctx context.Context, event, migrationID, actor string, details map[string]interface{}) error
}

var _ AuditLogger = (*audit.Logger)(nil)

var errInterrupted = errors.New("transfer interrupted by shutdown")

// Status is the externally visible progress of a migration.
type Status struct {
	State     domain.MigrationState `json:"status"`
	LastError string                `json:"last_error,omitempty"`
}

// MigrationService runs migrations and persists their outcome.
type MigrationService struct {
	store    MigrationStore
	pools    *worker.Pools
	audit    AuditLogger
	transfer domain.Transfer

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Option configures a MigrationService.
type Option func(*MigrationService)

// WithTransfer replaces the simulated transfer.
func WithTransfer(t domain.Transfer) Option {
	return func(s *MigrationService) { s.transfer = t }
}

// NewMigrationService creates a MigrationService whose runs use a simulated
// transfer lasting delay. pools may be nil when RunAsync is not used; audit
// may be nil to disable audit records.
func NewMigrationService(store MigrationStore, pools *worker.Pools, auditLogger AuditLogger, delay time.Duration, opts ...Option) *MigrationService {
	s := &MigrationService{
		store:    store,
		pools:    pools,
		audit:    auditLogger,
		transfer: domain.SimulatedTransfer(delay),
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the migration synchronously and persists the final state.
//
// A migration that fails a precondition without changing state (already
// running or finished) is not written. A run that ends in ERROR is written
// before the error is returned, so a later retry starts from ERROR. Once the
// transfer has run, the outcome is persisted even if ctx is cancelled.
func (s *MigrationService) Run(ctx context.Context, id, actor string) (*domain.Migration, error) {
	if err := s.acquire(id); err != nil {
		return nil, err
	}
	defer s.release(id)

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "run", id, actor, map[string]interface{}{"from_state": string(m.State())})

	runErr := m.Execute(s.transfer)
	if runErr != nil && !changedState(runErr) {
		return nil, runErr
	}
	persistCtx := context.WithoutCancel(ctx)
	if err := s.store.Update(persistCtx, m); err != nil {
		logger.Error("Failed to persist migration result",
			zap.String("migration_id", id),
			zap.String("state", string(m.State())),
			zap.Error(err),
		)
		return nil, err
	}
	s.finish(persistCtx, m, actor, runErr)
	return m, runErr
}

// RunAsync validates and starts the migration, persists RUNNING, and hands
// the transfer to the migration worker pool. It returns the state the
// caller should report, which is RUNNING on success.
func (s *MigrationService) RunAsync(ctx context.Context, id, actor string) (domain.MigrationState, error) {
	if s.pools == nil {
		return "", apperrors.Internal(apperrors.CodeInternal, "async migration runs are not configured")
	}
	if err := s.acquire(id); err != nil {
		return "", err
	}
	handedOff := false
	defer func() {
		if !handedOff {
			s.release(id)
		}
	}()

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	s.record(ctx, "run", id, actor, map[string]interface{}{"from_state": string(m.State()), "async": true})

	if err := m.Start(); err != nil {
		if changedState(err) {
			if perr := s.store.Update(ctx, m); perr != nil {
				return "", perr
			}
			s.finish(ctx, m, actor, err)
		}
		return "", err
	}
	if err := s.store.Update(ctx, m); err != nil {
		return "", err
	}

	submitErr := s.pools.SubmitDetached(worker.PoolMigration, func(taskCtx context.Context) {
		defer s.release(id)
		t := s.transfer
		if taskCtx.Err() != nil {
			// Dequeued during shutdown: end in ERROR so the run can be retried.
			t = failingTransfer(errInterrupted)
		}
		s.complete(taskCtx, m, actor, t)
	})
	if submitErr != nil {
		logger.Error("Failed to submit migration transfer",
			zap.String("migration_id", id),
			zap.Error(submitErr),
		)
		s.complete(ctx, m, actor, failingTransfer(submitErr))
		return m.State(), apperrors.Internal(apperrors.CodeInternal, "could not schedule migration transfer").WithCause(submitErr)
	}
	handedOff = true
	return domain.MigrationStateRunning, nil
}

// complete finishes a started migration and persists the outcome even if
// ctx is cancelled during the transfer.
func (s *MigrationService) complete(ctx context.Context, m *domain.Migration, actor string, t domain.Transfer) {
	runErr := m.Complete(t)
	persistCtx := context.WithoutCancel(ctx)
	if err := s.store.Update(persistCtx, m); err != nil {
		logger.Error("Failed to persist migration result",
			zap.String("migration_id", m.ID()),
			zap.String("state", string(m.State())),
			zap.Error(err),
		)
		return
	}
	s.finish(persistCtx, m, actor, runErr)
}

func failingTransfer(err error) domain.Transfer {
	return domain.TransferFunc(func(*domain.Workload, []domain.MountPoint) error { return err })
}

// Status reports the stored state of a migration.
func (s *MigrationService) Status(ctx context.Context, id string) (Status, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return Status{}, err
	}
	return Status{State: m.State(), LastError: m.LastError()}, nil
}

func (s *MigrationService) finish(ctx context.Context, m *domain.Migration, actor string, runErr error) {
	if runErr != nil {
		logger.Warn("Migration failed",
			zap.String("migration_id", m.ID()),
			zap.String("state", string(m.State())),
			zap.Error(runErr),
		)
		s.record(ctx, "run_failed", m.ID(), actor, map[string]interface{}{
			"state": string(m.State()),
			"error": m.LastError(),
		})
		return
	}
	logger.Info("Migration completed",
		zap.String("migration_id", m.ID()),
		zap.Int("mount_points", len(m.SelectedMountPoints())),
	)
	s.record(ctx, "completed", m.ID(), actor, map[string]interface{}{"state": string(m.State())})
}

func (s *MigrationService) record(ctx context.Context, event, id, actor string, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	// Audit failures are logged by the audit logger and never fail a run.
	_ = s.audit.LogMigration(ctx, event, id, actor, details)
}

// acquire prevents two runs of the same migration inside this process.
func (s *MigrationService) acquire(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return apperrors.BusinessRulef(apperrors.CodeMigrationStateInvalid, "migration %s is already running", id).
			WithParams(map[string]interface{}{"id": id, "state": string(domain.MigrationStateRunning)})
	}
	s.inflight[id] = struct{}{}
	return nil
}

func (s *MigrationService) release(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

// changedState reports whether a run error was raised after the migration
// moved to ERROR, as opposed to a rejected precondition.
func changedState(err error) bool {
	appErr, ok := apperrors.IsAppError(err)
	if !ok {
		return true
	}
	return appErr.Code != apperrors.CodeMigrationStateInvalid
}
