// Package worker provides goroutine pool management.
//
// Background work goes through a Pool, never a bare goroutine, so shutdown
// can wait for it and panics are recovered and logged in one place.
//
// Import Path: vmigrate.io/vmigrate/internal/pkg/worker
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool names accepted by SubmitDetached and reported by Metrics.
const (
	PoolGeneral   = "general"
	PoolMigration = "migration"
)

// shutdownTimeout bounds how long Shutdown waits for each pool to drain.
const shutdownTimeout = 30 * time.Second

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool *ants.Pool
	name string
}

// Pools is the worker pool collection.
type Pools struct {
	General *Pool
	// Migration runs data transfers, which may block for the configured
	// transfer delay or longer.
	Migration *Pool

	// serviceCtx is cancelled by Shutdown and handed to detached tasks.
	serviceCtx    context.Context
	serviceCancel context.CancelFunc
}

// PoolConfig contains worker pool configuration.
type PoolConfig struct {
	GeneralPoolSize   int
	MigrationPoolSize int
}

// DefaultPoolConfig returns default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		GeneralPoolSize:   100,
		MigrationPoolSize: 10,
	}
}

func newPool(name string, size int, expiry time.Duration) (*Pool, error) {
	p, err := ants.NewPool(size,
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("Worker panic recovered",
				zap.String("pool", name),
				zap.Any("panic", v),
				zap.Stack("stack"),
			)
		}),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(expiry),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p, name: name}, nil
}

// NewPools creates the worker pool collection. Cancelling ctx has the same
// effect on detached tasks as Shutdown.
func NewPools(ctx context.Context, cfg PoolConfig) (*Pools, error) {
	general, err := newPool(PoolGeneral, cfg.GeneralPoolSize, 10*time.Second)
	if err != nil {
		return nil, err
	}
	// Transfer workers are longer-lived, so idle ones expire later.
	migration, err := newPool(PoolMigration, cfg.MigrationPoolSize, 30*time.Second)
	if err != nil {
		general.pool.Release()
		return nil, err
	}

	serviceCtx, serviceCancel := context.WithCancel(ctx)
	return &Pools{
		General:       general,
		Migration:     migration,
		serviceCtx:    serviceCtx,
		serviceCancel: serviceCancel,
	}, nil
}

func (p *Pool) submit(fn func()) error {
	if err := p.pool.Submit(fn); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// Submit runs task with the caller's context. A context that is already
// cancelled, or becomes cancelled while the task is queued, skips the task.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.submit(func() {
		if err := ctx.Err(); err != nil {
			logger.Debug("Task skipped: context cancelled",
				zap.String("pool", p.name),
				zap.Error(err),
			)
			return
		}
		task(ctx)
	})
}

// SubmitDetached runs task with the service context instead of a request
// context, for work that must outlive the HTTP request. The task always
// runs once accepted; it must check ctx to notice a shutdown in progress.
// Unknown pool names use the general pool.
func (p *Pools) SubmitDetached(poolName string, task Task) error {
	return p.byName(poolName).submit(func() { task(p.serviceCtx) })
}

func (p *Pools) byName(name string) *Pool {
	if name == PoolMigration {
		return p.Migration
	}
	return p.General
}

// Shutdown cancels the service context, then waits for running and queued
// tasks (at most shutdownTimeout per pool).
func (p *Pools) Shutdown() {
	p.serviceCancel()
	for _, pool := range []*Pool{p.General, p.Migration} {
		if err := pool.pool.ReleaseTimeout(shutdownTimeout); err != nil {
			logger.Warn("Worker pool shutdown timeout", zap.String("pool", pool.name), zap.Error(err))
		}
	}
}

// Metrics returns running/free/cap per pool for the readiness endpoint.
func (p *Pools) Metrics() map[string]interface{} {
	out := make(map[string]interface{}, 2)
	for _, pool := range []*Pool{p.General, p.Migration} {
		out[pool.name] = map[string]int{
			"running": pool.pool.Running(),
			"free":    pool.pool.Free(),
			"cap":     pool.pool.Cap(),
		}
	}
	return out
}
