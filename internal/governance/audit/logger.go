// Package audit implements the audit trail.
//
// Audit records are append-only: each one is written once as its own JSON
// document under <data_dir>/audit and never rewritten or deleted by the
// service. Write failures are logged and returned; callers treat them as
// non-fatal.
//
// Import Path: vmigrate.io/vmigrate/internal/governance/audit
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/pkg/docfile"
	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// Dir is the audit subdirectory of the data directory.
const Dir = "audit"

// Resource types.
const (
	ResourceWorkload        = "workload"
	ResourceMigrationTarget = "migration_target"
	ResourceMigration       = "migration"
)

// Record is one audit entry.
type Record struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Actor        string                 `json:"actor"`
	Details      map[string]interface{} `json:"details,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Logger writes audit records to the data directory.
type Logger struct {
	dir string
	now func() time.Time
}

// NewLogger creates the audit directory under dataDir and returns a Logger.
func NewLogger(dataDir string) (*Logger, error) {
	dir := filepath.Join(dataDir, Dir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	return &Logger{dir: dir, now: time.Now}, nil
}

// Dir returns the directory holding the records.
func (l *Logger) Dir() string { return l.dir }

// LogAction records an auditable action.
func (l *Logger) LogAction(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := Record{
		ID:           generateAuditID(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor,
		Details:      details,
		CreatedAt:    l.now().UTC(),
	}
	if err := docfile.Write(filepath.Join(l.dir, rec.ID+docfile.Extension), rec); err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// LogCRUD records a create, update or delete of an aggregate.
func (l *Logger) LogCRUD(ctx context.Context, operation, resourceType, resourceID, actor string) error {
	return l.LogAction(ctx, resourceType+"."+operation, resourceType, resourceID, actor, nil)
}

// LogMigration records a migration run event such as "run" or "completed".
func (l *Logger) LogMigration(ctx context.Context, event, migrationID, actor string, details map[string]interface{}) error {
	return l.LogAction(ctx, "migration."+event, ResourceMigration, migrationID, actor, details)
}

// List returns every stored record, oldest first.
func (l *Logger) List(ctx context.Context) ([]Record, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasPrefix(name, "audit-") || !strings.HasSuffix(name, docfile.Extension) {
			continue
		}
		var rec Record
		if err := docfile.ReadJSON(filepath.Join(l.dir, name), &rec); err != nil {
			logger.Debug("Skipping unreadable audit record", zap.String("file", name), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	// UUIDv7 ids sort by time; created_at breaks ties from the fallback path.
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "audit-" + uuid.New().String()
	}
	return fmt.Sprintf("audit-%s", id.String())
}
