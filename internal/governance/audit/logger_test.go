package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmigrate.io/vmigrate/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestLogger_LogAction(t *testing.T) {
	dataDir := t.TempDir()
	l, err := NewLogger(dataDir)
	require.NoError(t, err)

	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	require.NoError(t, l.LogMigration(context.Background(), "run", "m-1", "operator", map[string]interface{}{"state": "SUCCESS"}))

	entries, err := os.ReadDir(filepath.Join(dataDir, Dir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "audit-"))

	records, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "migration.run", rec.Action)
	assert.Equal(t, ResourceMigration, rec.ResourceType)
	assert.Equal(t, "m-1", rec.ResourceID)
	assert.Equal(t, "operator", rec.Actor)
	assert.Equal(t, "SUCCESS", rec.Details["state"])
	assert.True(t, fixed.Equal(rec.CreatedAt))
}

func TestLogger_ListOrdersOldestFirst(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, op := range []string{"create", "update", "delete"} {
		at := base.Add(time.Duration(i) * time.Minute)
		l.now = func() time.Time { return at }
		require.NoError(t, l.LogCRUD(context.Background(), op, ResourceWorkload, "w-1", "api"))
	}

	records, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "workload.create", records[0].Action)
	assert.Equal(t, "workload.update", records[1].Action)
	assert.Equal(t, "workload.delete", records[2].Action)
}

func TestLogger_UniqueIDs(t *testing.T) {
	a := generateAuditID()
	b := generateAuditID()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "audit-"))
}

func TestLogger_CanceledContext(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, l.LogAction(ctx, "x", "y", "z", "a", nil), context.Canceled)
}
