package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
}

func TestMigration_RunMovesSelectedDisks(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("C:", 50), mountPoint("D:", 100))
	target := testTarget(t)

	m, err := NewMigration([]MountPoint{mountPoint("D:", 100)}, source, target)
	require.NoError(t, err)
	require.Equal(t, MigrationStateNotStarted, m.State())

	require.NoError(t, m.Run(0))
	assert.Equal(t, MigrationStateSuccess, m.State())
	assert.Empty(t, m.LastError())

	vm := m.MigrationTarget().TargetVM()
	assert.Equal(t, source.Credentials(), vm.Credentials())
	assert.Equal(t, []MountPoint{mountPoint("D:", 100)}, vm.Storage())

	// The caller's target is a separate snapshot.
	assert.Empty(t, target.TargetVM().Storage())
	assert.Equal(t, "cloud", target.CloudCredentials().Username())
}

func TestMigration_RunKeepsSourceOrder(t *testing.T) {
	source := testWorkload(t, "10.0.0.1",
		mountPoint("D:", 1), mountPoint("E:", 2), mountPoint("F:", 3))

	m, err := NewMigration([]MountPoint{mountPoint("F:", 3), mountPoint("D:", 1)}, source, testTarget(t))
	require.NoError(t, err)
	require.NoError(t, m.Run(0))

	names := []string{}
	for _, mp := range m.MigrationTarget().TargetVM().Storage() {
		names = append(names, mp.Name())
	}
	assert.Equal(t, []string{"D:", "F:"}, names)
}

func TestMigration_EmptySelection(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
	m, err := NewMigration(nil, source, testTarget(t))
	require.NoError(t, err)

	require.NoError(t, m.Run(0))
	assert.Equal(t, MigrationStateSuccess, m.State())
	assert.Empty(t, m.MigrationTarget().TargetVM().Storage())
	assert.Equal(t, source.Credentials(), m.MigrationTarget().TargetVM().Credentials())
}

func TestMigration_SystemVolumeRejected(t *testing.T) {
	names := []string{"C:", "c:", " C:\\ ", "c:/", "C:\\\\"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			source := testWorkload(t, "10.0.0.1", mountPoint(name, 10), mountPoint("D:", 1))
			m, err := NewMigration([]MountPoint{mountPoint(name, 10)}, source, testTarget(t))
			require.NoError(t, err)

			err = m.Run(0)
			require.Error(t, err)
			require.True(t, apperrors.IsBusinessRule(err))
			requireCode(t, err, apperrors.CodeSystemVolumeNotAllowed)
			assert.Equal(t, MigrationStateError, m.State())
			assert.NotEmpty(t, m.LastError())
			assert.Empty(t, m.MigrationTarget().TargetVM().Storage())
		})
	}
}

func TestIsSystemVolume(t *testing.T) {
	tests := map[string]bool{
		"C:":    true,
		"c:\\":  true,
		" C:/ ": true,
		"C":     false,
		"CC:":   false,
		"D:":    false,
		"C:\\x": false,
		"/":     false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsSystemVolume(name), name)
	}
}

func TestMigration_RunRejectsTerminalAndRunningStates(t *testing.T) {
	for _, state := range []MigrationState{MigrationStateRunning, MigrationStateSuccess} {
		t.Run(string(state), func(t *testing.T) {
			source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
			m, err := RestoreMigration("m-1", nil, source, testTarget(t), state, "")
			require.NoError(t, err)

			err = m.Run(0)
			requireCode(t, err, apperrors.CodeMigrationStateInvalid)
			assert.Equal(t, state, m.State())
		})
	}
}

func TestMigration_RetryFromError(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
	m, err := NewMigration([]MountPoint{mountPoint("D:", 1)}, source, testTarget(t))
	require.NoError(t, err)

	failing := TransferFunc(func(*Workload, []MountPoint) error { return errors.New("link down") })
	err = m.Execute(failing)
	requireCode(t, err, apperrors.CodeMigrationTransferFail)
	assert.Equal(t, MigrationStateError, m.State())
	assert.Contains(t, m.LastError(), "link down")
	assert.Empty(t, m.MigrationTarget().TargetVM().Storage())

	require.NoError(t, m.Run(0))
	assert.Equal(t, MigrationStateSuccess, m.State())
	assert.Empty(t, m.LastError())
	assert.Len(t, m.MigrationTarget().TargetVM().Storage(), 1)
}

func TestMigration_TransferPanicBecomesError(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
	m, err := NewMigration(nil, source, testTarget(t))
	require.NoError(t, err)

	err = m.Execute(TransferFunc(func(*Workload, []MountPoint) error { panic("boom") }))
	requireCode(t, err, apperrors.CodeMigrationTransferFail)
	assert.Equal(t, MigrationStateError, m.State())
	assert.Contains(t, m.LastError(), "boom")
}

func TestMigration_StartThenComplete(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
	m, err := NewMigration([]MountPoint{mountPoint("D:", 1)}, source, testTarget(t))
	require.NoError(t, err)

	requireCode(t, m.Complete(SimulatedTransfer(0)), apperrors.CodeMigrationStateInvalid)

	require.NoError(t, m.Start())
	assert.Equal(t, MigrationStateRunning, m.State())
	requireCode(t, m.Start(), apperrors.CodeMigrationStateInvalid)

	var gotSelected []MountPoint
	require.NoError(t, m.Complete(TransferFunc(func(_ *Workload, selected []MountPoint) error {
		gotSelected = selected
		return nil
	})))
	assert.Equal(t, []MountPoint{mountPoint("D:", 1)}, gotSelected)
	assert.Equal(t, MigrationStateSuccess, m.State())
}

func TestNewMigration_Validation(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
	target := testTarget(t)

	t.Run("nil source", func(t *testing.T) {
		_, err := NewMigration(nil, nil, target)
		requireCode(t, err, apperrors.CodeMigrationInvalid)
	})

	t.Run("nil target", func(t *testing.T) {
		_, err := NewMigration(nil, source, nil)
		requireCode(t, err, apperrors.CodeMigrationInvalid)
	})

	t.Run("selection not in source", func(t *testing.T) {
		_, err := NewMigration([]MountPoint{mountPoint("Z:", 1)}, source, target)
		requireCode(t, err, apperrors.CodeMountPointNotInSource)
	})

	t.Run("selection matches by name only", func(t *testing.T) {
		m, err := NewMigration([]MountPoint{mountPoint("D:", 999)}, source, target)
		require.NoError(t, err)
		require.NoError(t, m.Run(0))
		assert.Equal(t, int64(1), m.MigrationTarget().TargetVM().Storage()[0].TotalSize())
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := RestoreMigration("m-1", nil, source, target, "PAUSED", "")
		requireCode(t, err, apperrors.CodeMigrationStateUnknown)
	})
}

func TestNewMigration_SnapshotsSource(t *testing.T) {
	source := testWorkload(t, "10.0.0.1", mountPoint("D:", 1))
	m, err := NewMigration(nil, source, testTarget(t))
	require.NoError(t, err)

	assert.NotSame(t, source, m.Source())
	assert.Equal(t, source.Document(), m.Source().Document())
}
