package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// MigrationState is the lifecycle state of a Migration.
// Values are part of the stored document contract.
type MigrationState string

const (
	MigrationStateNotStarted MigrationState = "NOT_STARTED"
	MigrationStateRunning    MigrationState = "RUNNING"
	MigrationStateError      MigrationState = "ERROR"
	MigrationStateSuccess    MigrationState = "SUCCESS"
)

// MigrationStates lists every state.
var MigrationStates = []MigrationState{
	MigrationStateNotStarted,
	MigrationStateRunning,
	MigrationStateError,
	MigrationStateSuccess,
}

// ParseMigrationState matches s exactly against the enumerated values.
func ParseMigrationState(s string) (MigrationState, error) {
	for _, st := range MigrationStates {
		if string(st) == s {
			return st, nil
		}
	}
	return "", apperrors.BusinessRulef(apperrors.CodeMigrationStateUnknown, "unknown migration state %q", s)
}

// Runnable reports whether Start may be invoked from s.
func (s MigrationState) Runnable() bool {
	return s == MigrationStateNotStarted || s == MigrationStateError
}

// systemVolume is the normalized boot volume name that may never be migrated.
const systemVolume = "c:"

// IsSystemVolume reports whether name designates the boot/system volume,
// ignoring case, surrounding whitespace and trailing path separators.
func IsSystemVolume(name string) bool {
	normalized := strings.TrimRight(strings.TrimSpace(name), `/\`)
	return strings.ToLower(normalized) == systemVolume
}

// Transfer moves the selected disks of source to the destination. The
// simulated implementation only waits; a real one copies data.
type Transfer interface {
	Transfer(source *Workload, selected []MountPoint) error
}

// TransferFunc adapts a function to Transfer.
type TransferFunc func(source *Workload, selected []MountPoint) error

// Transfer calls f.
func (f TransferFunc) Transfer(source *Workload, selected []MountPoint) error {
	return f(source, selected)
}

// SimulatedTransfer blocks for delay and reports success.
func SimulatedTransfer(delay time.Duration) Transfer {
	return TransferFunc(func(*Workload, []MountPoint) error {
		if delay > 0 {
			time.Sleep(delay)
		}
		return nil
	})
}

// Migration moves a subset of a source workload's disks to a migration target.
//
// Source and target are owned snapshots taken at construction: the Migration
// never aliases Workload or MigrationTarget values held elsewhere, so stored
// records may diverge from its embedded copies.
type Migration struct {
	id                  string
	selectedMountPoints []MountPoint
	source              *Workload
	migrationTarget     *MigrationTarget
	state               MigrationState
	lastError           string
}

// NewMigration builds a NOT_STARTED Migration with a freshly generated id.
func NewMigration(selected []MountPoint, source *Workload, target *MigrationTarget) (*Migration, error) {
	return RestoreMigration("", selected, source, target, MigrationStateNotStarted, "")
}

// RestoreMigration builds a Migration in a known state. An empty id gets a
// fresh one and an empty state means NOT_STARTED.
func RestoreMigration(id string, selected []MountPoint, source *Workload, target *MigrationTarget, state MigrationState, lastError string) (*Migration, error) {
	if !source.valid() {
		return nil, apperrors.BusinessRule(apperrors.CodeMigrationInvalid, "source must be a valid Workload")
	}
	if !target.valid() {
		return nil, apperrors.BusinessRule(apperrors.CodeMigrationInvalid, "migration_target must be a valid MigrationTarget")
	}
	if state == "" {
		state = MigrationStateNotStarted
	}
	if _, err := ParseMigrationState(string(state)); err != nil {
		return nil, err
	}

	sourceNames := mountPointNames(source.storage)
	for _, mp := range selected {
		if !mp.valid() {
			return nil, apperrors.BusinessRule(apperrors.CodeMigrationInvalid, "selected_mount_points contains an invalid mount point")
		}
		if _, ok := sourceNames[mp.name]; !ok {
			return nil, apperrors.BusinessRulef(apperrors.CodeMountPointNotInSource,
				"selected mount point %q is not a storage mount point of the source", mp.name).
				WithParams(map[string]interface{}{"mount_point": mp.name})
		}
	}

	if id == "" {
		id = NewID()
	}
	return &Migration{
		id:                  id,
		selectedMountPoints: cloneMountPoints(selected),
		source:              source.clone(),
		migrationTarget:     target.clone(),
		state:               state,
		lastError:           lastError,
	}, nil
}

func (m *Migration) ID() string                        { return m.id }
func (m *Migration) State() MigrationState             { return m.state }
func (m *Migration) Source() *Workload                 { return m.source }
func (m *Migration) MigrationTarget() *MigrationTarget { return m.migrationTarget }

// LastError is the diagnostic cause of the most recent ERROR transition.
func (m *Migration) LastError() string { return m.lastError }

// SelectedMountPoints returns a copy of the selection in order.
func (m *Migration) SelectedMountPoints() []MountPoint {
	return cloneMountPoints(m.selectedMountPoints)
}

// Run executes the migration with a simulated transfer lasting delay.
func (m *Migration) Run(delay time.Duration) error {
	return m.Execute(SimulatedTransfer(delay))
}

// Execute performs Start followed by Complete.
func (m *Migration) Execute(t Transfer) error {
	if err := m.Start(); err != nil {
		return err
	}
	return m.Complete(t)
}

// Start checks preconditions and moves the migration to RUNNING.
//
// It fails without touching state unless the migration is NOT_STARTED or
// ERROR. Selecting the system volume moves the migration to ERROR and fails.
func (m *Migration) Start() error {
	if !m.state.Runnable() {
		return apperrors.BusinessRulef(apperrors.CodeMigrationStateInvalid,
			"migration already started or completed (state %s)", m.state).
			WithParams(map[string]interface{}{"state": string(m.state)})
	}

	for _, mp := range m.selectedMountPoints {
		if IsSystemVolume(mp.name) {
			err := apperrors.BusinessRulef(apperrors.CodeSystemVolumeNotAllowed,
				"migrating the system volume %q is not allowed", mp.name).
				WithParams(map[string]interface{}{"mount_point": mp.name})
			m.fail(err)
			return err
		}
	}

	m.state = MigrationStateRunning
	m.lastError = ""
	return nil
}

// Complete runs the transfer of a RUNNING migration and applies its result.
//
// On success the target VM takes the source credentials and exactly the
// source mount points whose names were selected, in source order, and the
// state becomes SUCCESS. A transfer error or panic leaves the target VM
// untouched, moves the state to ERROR and keeps the cause in LastError.
func (m *Migration) Complete(t Transfer) (err error) {
	if m.state != MigrationStateRunning {
		return apperrors.BusinessRulef(apperrors.CodeMigrationStateInvalid,
			"migration is not running (state %s)", m.state).
			WithParams(map[string]interface{}{"state": string(m.state)})
	}

	if err := runTransfer(t, m.source.clone(), m.SelectedMountPoints()); err != nil {
		m.fail(err)
		return apperrors.BusinessRule(apperrors.CodeMigrationTransferFail, "migration transfer failed").WithCause(err)
	}

	selected := mountPointNames(m.selectedMountPoints)
	filtered := make([]MountPoint, 0, len(m.source.storage))
	for _, mp := range m.source.storage {
		if _, ok := selected[mp.name]; ok {
			filtered = append(filtered, mp)
		}
	}
	m.migrationTarget.targetVM.receive(m.source.credentials, filtered)

	m.state = MigrationStateSuccess
	return nil
}

func (m *Migration) fail(err error) {
	m.state = MigrationStateError
	m.lastError = err.Error()
}

func runTransfer(t Transfer, source *Workload, selected []MountPoint) (err error) {
	if t == nil {
		return fmt.Errorf("no transfer configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transfer panicked: %v", r)
		}
	}()
	return t.Transfer(source, selected)
}
