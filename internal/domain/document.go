package domain

import (
	"encoding/json"

	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// Document types are the persisted and wire shape of the entities. Field
// names are a compatibility contract with existing data directories.

// CredentialsDocument is the stored form of Credentials.
type CredentialsDocument struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Domain   string `json:"domain" yaml:"domain"`
}

// MountPointDocument is the stored form of MountPoint.
type MountPointDocument struct {
	Name      string `json:"name" yaml:"name"`
	TotalSize int64  `json:"total_size" yaml:"total_size"`
}

// WorkloadDocument is the stored form of Workload.
type WorkloadDocument struct {
	IP          string               `json:"ip" yaml:"ip"`
	Credentials CredentialsDocument  `json:"credentials" yaml:"credentials"`
	Storage     []MountPointDocument `json:"storage" yaml:"storage"`
	ID          string               `json:"id" yaml:"id"`
}

// MigrationTargetDocument is the stored form of MigrationTarget.
type MigrationTargetDocument struct {
	CloudType        string              `json:"cloud_type" yaml:"cloud_type"`
	CloudCredentials CredentialsDocument `json:"cloud_credentials" yaml:"cloud_credentials"`
	TargetVM         *WorkloadDocument   `json:"target_vm" yaml:"target_vm"`
	ID               string              `json:"id" yaml:"id"`
}

// MigrationDocument is the stored form of Migration.
type MigrationDocument struct {
	SelectedMountPoints []MountPointDocument     `json:"selected_mount_points" yaml:"selected_mount_points"`
	Source              *WorkloadDocument        `json:"source" yaml:"source"`
	MigrationTarget     *MigrationTargetDocument `json:"migration_target" yaml:"migration_target"`
	State               string                   `json:"state" yaml:"state"`
	ID                  string                   `json:"id" yaml:"id"`
	LastError           string                   `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

// Document encodes c.
func (c Credentials) Document() CredentialsDocument {
	return CredentialsDocument{Username: c.username, Password: c.password, Domain: c.domain}
}

// CredentialsFromDocument decodes and validates d.
func CredentialsFromDocument(d CredentialsDocument) (Credentials, error) {
	return NewCredentials(d.Username, d.Password, d.Domain)
}

// Document encodes m.
func (m MountPoint) Document() MountPointDocument {
	return MountPointDocument{Name: m.name, TotalSize: m.totalSize}
}

// MountPointFromDocument decodes and validates d.
func MountPointFromDocument(d MountPointDocument) (MountPoint, error) {
	return NewMountPoint(d.Name, d.TotalSize)
}

func mountPointDocuments(in []MountPoint) []MountPointDocument {
	out := make([]MountPointDocument, 0, len(in))
	for _, mp := range in {
		out = append(out, mp.Document())
	}
	return out
}

func mountPointsFromDocuments(in []MountPointDocument) ([]MountPoint, error) {
	out := make([]MountPoint, 0, len(in))
	for _, d := range in {
		mp, err := MountPointFromDocument(d)
		if err != nil {
			return nil, err
		}
		out = append(out, mp)
	}
	return out, nil
}

// Document encodes w.
func (w *Workload) Document() WorkloadDocument {
	return WorkloadDocument{
		IP:          w.ip,
		Credentials: w.credentials.Document(),
		Storage:     mountPointDocuments(w.storage),
		ID:          w.id,
	}
}

// WorkloadFromDocument decodes and validates d. A missing id gets a fresh one.
func WorkloadFromDocument(d WorkloadDocument) (*Workload, error) {
	creds, err := CredentialsFromDocument(d.Credentials)
	if err != nil {
		return nil, err
	}
	storage, err := mountPointsFromDocuments(d.Storage)
	if err != nil {
		return nil, err
	}
	return RestoreWorkload(d.ID, d.IP, creds, storage)
}

// Document encodes t.
func (t *MigrationTarget) Document() MigrationTargetDocument {
	vm := t.targetVM.Document()
	return MigrationTargetDocument{
		CloudType:        string(t.cloudType),
		CloudCredentials: t.cloudCredentials.Document(),
		TargetVM:         &vm,
		ID:               t.id,
	}
}

// MigrationTargetFromDocument decodes and validates d.
func MigrationTargetFromDocument(d MigrationTargetDocument) (*MigrationTarget, error) {
	cloudType, err := ParseCloudType(d.CloudType)
	if err != nil {
		return nil, err
	}
	creds, err := CredentialsFromDocument(d.CloudCredentials)
	if err != nil {
		return nil, err
	}
	if d.TargetVM == nil {
		return nil, apperrors.BusinessRule(apperrors.CodeMigrationTargetInvalid, "target_vm is required")
	}
	vm, err := WorkloadFromDocument(*d.TargetVM)
	if err != nil {
		return nil, err
	}
	return RestoreMigrationTarget(d.ID, cloudType, creds, vm)
}

// Document encodes m.
func (m *Migration) Document() MigrationDocument {
	source := m.source.Document()
	target := m.migrationTarget.Document()
	return MigrationDocument{
		SelectedMountPoints: mountPointDocuments(m.selectedMountPoints),
		Source:              &source,
		MigrationTarget:     &target,
		State:               string(m.state),
		ID:                  m.id,
		LastError:           m.lastError,
	}
}

// MigrationFromDocument decodes and validates d. A missing state means
// NOT_STARTED; any other value must match a state exactly.
func MigrationFromDocument(d MigrationDocument) (*Migration, error) {
	if d.Source == nil {
		return nil, apperrors.BusinessRule(apperrors.CodeMigrationInvalid, "source is required")
	}
	if d.MigrationTarget == nil {
		return nil, apperrors.BusinessRule(apperrors.CodeMigrationInvalid, "migration_target is required")
	}
	selected, err := mountPointsFromDocuments(d.SelectedMountPoints)
	if err != nil {
		return nil, err
	}
	source, err := WorkloadFromDocument(*d.Source)
	if err != nil {
		return nil, err
	}
	target, err := MigrationTargetFromDocument(*d.MigrationTarget)
	if err != nil {
		return nil, err
	}
	state := MigrationStateNotStarted
	if d.State != "" {
		if state, err = ParseMigrationState(d.State); err != nil {
			return nil, err
		}
	}
	return RestoreMigration(d.ID, selected, source, target, state, d.LastError)
}

// MarshalJSON implements json.Marshaler.
func (w *Workload) MarshalJSON() ([]byte, error) { return json.Marshal(w.Document()) }

// UnmarshalJSON implements json.Unmarshaler and rejects invalid documents.
func (w *Workload) UnmarshalJSON(data []byte) error {
	var d WorkloadDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	decoded, err := WorkloadFromDocument(d)
	if err != nil {
		return err
	}
	*w = *decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t *MigrationTarget) MarshalJSON() ([]byte, error) { return json.Marshal(t.Document()) }

// UnmarshalJSON implements json.Unmarshaler and rejects invalid documents.
func (t *MigrationTarget) UnmarshalJSON(data []byte) error {
	var d MigrationTargetDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	decoded, err := MigrationTargetFromDocument(d)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m *Migration) MarshalJSON() ([]byte, error) { return json.Marshal(m.Document()) }

// UnmarshalJSON implements json.Unmarshaler and rejects invalid documents.
func (m *Migration) UnmarshalJSON(data []byte) error {
	var d MigrationDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	decoded, err := MigrationFromDocument(d)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}
