package domain

import (
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// CloudType is the kind of cloud a migration target lives in.
// Values are part of the stored document contract.
type CloudType string

const (
	CloudTypeAWS     CloudType = "AWS"
	CloudTypeAzure   CloudType = "AZURE"
	CloudTypeVSphere CloudType = "VSPHERE"
	CloudTypeVCloud  CloudType = "VCLOUD"
)

// CloudTypes lists every accepted cloud type.
var CloudTypes = []CloudType{CloudTypeAWS, CloudTypeAzure, CloudTypeVSphere, CloudTypeVCloud}

// ParseCloudType matches s exactly against the enumerated values.
func ParseCloudType(s string) (CloudType, error) {
	for _, ct := range CloudTypes {
		if string(ct) == s {
			return ct, nil
		}
	}
	return "", apperrors.BusinessRulef(apperrors.CodeCloudTypeInvalid, "unknown cloud_type %q", s)
}

// Valid reports whether ct is one of the enumerated values.
func (ct CloudType) Valid() bool {
	_, err := ParseCloudType(string(ct))
	return err == nil
}

// MigrationTarget is a cloud destination plus the placeholder VM that will
// receive the migrated disks.
type MigrationTarget struct {
	id               string
	cloudType        CloudType
	cloudCredentials Credentials
	targetVM         *Workload
}

// NewMigrationTarget builds a MigrationTarget with a freshly generated id.
func NewMigrationTarget(cloudType CloudType, cloudCredentials Credentials, targetVM *Workload) (*MigrationTarget, error) {
	return RestoreMigrationTarget("", cloudType, cloudCredentials, targetVM)
}

// RestoreMigrationTarget builds a MigrationTarget with a known id. An empty id gets a fresh one.
// The target VM is copied; later changes to the caller's Workload do not leak in.
func RestoreMigrationTarget(id string, cloudType CloudType, cloudCredentials Credentials, targetVM *Workload) (*MigrationTarget, error) {
	if !cloudType.Valid() {
		return nil, apperrors.BusinessRulef(apperrors.CodeCloudTypeInvalid, "unknown cloud_type %q", string(cloudType))
	}
	if !cloudCredentials.valid() {
		return nil, apperrors.BusinessRule(apperrors.CodeMigrationTargetInvalid, "cloud_credentials must be a valid Credentials value")
	}
	if !targetVM.valid() {
		return nil, apperrors.BusinessRule(apperrors.CodeMigrationTargetInvalid, "target_vm must be a valid Workload")
	}
	if id == "" {
		id = NewID()
	}
	return &MigrationTarget{
		id:               id,
		cloudType:        cloudType,
		cloudCredentials: cloudCredentials,
		targetVM:         targetVM.clone(),
	}, nil
}

func (t *MigrationTarget) ID() string                    { return t.id }
func (t *MigrationTarget) CloudType() CloudType          { return t.cloudType }
func (t *MigrationTarget) CloudCredentials() Credentials { return t.cloudCredentials }

// TargetVM returns the placeholder VM. It has no exported mutators.
func (t *MigrationTarget) TargetVM() *Workload { return t.targetVM }

func (t *MigrationTarget) valid() bool {
	return t != nil && t.id != "" && t.cloudType.Valid() && t.cloudCredentials.valid() && t.targetVM.valid()
}

func (t *MigrationTarget) clone() *MigrationTarget {
	if t == nil {
		return nil
	}
	c := *t
	c.targetVM = t.targetVM.clone()
	return &c
}
