// Package domain holds the migration entity graph: the Credentials and
// MountPoint value objects, the Workload, MigrationTarget and Migration
// aggregates, and the migration state machine.
//
// Every entity is built through a validating constructor and is never
// observable in an invalid state. Construction failures are business-rule
// errors from internal/pkg/errors.
//
// Import Path: vmigrate.io/vmigrate/internal/domain
package domain

import (
	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// Credentials is an immutable authentication value for a workload or cloud.
type Credentials struct {
	username string
	password string
	domain   string
}

// NewCredentials validates and returns a Credentials value.
// Username and password are required; domain may be empty.
func NewCredentials(username, password, domain string) (Credentials, error) {
	if username == "" || password == "" {
		return Credentials{}, apperrors.BusinessRule(apperrors.CodeCredentialsInvalid, "username and password are required")
	}
	return Credentials{username: username, password: password, domain: domain}, nil
}

func (c Credentials) Username() string { return c.username }
func (c Credentials) Password() string { return c.password }
func (c Credentials) Domain() string   { return c.domain }

// valid reports whether c came out of NewCredentials. The zero value does not.
func (c Credentials) valid() bool {
	return c.username != "" && c.password != ""
}

// MountPoint is an immutable named volume with a size.
type MountPoint struct {
	name      string
	totalSize int64
}

// NewMountPoint validates and returns a MountPoint value.
func NewMountPoint(name string, totalSize int64) (MountPoint, error) {
	if name == "" {
		return MountPoint{}, apperrors.BusinessRule(apperrors.CodeMountPointInvalid, "mount point name is required")
	}
	if totalSize < 0 {
		return MountPoint{}, apperrors.BusinessRulef(apperrors.CodeMountPointInvalid,
			"mount point %q total_size cannot be negative", name)
	}
	return MountPoint{name: name, totalSize: totalSize}, nil
}

func (m MountPoint) Name() string     { return m.name }
func (m MountPoint) TotalSize() int64 { return m.totalSize }

func (m MountPoint) valid() bool {
	return m.name != "" && m.totalSize >= 0
}

func cloneMountPoints(in []MountPoint) []MountPoint {
	out := make([]MountPoint, len(in))
	copy(out, in)
	return out
}

func mountPointNames(in []MountPoint) map[string]struct{} {
	names := make(map[string]struct{}, len(in))
	for _, mp := range in {
		names[mp.name] = struct{}{}
	}
	return names
}
