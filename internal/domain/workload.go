package domain

import (
	"strings"

	apperrors "vmigrate.io/vmigrate/internal/pkg/errors"
)

// Workload is a source (or placeholder destination) virtual machine.
//
// The ip is the business key: the repository keeps it unique and refuses to
// change it after creation. Credentials and storage change only when a
// migration lands on this workload as its target VM.
type Workload struct {
	id          string
	ip          string
	credentials Credentials
	storage     []MountPoint
}

// NewWorkload builds a Workload with a freshly generated id.
func NewWorkload(ip string, credentials Credentials, storage []MountPoint) (*Workload, error) {
	return RestoreWorkload("", ip, credentials, storage)
}

// RestoreWorkload builds a Workload with a known id. An empty id gets a fresh one.
func RestoreWorkload(id, ip string, credentials Credentials, storage []MountPoint) (*Workload, error) {
	if strings.TrimSpace(ip) == "" {
		return nil, apperrors.BusinessRule(apperrors.CodeWorkloadInvalid, "ip is required")
	}
	if !credentials.valid() {
		return nil, apperrors.BusinessRule(apperrors.CodeWorkloadInvalid, "credentials must be a valid Credentials value")
	}
	for _, mp := range storage {
		if !mp.valid() {
			return nil, apperrors.BusinessRule(apperrors.CodeWorkloadInvalid, "storage contains an invalid mount point")
		}
	}
	if id == "" {
		id = NewID()
	}
	return &Workload{
		id:          id,
		ip:          ip,
		credentials: credentials,
		storage:     cloneMountPoints(storage),
	}, nil
}

func (w *Workload) ID() string               { return w.id }
func (w *Workload) IP() string               { return w.ip }
func (w *Workload) Credentials() Credentials { return w.credentials }

// Storage returns a copy of the workload's mount points in order.
func (w *Workload) Storage() []MountPoint {
	return cloneMountPoints(w.storage)
}

// receive is the only mutation path: a completed migration overwrites the
// destination VM's credentials and disk set.
func (w *Workload) receive(credentials Credentials, storage []MountPoint) {
	w.credentials = credentials
	w.storage = cloneMountPoints(storage)
}

// valid rejects zero-value Workloads built outside the constructors.
func (w *Workload) valid() bool {
	return w != nil && w.id != "" && strings.TrimSpace(w.ip) != "" && w.credentials.valid()
}

func (w *Workload) clone() *Workload {
	if w == nil {
		return nil
	}
	c := *w
	c.storage = cloneMountPoints(w.storage)
	return &c
}
