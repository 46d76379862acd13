package backup

import (
	"errors"
	"time"
)

// ErrBackupFailed marks any failure of the backup step. The orchestrator
// treats it as run-fatal: replication never starts after a failed backup.
var ErrBackupFailed = errors.New("backup failed")

// Descriptor is the computed backup destination, fixed at run start.
type Descriptor struct {
	FileName  string
	Path      string
	Timestamp time.Time
}

// Metadata describes a completed backup.
type Metadata struct {
	BackupSize  int64
	Checksum    string
	Location    string
	StartedAt   time.Time
	CompletedAt time.Time
}
