package backup

import (
	"fmt"
	"path/filepath"
	"time"
)

// FileName derives the backup file name from the database name and a clock
// reading: <DatabaseName>_<ddMMyyyy>_<HH_mm>.bak. Deterministic for a fixed
// timestamp.
func FileName(database string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.bak", database, now.Format("02012006"), now.Format("15_04"))
}

// NewDescriptor fixes the backup destination for one run. The directory is
// not validated here; an unusable path surfaces from the backup command.
func NewDescriptor(dir, database string, now time.Time) Descriptor {
	name := FileName(database, now)
	return Descriptor{
		FileName:  name,
		Path:      filepath.Join(dir, name),
		Timestamp: now,
	}
}
