package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"dbmirror/internal/database"
)

type mssqlService struct {
	conn *database.Connection
	opts Options
}

// Run issues BACKUP DATABASE ... TO DISK. WITH INIT initializes the
// destination, so a pre-existing file at the path is overwritten rather than
// appended to. The disk path is a bind parameter, never statement text.
func (s *mssqlService) Run(ctx context.Context) (*Metadata, error) {
	started := s.opts.Clock()
	desc := NewDescriptor(s.opts.Directory, s.conn.DatabaseName(), started)

	s.opts.Logger.Infof("Backing up %s to %s", s.conn.DatabaseName(), desc.Path)

	stmt := fmt.Sprintf("BACKUP DATABASE %s TO DISK = @path WITH INIT",
		s.conn.Dialect.QuoteIdent(s.conn.DatabaseName()))

	if _, err := s.conn.DB.ExecContext(ctx, stmt, sql.Named("path", desc.Path)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	metadata := &Metadata{
		Location:    desc.Path,
		StartedAt:   started,
		CompletedAt: time.Now(),
	}

	// The destination lives on the server host; size and checksum are only
	// available when that filesystem is also visible here.
	if info, err := os.Stat(desc.Path); err == nil {
		metadata.BackupSize = info.Size()
		if checksum, err := fileChecksum(desc.Path); err == nil {
			metadata.Checksum = checksum
		}
	} else {
		s.opts.Logger.Debugf("backup file not visible locally: %v", err)
	}

	return metadata, nil
}
