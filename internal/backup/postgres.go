package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"dbmirror/internal/database"
)

type postgresService struct {
	conn *database.Connection
	opts Options
}

// Run shells out to pg_dump in custom format. The destination file is
// truncated by pg_dump itself, matching the overwrite semantics of the
// mssql engine.
func (s *postgresService) Run(ctx context.Context) (*Metadata, error) {
	started := s.opts.Clock()
	desc := NewDescriptor(s.opts.Directory, s.conn.DatabaseName(), started)

	if err := os.MkdirAll(s.opts.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to prepare backup directory: %v", ErrBackupFailed, err)
	}

	s.opts.Logger.Infof("Backing up %s to %s", s.conn.DatabaseName(), desc.Path)

	args := s.buildDumpArgs(desc.Path)
	if err := s.runCommand(ctx, "pg_dump", args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	metadata, err := buildMetadata(desc.Path, started)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}
	return metadata, nil
}

func (s *postgresService) buildDumpArgs(outputPath string) []string {
	endpoint := s.conn.Endpoint

	args := []string{
		fmt.Sprintf("--host=%s", endpoint.Host),
		fmt.Sprintf("--port=%d", endpoint.Port),
		fmt.Sprintf("--dbname=%s", endpoint.Database),
		"--format=custom",
		fmt.Sprintf("--file=%s", outputPath),
	}

	if endpoint.Username != "" {
		args = append(args, fmt.Sprintf("--username=%s", endpoint.Username))
	}

	return args
}

func (s *postgresService) runCommand(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if password := s.conn.Endpoint.Password; password != "" {
		cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", password))
	}

	writer := s.opts.Logger.Writer()
	defer writer.Close()
	cmd.Stdout = writer
	cmd.Stderr = writer

	s.opts.Logger.Debugf("executing %s %s", name, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
