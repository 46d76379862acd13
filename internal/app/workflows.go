package app

import (
	"context"
	"fmt"
	"time"

	"dbmirror/internal/backup"
	"dbmirror/internal/config"
	"dbmirror/internal/database"
	"dbmirror/internal/replicate"
	"dbmirror/internal/schema"
	"dbmirror/pkg/logger"
)

// Service wires the run pipeline: backup, then enumeration, then per-table
// replication. Backup and enumeration failures are run-fatal; no remote
// table is touched after either.
type Service struct {
	log *logger.Logger
}

func NewService(log *logger.Logger) *Service {
	return &Service{log: log}
}

// Run executes the full pipeline and returns the per-table report. A nil
// report means the run died before replication started.
func (s *Service) Run(ctx context.Context, cfg *config.Config) (*replicate.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Run.Timeout))
	defer cancel()

	source, err := database.NewConnection(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source connection: %w", err)
	}
	defer source.Close()

	// Backup strictly precedes replication: a database that could not be
	// backed up is never synced.
	metadata, err := s.runBackup(ctx, source, cfg)
	if err != nil {
		return nil, err
	}
	s.logBackup(metadata)

	return s.runSync(ctx, source, cfg)
}

// Backup performs only the backup half of the pipeline.
func (s *Service) Backup(ctx context.Context, cfg *config.Config) (*backup.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Run.Timeout))
	defer cancel()

	source, err := database.NewConnection(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source connection: %w", err)
	}
	defer source.Close()

	metadata, err := s.runBackup(ctx, source, cfg)
	if err != nil {
		return nil, err
	}
	s.logBackup(metadata)
	return metadata, nil
}

// Sync replicates without backing up first. Exposed for re-runs after a run
// whose backup already succeeded; the combined Run command enforces ordering.
func (s *Service) Sync(ctx context.Context, cfg *config.Config) (*replicate.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Run.Timeout))
	defer cancel()

	source, err := database.NewConnection(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source connection: %w", err)
	}
	defer source.Close()

	return s.runSync(ctx, source, cfg)
}

// ListTables prints the base tables the enumerator sees in the source.
func (s *Service) ListTables(ctx context.Context, cfg *config.Config) ([]schema.TableRef, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Run.Timeout))
	defer cancel()

	source, err := database.NewConnection(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source connection: %w", err)
	}
	defer source.Close()

	extractor := schema.NewExtractor(source, s.log)
	tables, err := extractor.Tables(ctx)
	if err != nil {
		return nil, err
	}

	for _, ref := range tables {
		fmt.Printf("%s -> %s\n", ref.Qualified(), replicate.TargetName(ref, cfg.Run.Suffix))
	}
	return tables, nil
}

func (s *Service) runBackup(ctx context.Context, source *database.Connection, cfg *config.Config) (*backup.Metadata, error) {
	service, err := backup.NewService(source, backup.Options{
		Directory: cfg.Run.BackupDir,
		Logger:    s.log,
	})
	if err != nil {
		return nil, err
	}
	return service.Run(ctx)
}

func (s *Service) runSync(ctx context.Context, source *database.Connection, cfg *config.Config) (*replicate.Report, error) {
	extractor := schema.NewExtractor(source, s.log)
	tables, err := extractor.Tables(ctx)
	if err != nil {
		return nil, err
	}

	remoteDialect, err := database.DialectFor(cfg.Remote.Type)
	if err != nil {
		return nil, err
	}

	opts := replicate.Options{
		Suffix:      cfg.Run.Suffix,
		Workers:     cfg.Run.Workers,
		StopOnError: cfg.Run.StopOnError,
		Logger:      s.log,
	}

	endpoint, err := replicate.NewEndpoint(ctx, cfg.Remote, s.log)
	if err != nil {
		// The remote never answered; the run still completes with a
		// structured report marking every table unreachable.
		s.log.Errorf("remote connection failed: %v", err)
		report := &replicate.Report{Outcomes: make([]replicate.Outcome, len(tables))}
		for i, ref := range tables {
			report.Outcomes[i] = replicate.Outcome{
				Table:  ref.Qualified(),
				Target: replicate.TargetName(ref, cfg.Run.Suffix),
				Err:    err,
			}
		}
		s.summarize(report)
		return report, nil
	}
	defer endpoint.Close()

	runner := replicate.NewRunner(source, endpoint, remoteDialect, opts)
	report := runner.Run(ctx, tables)
	s.summarize(report)
	return report, nil
}

func (s *Service) logBackup(metadata *backup.Metadata) {
	entry := s.log.WithField("location", metadata.Location)
	if metadata.BackupSize > 0 {
		entry = entry.WithField("size", metadata.BackupSize)
	}
	entry.Infof("backup completed in %s", metadata.CompletedAt.Sub(metadata.StartedAt).Round(time.Second))
}

func (s *Service) summarize(report *replicate.Report) {
	for _, o := range report.Failed() {
		s.log.WithTable(o.Table).Errorf("%s: %v", o.Kind(), o.Err)
	}
	s.log.Infof("replication finished: %d tables, %d failed, %d rows copied",
		len(report.Outcomes), len(report.Failed()), report.RowsCopied())
}
