package replicate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"dbmirror/internal/database"
	"dbmirror/internal/schema"
	"dbmirror/pkg/logger"
	"dbmirror/pkg/progress"
)

type Options struct {
	Suffix      string
	Workers     int
	StopOnError bool
	Logger      *logger.Logger
}

// Runner reconciles every source table with its remote counterpart. Each
// table runs the same state machine: translate, check existence, create if
// absent, clear, copy. Tables are independent; one table's failure is
// recorded and the rest proceed unless StopOnError is set.
type Runner struct {
	source     *database.Connection
	extractor  *schema.Extractor
	translator *schema.Translator
	endpoint   Endpoint
	remote     database.Dialect
	opts       Options
}

func NewRunner(source *database.Connection, endpoint Endpoint, remote database.Dialect, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Runner{
		source:     source,
		extractor:  schema.NewExtractor(source, opts.Logger),
		translator: schema.NewTranslator(remote),
		endpoint:   endpoint,
		remote:     remote,
		opts:       opts,
	}
}

type tableJob struct {
	index int
	table *schema.Table
}

// Run replicates the given tables and reports one outcome per table, in the
// order given. Colliding target names fail every member of the group before
// any remote write happens.
func (r *Runner) Run(ctx context.Context, tables []schema.TableRef) *Report {
	outcomes := make([]Outcome, len(tables))
	collisions := FindCollisions(tables, r.opts.Suffix)

	var pending []tableJob
	for i, ref := range tables {
		target := TargetName(ref, r.opts.Suffix)
		outcomes[i] = Outcome{Table: ref.Qualified(), Target: target}

		if group, ok := collisions[target]; ok {
			outcomes[i].Err = fmt.Errorf("%w: %s shared by %s", ErrNameCollision, target, groupNames(group))
			r.opts.Logger.WithTable(ref.Qualified()).Errorf("target name collision on %s", target)
			continue
		}
		pending = append(pending, tableJob{index: i, table: &schema.Table{Ref: ref}})
	}

	// Source metadata first: column lists feed translation, row counts feed
	// the progress total. A table that cannot be read fails here without
	// touching the remote.
	var jobs []tableJob
	var totalRows int64
	for _, j := range pending {
		loaded, err := r.extractor.Load(ctx, j.table.Ref)
		if err != nil {
			outcomes[j.index].Err = err
			r.opts.Logger.WithTable(j.table.Ref.Qualified()).Errorf("source metadata read failed: %v", err)
			if r.opts.StopOnError {
				r.markSkipped(outcomes, pending)
				return &Report{Outcomes: outcomes}
			}
			continue
		}
		j.table = loaded
		jobs = append(jobs, j)
		totalRows += loaded.RowCount
	}

	r.runJobs(ctx, jobs, outcomes, totalRows)
	return &Report{Outcomes: outcomes}
}

func (r *Runner) runJobs(ctx context.Context, jobs []tableJob, outcomes []Outcome, totalRows int64) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	bar := progress.NewBar(totalRows, "Replicating")
	jobCh := make(chan tableJob)

	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				r.runJob(runCtx, cancel, j, outcomes, bar)
			}
		}()
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()
	bar.Finish()
}

func (r *Runner) runJob(ctx context.Context, cancel context.CancelFunc, j tableJob, outcomes []Outcome, bar *progress.Bar) {
	name := j.table.Ref.Qualified()

	if ctx.Err() != nil {
		outcomes[j.index].Err = fmt.Errorf("%w: %v", ErrSkipped, ctx.Err())
		return
	}

	started := time.Now()
	rows, err := r.syncTable(ctx, j.table)
	outcomes[j.index].Rows = rows
	outcomes[j.index].Duration = time.Since(started)
	outcomes[j.index].Err = err

	if err != nil {
		r.opts.Logger.WithTable(name).Errorf("sync failed: %v", err)
		if r.opts.StopOnError {
			cancel()
		}
		return
	}

	bar.IncrementBy(rows)
	r.opts.Logger.WithTable(name).Infof("synced %d rows to %s", rows, outcomes[j.index].Target)
}

// syncTable is the per-table state machine. Create never runs before the
// existence check, and the copy never runs before the clear.
func (r *Runner) syncTable(ctx context.Context, table *schema.Table) (int64, error) {
	target := TargetName(table.Ref, r.opts.Suffix)

	createStmt, err := r.translator.CreateStatement(target, table.Columns)
	if err != nil {
		return 0, err
	}

	exists, err := r.endpoint.TableExists(ctx, target)
	if err != nil {
		return 0, err
	}

	if !exists {
		if err := r.endpoint.Execute(ctx, createStmt); err != nil {
			return 0, fmt.Errorf("%w: create %s: %w", ErrRemoteDDLFailed, target, err)
		}
	}

	if err := r.endpoint.Execute(ctx, "DELETE FROM "+r.remote.QuoteIdent(target)); err != nil {
		return 0, fmt.Errorf("%w: clear %s: %w", ErrRemoteCopyFailed, target, err)
	}

	rows, err := r.source.DB.QueryContext(ctx, r.selectStatement(table))
	if err != nil {
		return 0, fmt.Errorf("failed to read source %s: %w", table.Ref.Qualified(), err)
	}
	defer rows.Close()

	copied, err := r.endpoint.CopyRows(ctx, target, columnNames(table.Columns), rows)
	if err != nil {
		return 0, fmt.Errorf("%w: copy into %s: %w", ErrRemoteCopyFailed, target, err)
	}
	return copied, nil
}

func (r *Runner) selectStatement(table *schema.Table) string {
	quoted := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		quoted[i] = r.source.Dialect.QuoteIdent(col.Name)
	}
	return fmt.Sprintf("SELECT %s FROM %s.%s",
		strings.Join(quoted, ", "),
		r.source.Dialect.QuoteIdent(table.Ref.Schema),
		r.source.Dialect.QuoteIdent(table.Ref.Name),
	)
}

func (r *Runner) markSkipped(outcomes []Outcome, pending []tableJob) {
	for _, j := range pending {
		if outcomes[j.index].Err == nil {
			outcomes[j.index].Err = fmt.Errorf("%w: run stopped after earlier failure", ErrSkipped)
		}
	}
}

func columnNames(cols []schema.Column) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

func groupNames(refs []schema.TableRef) string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Qualified()
	}
	return strings.Join(names, ", ")
}
