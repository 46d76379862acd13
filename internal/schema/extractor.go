package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dbmirror/internal/database"
	"dbmirror/pkg/logger"
)

// ErrEnumeration marks a failure to list the source database's base tables.
// Like a failed backup it is run-fatal: no remote table is touched when the
// source catalog cannot be read.
var ErrEnumeration = errors.New("table enumeration failed")

// Extractor reads table and column metadata from a source database through
// information_schema, which both supported engines expose.
type Extractor struct {
	conn   *database.Connection
	logger *logger.Logger
}

func NewExtractor(conn *database.Connection, logger *logger.Logger) *Extractor {
	return &Extractor{
		conn:   conn,
		logger: logger,
	}
}

// Tables lists every base table in the source database, excluding views and
// system schemas. Ordering is stable (schema, name) but callers must not
// depend on it.
func (e *Extractor) Tables(ctx context.Context) ([]TableRef, error) {
	e.logger.Debug("Enumerating base tables...")

	query := `
		SELECT t.table_schema, t.table_name
		FROM information_schema.tables t
		WHERE t.table_type = 'BASE TABLE'
	`

	switch e.conn.Dialect.Name {
	case database.Postgres.Name:
		query += ` AND t.table_schema NOT IN ('information_schema', 'pg_catalog', 'pg_toast')`
	case database.MSSQL.Name:
		query += ` AND t.table_schema NOT IN ('sys', 'INFORMATION_SCHEMA')`
	}

	query += " ORDER BY t.table_schema, t.table_name"

	rows, err := e.conn.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, err)
	}
	defer rows.Close()

	var tables []TableRef
	for rows.Next() {
		var ref TableRef
		if err := rows.Scan(&ref.Schema, &ref.Name); err != nil {
			return nil, fmt.Errorf("%w: failed to read table metadata: %w", ErrEnumeration, err)
		}
		tables = append(tables, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, err)
	}

	e.logger.Infof("%d base tables found", len(tables))
	return tables, nil
}

// Columns lists the columns of one table in catalog (ordinal) order.
func (e *Extractor) Columns(ctx context.Context, ref TableRef) ([]Column, error) {
	query := fmt.Sprintf(`
		SELECT column_name, data_type, character_maximum_length,
			numeric_precision, numeric_scale, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, e.conn.Dialect.Placeholder(1), e.conn.Dialect.Placeholder(2))

	rows, err := e.conn.DB.QueryContext(ctx, query, ref.Schema, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata for %s: %w", ref.Qualified(), err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var maxLength, precision, scale sql.NullInt64

		if err := rows.Scan(&col.Name, &col.DataType, &maxLength, &precision, &scale, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to read column metadata for %s: %w", ref.Qualified(), err)
		}

		if maxLength.Valid {
			col.MaxLength = &maxLength.Int64
		}
		if precision.Valid {
			col.Precision = &precision.Int64
		}
		if scale.Valid {
			col.Scale = &scale.Int64
		}

		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to enumerate columns for %s: %w", ref.Qualified(), err)
	}

	return columns, nil
}

// RowCount reports the current source row count, used for copy progress.
func (e *Extractor) RowCount(ctx context.Context, ref TableRef) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s",
		e.conn.Dialect.QuoteIdent(ref.Schema),
		e.conn.Dialect.QuoteIdent(ref.Name),
	)

	var count int64
	if err := e.conn.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", ref.Qualified(), err)
	}
	return count, nil
}

// Load gathers everything the replication pass needs for one table.
func (e *Extractor) Load(ctx context.Context, ref TableRef) (*Table, error) {
	columns, err := e.Columns(ctx, ref)
	if err != nil {
		return nil, err
	}

	count, err := e.RowCount(ctx, ref)
	if err != nil {
		return nil, err
	}

	return &Table{Ref: ref, Columns: columns, RowCount: count}, nil
}
