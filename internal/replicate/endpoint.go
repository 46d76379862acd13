package replicate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dbmirror/internal/config"
	"dbmirror/internal/database"
	"dbmirror/pkg/logger"
)

var (
	// ErrRemoteUnreachable marks connectivity or authentication failures
	// against the remote endpoint.
	ErrRemoteUnreachable = errors.New("remote endpoint unreachable")
	// ErrRemoteDDLFailed marks a rejected CREATE TABLE on the remote.
	ErrRemoteDDLFailed = errors.New("remote DDL failed")
	// ErrRemoteCopyFailed marks a failed clear or row copy on the remote.
	ErrRemoteCopyFailed = errors.New("remote copy failed")
	// ErrNameCollision marks two source tables deriving the same target name.
	ErrNameCollision = errors.New("target table name collision")
)

// Endpoint is the narrow typed client for the remote database: an existence
// check, plain statement execution, and a bulk row copy. Nothing else is
// reachable, so no caller can fall back to ad hoc statement assembly.
type Endpoint interface {
	TableExists(ctx context.Context, table string) (bool, error)
	Execute(ctx context.Context, stmt string) error
	CopyRows(ctx context.Context, table string, columns []string, rows *sql.Rows) (int64, error)
	Close() error
}

type sqlEndpoint struct {
	conn     *database.Connection
	logger   *logger.Logger
	copyStmt func(table string, columns []string) string
}

// NewEndpoint connects to the configured remote server and database.
func NewEndpoint(ctx context.Context, endpoint config.EndpointConfig, log *logger.Logger) (Endpoint, error) {
	conn, err := database.NewConnection(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnreachable, err)
	}
	return newEndpointForConn(conn, log)
}

func newEndpointForConn(conn *database.Connection, log *logger.Logger) (Endpoint, error) {
	switch conn.Endpoint.Type {
	case config.TypeMSSQL:
		return newMSSQLEndpoint(conn, log), nil
	case config.TypePostgres:
		return newPostgresEndpoint(conn, log), nil
	default:
		conn.Close()
		return nil, fmt.Errorf("unsupported database type: %s", conn.Endpoint.Type)
	}
}

func (e *sqlEndpoint) TableExists(ctx context.Context, table string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE' AND table_name = %s
	`, e.conn.Dialect.Placeholder(1))

	var count int64
	if err := e.conn.DB.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: existence check for %s: %w", ErrRemoteUnreachable, table, err)
	}
	return count > 0, nil
}

func (e *sqlEndpoint) Execute(ctx context.Context, stmt string) error {
	e.logger.Debugf("remote execute: %s", stmt)
	if _, err := e.conn.DB.ExecContext(ctx, stmt); err != nil {
		return err
	}
	return nil
}

// CopyRows streams every row into the target table through the driver's bulk
// copy statement, inside one transaction. An error or context cancellation
// rolls back, so no partial copy is ever committed.
func (e *sqlEndpoint) CopyRows(ctx context.Context, table string, columns []string, rows *sql.Rows) (int64, error) {
	tx, err := e.conn.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, e.copyStmt(table, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare bulk copy: %w", err)
	}
	defer stmt.Close()

	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	var copied int64
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return 0, fmt.Errorf("failed to scan source row: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return 0, fmt.Errorf("failed to buffer row: %w", err)
		}
		copied++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("source read failed: %w", err)
	}

	// Final no-arg exec flushes the bulk copy buffer on both drivers.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to flush bulk copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit copy: %w", err)
	}
	return copied, nil
}

func (e *sqlEndpoint) Close() error {
	return e.conn.Close()
}
