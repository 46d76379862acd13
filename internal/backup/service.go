package backup

import (
	"context"
	"fmt"
	"time"

	"dbmirror/internal/config"
	"dbmirror/internal/database"
	"dbmirror/pkg/logger"
)

// Service performs one full backup of the configured source database to a
// timestamped file under the configured directory, overwriting any existing
// file at that path.
type Service interface {
	Run(ctx context.Context) (*Metadata, error)
}

// Options are shared by the engine implementations.
type Options struct {
	Directory string
	Clock     func() time.Time
	Logger    *logger.Logger
}

func NewService(conn *database.Connection, opts Options) (Service, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	switch conn.Endpoint.Type {
	case config.TypeMSSQL:
		return &mssqlService{conn: conn, opts: opts}, nil
	case config.TypePostgres:
		return &postgresService{conn: conn, opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", conn.Endpoint.Type)
	}
}
