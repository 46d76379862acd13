package replicate

import (
	"github.com/lib/pq"

	"dbmirror/internal/database"
	"dbmirror/pkg/logger"
)

func newPostgresEndpoint(conn *database.Connection, log *logger.Logger) *sqlEndpoint {
	return &sqlEndpoint{
		conn:   conn,
		logger: log,
		copyStmt: func(table string, columns []string) string {
			return pq.CopyIn(table, columns...)
		},
	}
}
