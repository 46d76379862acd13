package replicate

import (
	mssql "github.com/microsoft/go-mssqldb"

	"dbmirror/internal/database"
	"dbmirror/pkg/logger"
)

func newMSSQLEndpoint(conn *database.Connection, log *logger.Logger) *sqlEndpoint {
	return &sqlEndpoint{
		conn:   conn,
		logger: log,
		copyStmt: func(table string, columns []string) string {
			return mssql.CopyIn(table, mssql.BulkOptions{}, columns...)
		},
	}
}
