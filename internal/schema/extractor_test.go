package schema

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"dbmirror/internal/config"
	"dbmirror/internal/database"
	"dbmirror/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockConnection(t *testing.T, dialect database.Dialect) (*database.Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &database.Connection{
		DB:       db,
		Endpoint: config.EndpointConfig{Type: dialect.Name, Database: "Shop"},
		Dialect:  dialect,
	}, mock
}

func TestTables(t *testing.T) {
	conn, mock := mockConnection(t, database.MSSQL)

	mock.ExpectQuery("SELECT t.table_schema, t.table_name FROM information_schema.tables").
		WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name"}).
			AddRow("dbo", "Orders").
			AddRow("dbo", "Users").
			AddRow("sales", "Invoices"))

	extractor := NewExtractor(conn, logger.NewLogger(false))
	tables, err := extractor.Tables(context.Background())
	require.NoError(t, err)

	require.Len(t, tables, 3)
	assert.Equal(t, TableRef{Schema: "dbo", Name: "Orders"}, tables[0])
	assert.Equal(t, "sales.Invoices", tables[2].Qualified())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTablesEnumerationError(t *testing.T) {
	conn, mock := mockConnection(t, database.MSSQL)

	mock.ExpectQuery("SELECT t.table_schema, t.table_name").
		WillReturnError(errors.New("login timeout"))

	extractor := NewExtractor(conn, logger.NewLogger(false))
	_, err := extractor.Tables(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnumeration)
}

func TestColumns(t *testing.T) {
	conn, mock := mockConnection(t, database.MSSQL)

	mock.ExpectQuery("SELECT column_name, data_type, character_maximum_length").
		WithArgs("dbo", "Orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "character_maximum_length",
			"numeric_precision", "numeric_scale", "ordinal_position",
		}).
			AddRow("Id", "int", nil, 10, 0, 1).
			AddRow("Note", "nvarchar", 50, nil, nil, 2).
			AddRow("Blob", "varbinary", -1, nil, nil, 3))

	extractor := NewExtractor(conn, logger.NewLogger(false))
	cols, err := extractor.Columns(context.Background(), TableRef{Schema: "dbo", Name: "Orders"})
	require.NoError(t, err)

	require.Len(t, cols, 3)
	assert.Equal(t, "Id", cols[0].Name)
	assert.Nil(t, cols[0].MaxLength)
	require.NotNil(t, cols[0].Precision)
	assert.EqualValues(t, 10, *cols[0].Precision)

	require.NotNil(t, cols[1].MaxLength)
	assert.EqualValues(t, 50, *cols[1].MaxLength)
	assert.Nil(t, cols[1].Precision)

	require.NotNil(t, cols[2].MaxLength)
	assert.EqualValues(t, -1, *cols[2].MaxLength, "the MAX sentinel passes through untouched")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRowCount(t *testing.T) {
	conn, mock := mockConnection(t, database.MSSQL)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM [dbo].[Orders]")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	extractor := NewExtractor(conn, logger.NewLogger(false))
	count, err := extractor.RowCount(context.Background(), TableRef{Schema: "dbo", Name: "Orders"})
	require.NoError(t, err)
	assert.EqualValues(t, 42, count)
}

func TestLoad(t *testing.T) {
	conn, mock := mockConnection(t, database.Postgres)

	mock.ExpectQuery("SELECT column_name, data_type, character_maximum_length").
		WithArgs("public", "orders").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "character_maximum_length",
			"numeric_precision", "numeric_scale", "ordinal_position",
		}).AddRow("id", "integer", nil, 32, 0, 1))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "public"."orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	extractor := NewExtractor(conn, logger.NewLogger(false))
	table, err := extractor.Load(context.Background(), TableRef{Schema: "public", Name: "orders"})
	require.NoError(t, err)

	assert.EqualValues(t, 7, table.RowCount)
	require.Len(t, table.Columns, 1)
	assert.Equal(t, "id", table.Columns[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
