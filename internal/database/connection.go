package database

import (
	"context"
	"database/sql"
	"fmt"

	"dbmirror/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
)

type Connection struct {
	DB       *sql.DB
	Endpoint config.EndpointConfig
	Dialect  Dialect
}

func NewConnection(ctx context.Context, endpoint config.EndpointConfig) (*Connection, error) {
	dialect, err := DialectFor(endpoint.Type)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(endpoint.DriverName(), endpoint.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach %s:%d: %w", endpoint.Host, endpoint.Port, err)
	}

	return &Connection{
		DB:       db,
		Endpoint: endpoint,
		Dialect:  dialect,
	}, nil
}

func (c *Connection) Close() error {
	return c.DB.Close()
}

func (c *Connection) DatabaseName() string {
	return c.Endpoint.Database
}
