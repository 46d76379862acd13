package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	appconfig "dbmirror/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const mssqlSample = `
source:
  type: mssql
  host: db1.internal
  database: Shop
  username: sa
  password: secret
remote:
  type: mssql
  host: db2.internal
  database: Warehouse
run:
  suffix: bi
`

func TestLoadMSSQLConfigDefaults(t *testing.T) {
	cfg, err := appconfig.LoadConfig(writeConfig(t, mssqlSample))
	require.NoError(t, err)

	assert.Equal(t, appconfig.TypeMSSQL, cfg.Source.Type)
	assert.Equal(t, 1433, cfg.Source.Port, "mssql port should default to 1433")
	assert.Equal(t, 1433, cfg.Remote.Port)
	assert.Equal(t, 1, cfg.Run.Workers, "workers should default to sequential")
	assert.Equal(t, 30*time.Minute, time.Duration(cfg.Run.Timeout))
	assert.Equal(t, "backup", cfg.Run.BackupDir)
	assert.False(t, cfg.Run.StopOnError)
}

func TestLoadPostgresConfigDefaults(t *testing.T) {
	cfg, err := appconfig.LoadConfig(writeConfig(t, `
source:
  type: postgresql
  host: localhost
  database: shop
remote:
  type: postgres
  host: remote.internal
  database: warehouse
run:
  suffix: v2
  workers: 4
  timeout: 5m
  stop_on_error: true
`))
	require.NoError(t, err)

	assert.Equal(t, appconfig.TypePostgres, cfg.Source.Type, "postgresql should normalize to postgres")
	assert.Equal(t, 5432, cfg.Source.Port)
	assert.Equal(t, "disable", cfg.Source.SSLMode)
	assert.Equal(t, 4, cfg.Run.Workers)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.Run.Timeout))
	assert.True(t, cfg.Run.StopOnError)
}

func TestLoadConfigRejectsMissingSuffix(t *testing.T) {
	_, err := appconfig.LoadConfig(writeConfig(t, `
source:
  type: mssql
  host: a
  database: Shop
remote:
  type: mssql
  host: b
  database: Warehouse
run: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.suffix")
}

func TestLoadConfigRejectsCrossEngine(t *testing.T) {
	_, err := appconfig.LoadConfig(writeConfig(t, `
source:
  type: mssql
  host: a
  database: Shop
remote:
  type: postgres
  host: b
  database: warehouse
run:
  suffix: bi
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cross-engine")
}

func TestLoadConfigRejectsUnknownType(t *testing.T) {
	_, err := appconfig.LoadConfig(writeConfig(t, `
source:
  type: oracle
  host: a
  database: Shop
remote:
  type: oracle
  host: b
  database: Warehouse
run:
  suffix: bi
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestMSSQLConnectionString(t *testing.T) {
	endpoint := appconfig.EndpointConfig{
		Type:     appconfig.TypeMSSQL,
		Host:     "db2.internal",
		Port:     1433,
		Database: "Warehouse",
		Username: "sa",
		Password: "p@ss/word",
	}

	dsn := endpoint.ConnectionString()
	assert.Contains(t, dsn, "sqlserver://")
	assert.Contains(t, dsn, "db2.internal:1433")
	assert.Contains(t, dsn, "database=Warehouse")
	assert.NotContains(t, dsn, "p@ss/word", "password must be URL-escaped")
}

func TestMSSQLConnectionStringTrustedIdentity(t *testing.T) {
	endpoint := appconfig.EndpointConfig{
		Type:     appconfig.TypeMSSQL,
		Host:     "db2.internal",
		Port:     1433,
		Database: "Warehouse",
	}

	dsn := endpoint.ConnectionString()
	assert.Equal(t, "sqlserver://db2.internal:1433?database=Warehouse", dsn,
		"no credentials means no userinfo in the DSN")
}

func TestPostgresConnectionString(t *testing.T) {
	endpoint := appconfig.EndpointConfig{
		Type:     appconfig.TypePostgres,
		Host:     "localhost",
		Port:     5432,
		Database: "shop",
		Username: "app",
		Password: "secret",
		SSLMode:  "disable",
	}

	dsn := endpoint.ConnectionString()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=shop")
	assert.Contains(t, dsn, "user=app")
	assert.Contains(t, dsn, "password=secret")

	endpoint.Username = ""
	endpoint.Password = ""
	dsn = endpoint.ConnectionString()
	assert.NotContains(t, dsn, "user=")
	assert.NotContains(t, dsn, "password=")
}

func TestDriverName(t *testing.T) {
	mssql := appconfig.EndpointConfig{Type: appconfig.TypeMSSQL}
	postgres := appconfig.EndpointConfig{Type: appconfig.TypePostgres}
	assert.Equal(t, "sqlserver", mssql.DriverName())
	assert.Equal(t, "postgres", postgres.DriverName())
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	_, err := appconfig.LoadConfig(writeConfig(t, `
source:
  type: mssql
  host: a
  database: Shop
remote:
  type: mssql
  host: b
  database: Warehouse
run:
  suffix: bi
  timeout: soon
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}
