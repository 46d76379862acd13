package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TypeMSSQL    = "mssql"
	TypePostgres = "postgres"
)

// EndpointConfig identifies one database server plus the database to act on.
// Username and password are optional; when absent, connections use the
// ambient identity of the invoking session.
type EndpointConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// RunConfig carries the per-run options: the suffix appended to every derived
// remote table name, where backup files land, and the failure policy.
type RunConfig struct {
	Suffix      string   `yaml:"suffix"`
	BackupDir   string   `yaml:"backup_dir"`
	Workers     int      `yaml:"workers"`
	Timeout     Duration `yaml:"timeout"`
	StopOnError bool     `yaml:"stop_on_error"`
}

type Config struct {
	Source EndpointConfig `yaml:"source"`
	Remote EndpointConfig `yaml:"remote"`
	Run    RunConfig      `yaml:"run"`
}

// Duration is a yaml-decodable time.Duration ("30m", "1h").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	c.Source.normalize()
	c.Remote.normalize()

	if c.Run.BackupDir == "" {
		c.Run.BackupDir = "backup"
	}
	if c.Run.Workers <= 0 {
		c.Run.Workers = 1
	}
	if c.Run.Timeout <= 0 {
		c.Run.Timeout = Duration(30 * time.Minute)
	}
}

func (e *EndpointConfig) normalize() {
	e.Type = normalizeDatabaseType(e.Type)

	switch e.Type {
	case TypeMSSQL:
		if e.Port == 0 {
			e.Port = 1433
		}
	case TypePostgres:
		if e.Port == 0 {
			e.Port = 5432
		}
		if e.SSLMode == "" {
			e.SSLMode = "disable"
		}
	}
}

func (c *Config) Validate() error {
	if err := c.Source.validate("source"); err != nil {
		return err
	}
	if err := c.Remote.validate("remote"); err != nil {
		return err
	}
	if c.Source.Type != c.Remote.Type {
		return fmt.Errorf("cross-engine runs are not supported: source is %s, remote is %s", c.Source.Type, c.Remote.Type)
	}
	if strings.TrimSpace(c.Run.Suffix) == "" {
		return fmt.Errorf("run.suffix is required")
	}
	return nil
}

func (e *EndpointConfig) validate(section string) error {
	switch e.Type {
	case TypeMSSQL, TypePostgres:
	default:
		return fmt.Errorf("%s.type: unsupported database type %q", section, e.Type)
	}
	if e.Host == "" {
		return fmt.Errorf("%s.host is required", section)
	}
	if e.Database == "" {
		return fmt.Errorf("%s.database is required", section)
	}
	return nil
}

// ConnectionString builds the driver DSN for the endpoint. Credentials are
// passed through the driver's own escaping, never concatenated into SQL.
func (e *EndpointConfig) ConnectionString() string {
	switch e.Type {
	case TypeMSSQL:
		u := &url.URL{
			Scheme:   "sqlserver",
			Host:     fmt.Sprintf("%s:%d", e.Host, e.Port),
			RawQuery: url.Values{"database": []string{e.Database}}.Encode(),
		}
		if e.Username != "" {
			u.User = url.UserPassword(e.Username, e.Password)
		}
		return u.String()
	case TypePostgres:
		parts := []string{
			fmt.Sprintf("host=%s", e.Host),
			fmt.Sprintf("port=%d", e.Port),
			fmt.Sprintf("dbname=%s", e.Database),
			fmt.Sprintf("sslmode=%s", e.SSLMode),
		}
		if e.Username != "" {
			parts = append(parts, fmt.Sprintf("user=%s", e.Username))
			if e.Password != "" {
				parts = append(parts, fmt.Sprintf("password=%s", e.Password))
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// DriverName reports the database/sql driver registered for the endpoint type.
func (e *EndpointConfig) DriverName() string {
	switch e.Type {
	case TypeMSSQL:
		return "sqlserver"
	case TypePostgres:
		return "postgres"
	default:
		return ""
	}
}

func normalizeDatabaseType(dbType string) string {
	dbType = strings.ToLower(strings.TrimSpace(dbType))
	if dbType == "" {
		return TypeMSSQL
	}

	switch dbType {
	case "mssql", "sqlserver":
		return TypeMSSQL
	case "postgres", "postgresql":
		return TypePostgres
	default:
		return dbType
	}
}
