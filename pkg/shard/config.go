package shard

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DatabaseType names a supported shard database backend.
type DatabaseType string

const (
	DatabaseTypeMySQL    DatabaseType = "mysql"
	DatabaseTypePostgres DatabaseType = "postgres"
	DatabaseTypeSQLite   DatabaseType = "sqlite"
)

// Config describes one shard.
type Config struct {
	// Key is the stable shard key (e.g., "guayaquil").
	Key string `mapstructure:"key" yaml:"key" validate:"required,hostname_rfc1123" json:"key"`

	// CentroID is the numeric centro id accepted in X-Centro-Id.
	CentroID int64 `mapstructure:"centro_id" yaml:"centro_id" validate:"required,gt=0" json:"centro_id"`

	// Nombre is the display name of the centro.
	Nombre string `mapstructure:"nombre" yaml:"nombre" json:"nombre,omitempty"`

	Database DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`

	// AutoMigrate creates missing tables when the registry opens.
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate" json:"auto_migrate,omitempty"`
}

// DatabaseConfig holds the connection settings of one shard.
type DatabaseConfig struct {
	Type     DatabaseType   `mapstructure:"type" yaml:"type" validate:"omitempty,oneof=mysql postgres sqlite" json:"type,omitempty"`
	MySQL    MySQLConfig    `mapstructure:"mysql" yaml:"mysql,omitempty" json:"mysql,omitempty"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres,omitempty" json:"postgres,omitempty"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite,omitempty" json:"sqlite,omitempty"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns" validate:"gte=0" json:"max_open_conns,omitempty"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns" validate:"gte=0" json:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime" json:"conn_max_lifetime,omitempty"`
}

// MySQLConfig contains MySQL connection settings.
type MySQLConfig struct {
	Host     string `mapstructure:"host" yaml:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port" json:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database" json:"database,omitempty"`
	User     string `mapstructure:"user" yaml:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" yaml:"password" json:"password,omitempty"`
	Params   string `mapstructure:"params" yaml:"params,omitempty" json:"params,omitempty"`
}

// DSN returns the go-sql-driver/mysql connection string.
func (c *MySQLConfig) DSN() string {
	params := c.Params
	if params == "" {
		params = "charset=utf8mb4&parseTime=True&loc=UTC"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.User, c.Password, c.Host, c.Port, c.Database, params)
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host" yaml:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port" json:"port,omitempty"`
	Database string `mapstructure:"database" yaml:"database" json:"database,omitempty"`
	User     string `mapstructure:"user" yaml:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" yaml:"password" json:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode" json:"sslmode,omitempty"` // disable, require, verify-ca, verify-full
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += " sslmode=" + c.SSLMode
	}
	return dsn
}

// SQLiteConfig contains SQLite settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path,omitempty"`
}

// DSN returns the SQLite file path with the pragmas used for every shard.
func (c *SQLiteConfig) DSN() string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	return c.Path + "?" + q.Encode()
}

// ApplyDefaults fills in missing settings.
func (c *Config) ApplyDefaults() {
	d := &c.Database
	if d.Type == "" {
		d.Type = DatabaseTypeMySQL
	}
	switch d.Type {
	case DatabaseTypeMySQL:
		if d.MySQL.Port == 0 {
			d.MySQL.Port = 3306
		}
		if d.MySQL.Host == "" {
			d.MySQL.Host = "localhost"
		}
	case DatabaseTypePostgres:
		if d.Postgres.Port == 0 {
			d.Postgres.Port = 5432
		}
		if d.Postgres.SSLMode == "" {
			d.Postgres.SSLMode = "disable"
		}
	case DatabaseTypeSQLite:
		if d.SQLite.Path == "" {
			dir := os.Getenv("XDG_DATA_HOME")
			if dir == "" {
				home, _ := os.UserHomeDir()
				dir = filepath.Join(home, ".local", "share")
			}
			d.SQLite.Path = filepath.Join(dir, "centromed", c.Key+".db")
		}
	}
	if d.MaxOpenConns == 0 {
		d.MaxOpenConns = 10
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = 2
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = 30 * time.Minute
	}
}

// Validate checks driver-specific required settings.
func (c *Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("shard key is required")
	}
	if _, err := strconv.ParseInt(c.Key, 10, 64); err == nil {
		return fmt.Errorf("shard %q: key must not be numeric, numeric selectors are centro ids", c.Key)
	}
	if c.CentroID <= 0 {
		return fmt.Errorf("shard %q: centro_id must be positive", c.Key)
	}
	d := &c.Database
	switch d.Type {
	case DatabaseTypeMySQL:
		if d.MySQL.Database == "" || d.MySQL.User == "" {
			return fmt.Errorf("shard %q: mysql database and user are required", c.Key)
		}
	case DatabaseTypePostgres:
		if d.Postgres.Host == "" || d.Postgres.Database == "" || d.Postgres.User == "" {
			return fmt.Errorf("shard %q: postgres host, database and user are required", c.Key)
		}
	case DatabaseTypeSQLite:
		if d.SQLite.Path == "" {
			return fmt.Errorf("shard %q: sqlite path is required", c.Key)
		}
	default:
		return fmt.Errorf("shard %q: unsupported database type %q", c.Key, d.Type)
	}
	return nil
}
