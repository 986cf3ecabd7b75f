package config

import (
	"fmt"
	"time"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Driver is postgres (default) or sqlite for single-instance setups.
	Driver string `yaml:"driver"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

func (c *DatabaseConfig) applyDefaults() {
	if c.Driver == "" {
		c.Driver = DatabaseDriverPostgres
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.Driver == DatabaseDriverSQLite && c.Path == "" {
		c.Path = "portal.db"
	}
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
}
