package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Enabled reports whether a database host has been configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// Validate checks the fields required to open a connection.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Host) == "":
		return fmt.Errorf("database.host is required")
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("database.name is required")
	case strings.TrimSpace(c.User) == "":
		return fmt.Errorf("database.user is required")
	case c.MaxConnections < 0:
		return fmt.Errorf("database.max_connections must be >= 0")
	}
	return nil
}

func (c Config) port() string {
	if p := strings.TrimSpace(c.Port); p != "" {
		return p
	}
	return "5432"
}

func (c Config) sslMode() string {
	if m := strings.TrimSpace(c.SSLMode); m != "" {
		return m
	}
	return "disable"
}

// DSN returns a lib/pq keyword/value connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		quoteDSN(c.User), quoteDSN(c.Password), c.Host, c.port(), c.Name, c.sslMode())
}

// URL returns the postgres:// form used by golang-migrate.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.port(),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.sslMode()),
	}
	return u.String()
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	return "'" + strings.ReplaceAll(v, `'`, `\'`) + "'"
}
