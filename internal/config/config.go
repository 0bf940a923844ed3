// Package config loads splitledger settings from defaults, an optional
// splitledger.yaml file and SPLITLEDGER_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	envPrefix = "SPLITLEDGER"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Recurring RecurringConfig `mapstructure:"recurring"`
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Budgets   BudgetsConfig   `mapstructure:"budgets"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is sqlite or postgres.
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// URL is the PostgreSQL connection string.
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type RecurringConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// AMQPConfig enables event publishing when URL is set.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BudgetsConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// SetDefaults registers every key so environment variables can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./data/splitledger.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("recurring.enabled", true)
	v.SetDefault("recurring.interval", 24*time.Hour)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "splitledger")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("budgets.concurrency", 4)
}

// Load reads configuration into a Config. configFile may be empty, in which
// case splitledger.yaml is looked up in the working directory and in
// $HOME/.config/splitledger; a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("splitledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "splitledger"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server.port %d: must be between 1 and 65535", c.Server.Port))
	}
	problems = append(problems, c.Database.problems()...)

	if len(c.Auth.JWTSecret) < 16 {
		problems = append(problems, "auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.TokenTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid auth.token_ttl %v: must be at least 1 minute", c.Auth.TokenTTL))
	}

	if c.Recurring.Enabled && c.Recurring.Interval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid recurring.interval %v: must be at least 1 minute", c.Recurring.Interval))
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid amqp.url: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid amqp.url scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "amqp.exchange cannot be empty when amqp.url is set")
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid logging.format %q: must be console or json", c.Logging.Format))
	}

	if c.Budgets.Concurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid budgets.concurrency %d: must be at least 1", c.Budgets.Concurrency))
	}

	return joinProblems(problems)
}

// Validate checks only the database settings, for commands that do not
// serve requests.
func (d DatabaseConfig) Validate() error {
	return joinProblems(d.problems())
}

func (d DatabaseConfig) problems() []string {
	var problems []string
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			problems = append(problems, "database.path cannot be empty when using sqlite")
		}
	case DriverPostgres:
		if d.URL == "" {
			problems = append(problems, "database.url cannot be empty when using postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid database.driver %q: must be %s or %s", d.Driver, DriverSQLite, DriverPostgres))
	}
	if d.MaxOpenConns < 0 || d.MaxIdleConns < 0 {
		problems = append(problems, "database connection pool sizes cannot be negative")
	}
	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
}
