package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// secretEnv lists the env names accepted for each secret, most specific first.
var secretEnv = map[string][]string{
	"database.postgres.user":     {"APP_DATABASE_POSTGRES_USER", "APP_POSTGRES_USER", "POSTGRES_USER", "DB_USER"},
	"database.postgres.password": {"APP_DATABASE_POSTGRES_PASSWORD", "APP_POSTGRES_PASSWORD", "POSTGRES_PASSWORD", "DB_PASSWORD"},
	"database.postgres.db":       {"APP_DATABASE_POSTGRES_DB", "APP_POSTGRES_DB", "POSTGRES_DB", "DB_NAME"},
	"database.postgres.host":     {"APP_DATABASE_POSTGRES_HOST", "APP_POSTGRES_HOST", "POSTGRES_HOST"},
}

func Load(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	for key, names := range secretEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "forum-service")
	v.SetDefault("app.version", "0.0.1")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", 10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.max_conns", 10)
	v.SetDefault("database.postgres.min_conns", 1)
	v.SetDefault("database.postgres.max_conn_lifetime", 3600)
	v.SetDefault("database.postgres.max_conn_idle_time", 300)
	v.SetDefault("database.postgres.health_check_period", 30)
	v.SetDefault("database.sqlite.path", "forum.db")

	v.SetDefault("pagination.max_size", 100)
}

// Validate checks struct tags plus the rules that depend on the chosen driver.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	switch c.Database.Driver {
	case "postgres":
		pg := c.Database.Postgres
		var missing []string
		if pg.User == "" {
			missing = append(missing, "user")
		}
		if pg.Password == "" {
			missing = append(missing, "password")
		}
		if pg.DBName == "" {
			missing = append(missing, "db")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config validation error: database.postgres missing %s", strings.Join(missing, ", "))
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return errors.New("config validation error: database.sqlite.path is required")
		}
	}
	return nil
}
