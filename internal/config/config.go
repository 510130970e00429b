package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver               string `env:"DB_DRIVER" envDefault:"mysql"`
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBHost                 string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	SQLitePath             string `env:"SQLITE_PATH" envDefault:"rishop.db"`

	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	// AuthDevHeader enables header-based identities for local development, e.g. X-Debug-UID.
	AuthDevHeader string `env:"AUTH_DEV_HEADER"`

	StorageBucket   string `env:"STORAGE_BUCKET"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	CORSOriginSuffixes      []string      `env:"CORS_ORIGIN_SUFFIXES" envSeparator:"," envDefault:"vercel.app"`
	NotificationPollSeconds int           `env:"NOTIFICATION_POLL_SECONDS" envDefault:"30"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case DriverMySQL:
		if c.DBUser == "" {
			errs = append(errs, errors.New("DB_USER is required for mysql"))
		}
		if c.DBName == "" {
			errs = append(errs, errors.New("DB_NAME is required for mysql"))
		}
		if c.DBHost == "" && c.InstanceConnectionName == "" {
			errs = append(errs, errors.New("DB_HOST or INSTANCE_CONNECTION_NAME is required for mysql"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.FirebaseProjectID == "" && c.AuthDevHeader == "" {
		errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required unless AUTH_DEV_HEADER is set"))
	}
	if c.AuthDevHeader != "" && c.IsProduction() {
		errs = append(errs, errors.New("AUTH_DEV_HEADER must be empty when APP_ENV is production"))
	}
	if c.NotificationPollSeconds <= 0 {
		errs = append(errs, errors.New("NOTIFICATION_POLL_SECONDS must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
