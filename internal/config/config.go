package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SMTPConfig 邮件发送配置
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether every SMTP setting is present.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != "" && s.From != ""
}

// Config is read once at start-up and never mutated afterwards.
type Config struct {
	Port           string
	Domain         string
	DatabaseDriver string
	DatabaseURL    string
	SessionSecret  string
	SMTP           SMTPConfig
	FilesDir       string
	TemplatesDir   string
	StaticDir      string
	LogLevel       string
	Development    bool

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	envErr := godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Domain:         getEnv("DOMAIN", "localhost:8080"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionSecret:  getEnv("SESSION_SECRET", "secret_key_change_me"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		FilesDir:      getEnv("FILES_DIR", "public/files"),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "web/templates"),
		StaticDir:     getEnv("STATIC_DIR", "web/static"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Development:   os.Getenv("GIN_MODE") != "release",
		EnvFileLoaded: envErr == nil,
	}

	if cfg.DatabaseURL == "" {
		switch cfg.DatabaseDriver {
		case DriverPostgres:
			// Fallback for local dev if not set
			cfg.DatabaseURL = "host=localhost user=postgres password=postgres dbname=neor port=5432 sslmode=disable"
		case DriverSQLite:
			cfg.DatabaseURL = "neor.db"
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("config: PORT must not be empty")
	}
	if len(c.SessionSecret) < 8 {
		return fmt.Errorf("config: SESSION_SECRET is too short")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
