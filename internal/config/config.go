package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Grader   GraderConfig
	Grading  GradingConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// GraderConfig configures the external grading-model service.
type GraderConfig struct {
	URL         string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
}

// GradingConfig holds the grading policy knobs. Scale is the fixed
// assignment point scale grades are normalized onto; MinWords is the
// eligibility threshold below which grading short-circuits to zero.
type GradingConfig struct {
	Scale    float64
	MinWords int
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "gleeworld")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("GRADER_URL", "https://api.openai.com/v1")
	v.SetDefault("GRADER_API_KEY", "")
	v.SetDefault("GRADER_MODEL", "gpt-4o-mini")
	v.SetDefault("GRADER_TIMEOUT", "60s")
	v.SetDefault("GRADER_MAX_ATTEMPTS", 3)
	v.SetDefault("GRADING_SCALE", 20.0)
	v.SetDefault("GRADING_MIN_WORDS", 50)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	connLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		connLifetime = 30 * time.Minute
	}
	graderTimeout, err := time.ParseDuration(v.GetString("GRADER_TIMEOUT"))
	if err != nil {
		graderTimeout = 60 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connLifetime,
		},
		Grader: GraderConfig{
			URL:         v.GetString("GRADER_URL"),
			APIKey:      v.GetString("GRADER_API_KEY"),
			Model:       v.GetString("GRADER_MODEL"),
			Timeout:     graderTimeout,
			MaxAttempts: v.GetInt("GRADER_MAX_ATTEMPTS"),
		},
		Grading: GradingConfig{
			Scale:    v.GetFloat64("GRADING_SCALE"),
			MinWords: v.GetInt("GRADING_MIN_WORDS"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

// Validate checks that every externally-required credential is present.
// The service refuses to start on a partial configuration rather than
// degrading per request.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Name == "" {
		return errors.New("database connection is not configured")
	}
	if c.Grader.APIKey == "" {
		return errors.New("GRADER_API_KEY is required")
	}
	if c.Grading.Scale <= 0 {
		return errors.New("GRADING_SCALE must be positive")
	}
	if c.Grading.MinWords < 0 {
		return errors.New("GRADING_MIN_WORDS cannot be negative")
	}
	return nil
}
