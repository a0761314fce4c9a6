package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	GRPC     GRPCConfig
	Control  ControlConfig
	Log      LogConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `validate:"required"` // SQLite database file path
}

// ServerConfig contains the task protocol listener settings.
type ServerConfig struct {
	Host           string        `validate:"required,ip"`
	Port           int           `validate:"min=1,max=65535"`
	IdleTimeout    time.Duration // 0 disables the per-session read timeout
	MaxFrameSize   int           `validate:"min=16"`
	MaxConnections int           `validate:"min=0"` // 0 means unlimited
	AutoStart      bool
}

// GRPCConfig contains gRPC health endpoint settings.
type GRPCConfig struct {
	Address string `validate:"omitempty,hostname_port"` // empty disables the endpoint
}

// ControlConfig contains HTTP control API settings.
type ControlConfig struct {
	Address string `validate:"omitempty,hostname_port"` // empty disables the API
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

var validate = validator.New()

// Load reads an optional .env file, then environment variables with defaults,
// and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	port, err := getEnvInt("SERVER_PORT", 8888)
	if err != nil {
		return nil, err
	}
	maxFrame, err := getEnvInt("SERVER_MAX_FRAME", 1<<20)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("SERVER_MAX_CONNECTIONS", 0)
	if err != nil {
		return nil, err
	}
	idle, err := getEnvDuration("SERVER_IDLE_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	autoStart, err := getEnvBool("SERVER_AUTOSTART", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "database.db"),
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "127.0.0.1"),
			Port:           port,
			IdleTimeout:    idle,
			MaxFrameSize:   maxFrame,
			MaxConnections: maxConns,
			AutoStart:      autoStart,
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ""),
		},
		Control: ControlConfig{
			Address: getEnv("CONTROL_ADDRESS", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("invalid config: negative idle timeout %s", c.Server.IdleTimeout)
	}
	return nil
}

// ListenAddress joins the server host and port.
func (s ServerConfig) ListenAddress() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, Server: %s, gRPC: %q, Control: %q, Log: %s/%s}",
		c.Database.Path, c.Server.ListenAddress(), c.GRPC.Address, c.Control.Address, c.Log.Level, c.Log.Format)
}
