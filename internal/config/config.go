// Package config builds the immutable process configuration for the mock
// API from environment variables. It is loaded once in main and handed to
// the server; nothing else reads the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
)

const (
	EnvPort     = "MOCK_API_PORT"
	EnvLogLevel = "MOCK_API_LOG_LEVEL"
	EnvOpsAddr  = "MOCK_API_OPS_ADDR"

	DefaultHost      = "0.0.0.0"
	DefaultPort      = 8081
	DefaultUploadDir = "/tmp/mock-uploads"
	DefaultLogLevel  = "info"

	Username = "usertest01"
	Password = "test123"
	Token    = "mock-token-usertest01"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig

	// UploadDir is where accepted files are written.
	UploadDir string

	// Warnings lists values that were rejected and replaced by defaults.
	Warnings []ValidationError
}

type ServerConfig struct {
	Host     string
	Port     int
	LogLevel string
	OpsAddr  string // empty disables the ops listener
}

type AuthConfig struct {
	Username string
	Password string
	Token    string
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:     DefaultHost,
			Port:     DefaultPort,
			LogLevel: DefaultLogLevel,
		},
		Auth: AuthConfig{
			Username: Username,
			Password: Password,
			Token:    Token,
		},
		UploadDir: DefaultUploadDir,
	}
}

// Load reads the configuration through getenv (usually os.Getenv).
// Invalid values never fail the load: they fall back to the default and
// are reported in Config.Warnings.
func Load(getenv func(string) string) Config {
	cfg := Default()
	v := NewValidator()

	if raw := getenv(EnvPort); raw != "" {
		if port, ok := v.ValidatePort(EnvPort, raw); ok {
			cfg.Server.Port = port
		}
	}

	if raw := getenv(EnvLogLevel); raw != "" {
		if v.ValidateEnum(EnvLogLevel, raw, []string{"debug", "info", "warn", "error"}) {
			cfg.Server.LogLevel = raw
		}
	}

	if raw := getenv(EnvOpsAddr); raw != "" {
		if v.ValidateHostPort(EnvOpsAddr, raw) {
			cfg.Server.OpsAddr = raw
		}
	}

	cfg.Warnings = v.Errors()
	return cfg
}

// Addr is the listen address for the API.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c Config) String() string {
	return fmt.Sprintf("addr=%s upload_dir=%s log_level=%s ops_addr=%q",
		c.Addr(), c.UploadDir, c.Server.LogLevel, c.Server.OpsAddr)
}
