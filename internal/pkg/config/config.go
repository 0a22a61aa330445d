package config

import (
	"fmt"
	"os"
	"strings"

	"golang-netstate/internal/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend types
const (
	BackendNetlink  = "netlink"
	BackendSnapshot = "snapshot"
)

// Environment variables overriding the configuration file
const (
	EnvLogLevel  = "NETSTATE_LOG_LEVEL"
	EnvLogFormat = "NETSTATE_LOG_FORMAT"
	EnvBackend   = "NETSTATE_BACKEND"
	EnvStateFile = "NETSTATE_STATE_FILE"
	EnvDebugDir  = "NETSTATE_DEBUG_DIR"
	EnvJournal   = "NETSTATE_JOURNAL"
)

// BackendConfig selects the network state backend
type BackendConfig struct {
	Type      string `yaml:"type"`                 // netlink or snapshot
	StateFile string `yaml:"state_file,omitempty"` // state document used by the snapshot backend
}

// JournalConfig configures the run journal
type JournalConfig struct {
	Path string `yaml:"path"` // SQLite database path, empty disables the journal
}

// Config represents the main configuration structure
type Config struct {
	Logging  logging.LogConfig `yaml:"logging"`
	Backend  BackendConfig     `yaml:"backend"`
	DebugDir string            `yaml:"debug_dir,omitempty"`
	Journal  JournalConfig     `yaml:"journal"`
}

// Default returns the configuration used when no config file is given
func Default() *Config {
	return &Config{
		Logging: logging.LogConfig{
			Level:  "info",
			Format: "simple",
		},
		Backend: BackendConfig{
			Type: BackendNetlink,
		},
	}
}

// Load loads configuration from a YAML file. Values missing from the file keep their defaults.
func Load(configPath string) (*Config, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return config, nil
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// Variables already set are not overwritten. A missing default file is not an error.
func LoadEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if required {
			return fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides configuration values from NETSTATE_* environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv(EnvStateFile); v != "" {
		c.Backend.StateFile = v
	}
	if v := os.Getenv(EnvDebugDir); v != "" {
		c.DebugDir = v
	}
	if v := os.Getenv(EnvJournal); v != "" {
		c.Journal.Path = v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	c.Backend.Type = strings.ToLower(c.Backend.Type)
	switch c.Backend.Type {
	case BackendNetlink:
	case BackendSnapshot:
		if c.Backend.StateFile == "" {
			return fmt.Errorf("backend %s: state_file is required", BackendSnapshot)
		}
	default:
		return fmt.Errorf("unknown backend type %q: must be %s or %s", c.Backend.Type, BackendNetlink, BackendSnapshot)
	}

	if c.DebugDir != "" {
		info, err := os.Stat(c.DebugDir)
		if err != nil {
			return fmt.Errorf("debug_dir %s: %w", c.DebugDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("debug_dir %s: not a directory", c.DebugDir)
		}
	}

	return nil
}
