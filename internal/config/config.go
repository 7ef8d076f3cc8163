// Package config loads corkboard settings from defaults, an optional YAML
// file, and CORKBOARD_* environment variables, in that order. Command-line
// flags are applied on top by the CLI layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendPostgREST = "postgrest"
	BackendSQLite    = "sqlite"
)

// Config holds process settings.
type Config struct {
	Backend            string   `yaml:"backend" json:"backend"`                         // Store backend: postgrest or sqlite (empty = auto)
	StoreURL           string   `yaml:"store_url" json:"store_url"`                     // Base URL of the PostgREST-style store
	StoreKey           string   `yaml:"store_key" json:"store_key"`                     // Shared credential forwarded as apikey and bearer token
	DBPath             string   `yaml:"db_path" json:"db_path"`                         // SQLite file for the embedded backend
	BootstrapWorkspace string   `yaml:"bootstrap_workspace" json:"bootstrap_workspace"` // Workspace seeded on first embedded run
	DefaultWorkspace   string   `yaml:"default_workspace" json:"default_workspace"`     // Fallback workspace id when list_projects gets none
	Port               int      `yaml:"port" json:"port"`                               // SSE mode listen port
	PublicURL          string   `yaml:"public_url" json:"public_url"`                   // Advertised base URL for SSE message endpoints
	AllowedOrigins     []string `yaml:"allowed_origins" json:"allowed_origins"`         // CORS allowlist, * for any
	Environment        string   `yaml:"environment" json:"environment"`                 // production or development (log encoder)
	LogLevel           string   `yaml:"log_level" json:"log_level"`                     // debug, info, warn, error
}

// Default returns the built-in settings.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dbPath := "corkboard.db"
	if home != "" {
		dbPath = filepath.Join(home, ".corkboard", "corkboard.db")
	}

	return &Config{
		DBPath:             dbPath,
		BootstrapWorkspace: "Personal",
		Port:               8808,
		AllowedOrigins:     []string{"*"},
		Environment:        "production",
		LogLevel:           "info",
	}
}

// DefaultPath returns ~/.corkboard/config.yaml, or "" when the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".corkboard", "config.yaml")
}

// Load builds a Config from defaults, the YAML file at path, and the
// environment. An empty path means the default location, where a missing
// file is fine; an explicitly given path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// No config file, defaults apply.
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from CORKBOARD_* variables.
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("CORKBOARD_BACKEND", &c.Backend)
	setString("CORKBOARD_STORE_URL", &c.StoreURL)
	setString("CORKBOARD_STORE_KEY", &c.StoreKey)
	setString("CORKBOARD_DB_PATH", &c.DBPath)
	setString("CORKBOARD_BOOTSTRAP_WORKSPACE", &c.BootstrapWorkspace)
	setString("CORKBOARD_DEFAULT_WORKSPACE", &c.DefaultWorkspace)
	setString("CORKBOARD_PUBLIC_URL", &c.PublicURL)
	setString("CORKBOARD_ENV", &c.Environment)
	setString("CORKBOARD_LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("CORKBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse CORKBOARD_PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("CORKBOARD_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = SplitOrigins(v)
	}
	return nil
}

// SplitOrigins turns a comma-separated origin list into a slice, trimming
// whitespace and dropping empty entries.
func SplitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// ResolvedBackend picks the effective store backend: an explicit setting
// wins, otherwise a configured store URL selects postgrest and the embedded
// database is the fallback.
func (c *Config) ResolvedBackend() string {
	if c.Backend != "" {
		return c.Backend
	}
	if c.StoreURL != "" {
		return BackendPostgREST
	}
	return BackendSQLite
}

// Validate checks that the settings can actually start a server.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendPostgREST, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}

	switch c.ResolvedBackend() {
	case BackendPostgREST:
		if c.StoreURL == "" {
			return fmt.Errorf("config: postgrest backend requires a store URL")
		}
		if c.StoreKey == "" {
			return fmt.Errorf("config: postgrest backend requires a store key")
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("config: sqlite backend requires a database path")
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	return nil
}
