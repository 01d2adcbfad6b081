package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"orchd/pkg/types"
)

// LocalServe configures the adapter for the shared local serving daemon.
type LocalServe struct {
	BaseURL          string `json:"base_url" yaml:"base_url" toml:"base_url"`
	LoadTimeoutS     int    `json:"load_timeout_s" yaml:"load_timeout_s" toml:"load_timeout_s"`
	GenerateTimeoutS int    `json:"generate_timeout_s" yaml:"generate_timeout_s" toml:"generate_timeout_s"`
}

// Container configures the adapter for container-backed models.
type Container struct {
	DockerBin        string `json:"docker_bin" yaml:"docker_bin" toml:"docker_bin"`
	HealthIntervalS  int    `json:"health_interval_s" yaml:"health_interval_s" toml:"health_interval_s"`
	HealthAttempts   int    `json:"health_attempts" yaml:"health_attempts" toml:"health_attempts"`
	GenerateTimeoutS int    `json:"generate_timeout_s" yaml:"generate_timeout_s" toml:"generate_timeout_s"`
}

// CORS is the opt-in CORS configuration for the HTTP server.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by defaults at wiring time.
type Config struct {
	Addr         string  `json:"addr" yaml:"addr" toml:"addr"`
	TotalVRAMGB  float64 `json:"total_vram_gb" yaml:"total_vram_gb" toml:"total_vram_gb"`
	Mode         string  `json:"mode" yaml:"mode" toml:"mode"`
	DefaultModel string  `json:"default_model" yaml:"default_model" toml:"default_model"`
	// Grace window in seconds after a request finishes during which a model
	// is deprioritized for eviction.
	GraceWindowS int `json:"grace_window_s" yaml:"grace_window_s" toml:"grace_window_s"`

	LocalServe LocalServe `json:"local_serve" yaml:"local_serve" toml:"local_serve"`
	Container  Container  `json:"container" yaml:"container" toml:"container"`
	CORS       CORS       `json:"cors" yaml:"cors" toml:"cors"`

	// Model catalog and mode table. Empty means the built-in defaults.
	Models []types.ModelDescriptor `json:"models" yaml:"models" toml:"models"`
	Modes  map[string][]string     `json:"modes" yaml:"modes" toml:"modes"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
