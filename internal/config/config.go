// Package config loads and validates clangcg's YAML configuration file:
// the database backend/path, the walker's default ignored namespaces and
// extra clang flags, and the default output format.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the clangcg configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the clangcg configuration directory.
const ConfigDirName = ".clangcg"

// Config holds all clangcg configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Index    IndexConfig    `yaml:"index"`
	Output   OutputConfig   `yaml:"output"`
}

// DatabaseConfig names a call-graph store backend and location: a
// Dolt-backed directory for persistent use, or an in-memory sqlite
// database for throwaway/dry runs. Load validates it; the commands take
// the store location from --database-path and do not read this section.
type DatabaseConfig struct {
	Backend string `yaml:"backend"` // "dolt" | "memory"
	Path    string `yaml:"path"`
}

// IndexConfig holds indexing defaults. IgnoredNamespaces is the default
// for the --ignored-namespaces flag of new-database and dry-run.
// ExtraClangFlags is loaded and merged but is not added to the clang
// invocation.
type IndexConfig struct {
	IgnoredNamespaces []string `yaml:"ignored_namespaces"`
	ExtraClangFlags   []string `yaml:"extra_clang_flags"`
}

// OutputConfig names an output format for query results (find_functions_at,
// callers, overrides). Load validates it; the query commands always print
// tab-separated text and do not read it.
type OutputConfig struct {
	Format string `yaml:"format"` // "text" | "json"
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .clangcg/config.yaml, falling back to
// defaults. It searches for the config directory starting from workDir
// and walking up the directory tree. If no config is found, it returns
// defaults rather than an error.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path, merges it over
// defaults, and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())

	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .clangcg directory by walking up from
// startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .clangcg directory if it doesn't exist.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// ValidBackends lists the valid values for database.backend.
var ValidBackends = []string{"dolt", "memory"}

// IsValidBackend reports whether backend is recognized.
func IsValidBackend(backend string) bool {
	for _, v := range ValidBackends {
		if backend == v {
			return true
		}
	}
	return false
}

// ValidFormats lists the valid values for output.format.
var ValidFormats = []string{"text", "json"}

// IsValidFormat reports whether format is recognized.
func IsValidFormat(format string) bool {
	for _, v := range ValidFormats {
		if format == v {
			return true
		}
	}
	return false
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if !IsValidBackend(cfg.Database.Backend) {
		return fmt.Errorf("%w: database.backend must be one of %v, got %q",
			ErrInvalidConfig, ValidBackends, cfg.Database.Backend)
	}

	if cfg.Database.Backend == "dolt" && cfg.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required when database.backend is %q",
			ErrInvalidConfig, "dolt")
	}

	if !IsValidFormat(cfg.Output.Format) {
		return fmt.Errorf("%w: output.format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.Format)
	}

	return nil
}

// SaveDefault writes the default configuration to .clangcg/config.yaml
// in workDir, creating the directory if needed.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# clangcg configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
