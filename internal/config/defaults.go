package config

// DefaultConfig returns configuration with sensible defaults. These
// defaults are used when no config file exists or when a loaded config
// file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Backend: "dolt",
			Path:    ".clangcg/db",
		},
		Index: IndexConfig{
			IgnoredNamespaces: []string{"std", "__gnu_cxx"},
			ExtraClangFlags:   nil,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Merge merges loaded config with defaults. Values from loaded config
// take precedence over defaults. Returns a new Config with merged
// values.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Database: mergeDatabaseConfig(loaded.Database, defaults.Database),
		Index:    mergeIndexConfig(loaded.Index, defaults.Index),
		Output:   mergeOutputConfig(loaded.Output, defaults.Output),
	}
}

func mergeDatabaseConfig(loaded, defaults DatabaseConfig) DatabaseConfig {
	result := DatabaseConfig{Backend: defaults.Backend, Path: defaults.Path}
	if loaded.Backend != "" {
		result.Backend = loaded.Backend
	}
	if loaded.Path != "" {
		result.Path = loaded.Path
	}
	return result
}

func mergeIndexConfig(loaded, defaults IndexConfig) IndexConfig {
	result := IndexConfig{
		IgnoredNamespaces: defaults.IgnoredNamespaces,
		ExtraClangFlags:   defaults.ExtraClangFlags,
	}
	if len(loaded.IgnoredNamespaces) > 0 {
		result.IgnoredNamespaces = loaded.IgnoredNamespaces
	}
	if len(loaded.ExtraClangFlags) > 0 {
		result.ExtraClangFlags = loaded.ExtraClangFlags
	}
	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := OutputConfig{Format: defaults.Format}
	if loaded.Format != "" {
		result.Format = loaded.Format
	}
	return result
}
