// Package config provides the extraction settings for cortex-extract.
//
// Configuration is read from .cortex/config.yml (or .yaml) under the project root,
// with CORTEX_* environment variables taking precedence over file values and
// built-in defaults filling the rest. A loaded Config is validated once and is never
// modified by the extraction pipeline.
package config

// DefaultMaxFileSize is the default per-file size limit in bytes (1 MiB).
const DefaultMaxFileSize int64 = 1 << 20

// SourceExtension is the file extension of the subject language.
const SourceExtension = ".rs"

// Config represents the complete extraction configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
}

// PathsConfig defines which files are extracted.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns, relative to the root
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // glob patterns; exclude wins over include
}

// ExtractionConfig controls what each file's extraction emits.
type ExtractionConfig struct {
	IncludeDocs       bool  `yaml:"include_docs" mapstructure:"include_docs"`
	IncludePrivate    bool  `yaml:"include_private" mapstructure:"include_private"`
	ParseDependencies bool  `yaml:"parse_dependencies" mapstructure:"parse_dependencies"` // read Cargo.toml dependencies
	MaxFileSize       int64 `yaml:"max_file_size" mapstructure:"max_file_size"`           // bytes
	Workers           int   `yaml:"workers" mapstructure:"workers"`                       // 0 means runtime.NumCPU()
	FollowSymlinks    bool  `yaml:"follow_symlinks" mapstructure:"follow_symlinks"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.rs",
			},
			Exclude: []string{
				"target/**",
				".git/**",
				"vendor/**",
				".cortex/**",
			},
		},
		Extraction: ExtractionConfig{
			IncludeDocs:       true,
			IncludePrivate:    true,
			ParseDependencies: false,
			MaxFileSize:       DefaultMaxFileSize,
			Workers:           0,
			FollowSymlinks:    false,
		},
	}
}
