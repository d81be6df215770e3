package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .cortex/config.yml and .cortex/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values
// - Load() returns error for malformed YAML and for invalid values
// - NewFileLoader() fails when the explicit file is missing
// - Validate() rejects empty include list
// - Validate() rejects zero/negative max file size
// - Validate() rejects the same literal pattern in include and exclude
// - Validate() rejects patterns that do not compile
// - Validate() reports every violation and keeps sentinels reachable via errors.Is
// - CompilePattern() matches consistently on repeated (cached) calls

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, []string{"**/*.rs"}, cfg.Paths.Include)
	assert.Contains(t, cfg.Paths.Exclude, "target/**")
	assert.True(t, cfg.Extraction.IncludeDocs)
	assert.True(t, cfg.Extraction.IncludePrivate)
	assert.False(t, cfg.Extraction.ParseDependencies)
	assert.Equal(t, DefaultMaxFileSize, cfg.Extraction.MaxFileSize)
	assert.Equal(t, 0, cfg.Extraction.Workers)
	assert.False(t, cfg.Extraction.FollowSymlinks)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
paths:
  include:
    - "src/**"
  exclude:
    - "src/generated/**"

extraction:
  include_docs: false
  include_private: false
  parse_dependencies: true
  max_file_size: 2048
  workers: 3
`)

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"src/**"}, cfg.Paths.Include)
	assert.Equal(t, []string{"src/generated/**"}, cfg.Paths.Exclude)
	assert.False(t, cfg.Extraction.IncludeDocs)
	assert.False(t, cfg.Extraction.IncludePrivate)
	assert.True(t, cfg.Extraction.ParseDependencies)
	assert.Equal(t, int64(2048), cfg.Extraction.MaxFileSize)
	assert.Equal(t, 3, cfg.Extraction.Workers)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", `
extraction:
  max_file_size: 4096
`)

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, int64(4096), cfg.Extraction.MaxFileSize)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  include_private: false
`)

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.False(t, cfg.Extraction.IncludePrivate)

	// Everything else comes from defaults
	defaults := Default()
	assert.Equal(t, defaults.Paths, cfg.Paths)
	assert.Equal(t, defaults.Extraction.IncludeDocs, cfg.Extraction.IncludeDocs)
	assert.Equal(t, defaults.Extraction.MaxFileSize, cfg.Extraction.MaxFileSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  max_file_size: 2048
  include_docs: true
`)

	t.Setenv("CORTEX_EXTRACTION_MAX_FILE_SIZE", "512")
	t.Setenv("CORTEX_EXTRACTION_INCLUDE_DOCS", "false")

	cfg, err := NewLoader(tempDir).Load()

	require.NoError(t, err)
	assert.Equal(t, int64(512), cfg.Extraction.MaxFileSize)
	assert.False(t, cfg.Extraction.IncludeDocs)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "extraction: [unclosed")

	_, err := NewLoader(tempDir).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  max_file_size: 0
`)

	_, err := NewLoader(tempDir).Load()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMaxFileSize)
}

func TestFileLoader_MissingFile(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.yml")).Load()

	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "empty include",
			mutate:  func(c *Config) { c.Paths.Include = nil },
			wantErr: ErrEmptyInclude,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.Extraction.MaxFileSize = 0 },
			wantErr: ErrInvalidMaxFileSize,
		},
		{
			name:    "negative max file size",
			mutate:  func(c *Config) { c.Extraction.MaxFileSize = -1 },
			wantErr: ErrInvalidMaxFileSize,
		},
		{
			name: "same literal in include and exclude",
			mutate: func(c *Config) {
				c.Paths.Include = []string{"src/lib.rs"}
				c.Paths.Exclude = []string{"src/lib.rs"}
			},
			wantErr: ErrConflictingPattern,
		},
		{
			name:    "pattern does not compile",
			mutate:  func(c *Config) { c.Paths.Include = []string{"src/[z-a].rs"} },
			wantErr: ErrInvalidPattern,
		},
		{
			name:    "blank exclude",
			mutate:  func(c *Config) { c.Paths.Exclude = []string{"  "} },
			wantErr: ErrInvalidPattern,
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Extraction.Workers = -2 },
			wantErr: ErrInvalidWorkers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_OverlappingButDistinctPatternsAllowed(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Paths.Include = []string{"src/**"}
	cfg.Paths.Exclude = []string{"src/generated/**"}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Paths.Include = nil
	cfg.Extraction.MaxFileSize = -5
	cfg.Extraction.Workers = -1

	err := Validate(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.True(t, errors.Is(err, ErrEmptyInclude))
	assert.True(t, errors.Is(err, ErrInvalidMaxFileSize))
	assert.True(t, errors.Is(err, ErrInvalidWorkers))
}

func TestCompilePattern_Cached(t *testing.T) {
	t.Parallel()

	for range 2 {
		g, err := CompilePattern("src/**/*.rs")
		require.NoError(t, err)
		assert.True(t, g.Match("src/a/b.rs"))
		assert.False(t, g.Match("lib/a.rs"))
	}
}

func writeConfig(t *testing.T, rootDir, name, content string) {
	t.Helper()
	cortexDir := filepath.Join(rootDir, ".cortex")
	require.NoError(t, os.MkdirAll(cortexDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cortexDir, name), []byte(content), 0644))
}
