package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cortex-extract/internal/config"
	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// Test Plan for Extract Command:
// - runExtract writes the project model as JSON to stdout
// - runExtract writes to --output when given
// - runExtract --tree prints the element hierarchy
// - runExtract on a single file emits a FileModel
// - runExtract reports failed files on stderr
// - runExtract --quiet keeps stderr empty
// - Flag overrides win over configuration
// - A missing path is an error
// - formatNumber adds thousands separators

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

var sampleFiles = map[string]string{
	"src/lib.rs": `/// Entry point.
pub fn run() {}

pub mod config {
    pub struct Settings;
}
`,
	"src/bad.rs": "fn bad( {\n",
}

func TestRunExtract_JSON(t *testing.T) {
	t.Parallel()

	root := setupProject(t, sampleFiles)
	var stdout, stderr bytes.Buffer

	err := runExtract(context.Background(), root, extractOptions{quiet: true}, &stdout, &stderr)
	require.NoError(t, err)

	var model extraction.ProjectModel
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &model))
	require.Len(t, model.Files, 1)
	assert.Equal(t, "src/lib.rs", model.Files[0].RelativePath)
	assert.Len(t, model.Files[0].Elements, 3)
	assert.Equal(t, 1, model.Failures.FailedCount)
	assert.Empty(t, stderr.String())
}

func TestRunExtract_OutputFile(t *testing.T) {
	t.Parallel()

	root := setupProject(t, sampleFiles)
	out := filepath.Join(t.TempDir(), "model.json")
	var stdout, stderr bytes.Buffer

	err := runExtract(context.Background(), root, extractOptions{quiet: true, output: out}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"relative_path": "src/lib.rs"`)
}

func TestRunExtract_Tree(t *testing.T) {
	t.Parallel()

	root := setupProject(t, sampleFiles)
	var stdout, stderr bytes.Buffer

	err := runExtract(context.Background(), root, extractOptions{quiet: true, tree: true}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "src/lib.rs\n  function run (cc=1)\n  module config\n    struct Settings\n", stdout.String())
}

func TestRunExtract_SingleFile(t *testing.T) {
	t.Parallel()

	root := setupProject(t, sampleFiles)
	var stdout, stderr bytes.Buffer

	err := runExtract(context.Background(), filepath.Join(root, "src", "lib.rs"), extractOptions{}, &stdout, &stderr)
	require.NoError(t, err)

	var file extraction.FileModel
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &file))
	assert.Len(t, file.Elements, 3)
	assert.Equal(t, []string{"Entry point."}, file.Elements[0].Docs)
}

func TestRunExtract_ReportsFailures(t *testing.T) {
	t.Parallel()

	root := setupProject(t, sampleFiles)
	var stdout, stderr bytes.Buffer

	err := runExtract(context.Background(), root, extractOptions{}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stderr.String(), "1 of 2 files failed")
	assert.Contains(t, stderr.String(), "src/bad.rs")
	assert.Contains(t, stderr.String(), "Extraction complete")
}

func TestRunExtract_MissingPath(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := runExtract(context.Background(), filepath.Join(t.TempDir(), "nope"), extractOptions{}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	applyFlagOverrides(cfg, extractOptions{noPrivate: true, noDocs: true, deps: true, workers: 3})

	assert.False(t, cfg.Extraction.IncludePrivate)
	assert.False(t, cfg.Extraction.IncludeDocs)
	assert.True(t, cfg.Extraction.ParseDependencies)
	assert.Equal(t, 3, cfg.Extraction.Workers)

	untouched := config.Default()
	applyFlagOverrides(untouched, extractOptions{})
	assert.Equal(t, config.Default(), untouched)
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "7", formatNumber(7))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
