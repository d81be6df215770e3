package indexer

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cortex-extract/internal/config"
)

// Test Plan for FileDiscovery:
// - Finds .rs files at the root and in nested directories
// - Returns files sorted by relative path with '/' separators
// - Ignores files without the .rs extension even if patterns match
// - Exclusion wins over inclusion
// - Default excludes skip target/ and .cortex/
// - Narrow include patterns only match their directory
// - Symlinks are skipped unless following is enabled
// - Paths() yields the same set lazily and stops early
// - Invalid patterns are rejected
// - A missing root is an error

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relPaths(files []SourceFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func discover(t *testing.T, root string, paths config.PathsConfig, follow bool) []SourceFile {
	t.Helper()
	fd, err := NewFileDiscovery(root, paths, follow, nil)
	require.NoError(t, err)
	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	return files
}

func TestFileDiscovery_DefaultPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.rs":                "fn main() {}",
		"src/lib.rs":             "",
		"src/util/mod.rs":        "",
		"src/a.rs":               "",
		"README.md":              "# readme",
		"build.rs.bak":           "",
		"target/debug/build.rs":  "",
		".cortex/cache/x.rs":     "",
		"vendor/dep/src/lib.rs":  "",
		"benches/nested/deep.rs": "",
	})

	files := discover(t, root, config.Default().Paths, false)

	assert.Equal(t, []string{
		"benches/nested/deep.rs",
		"main.rs",
		"src/a.rs",
		"src/lib.rs",
		"src/util/mod.rs",
	}, relPaths(files))

	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.Path))
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(f.RelPath)), f.Path)
	}
}

func TestFileDiscovery_ExcludeWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/lib.rs":                "",
		"src/generated/proto.rs":    "",
		"src/generated/nested/x.rs": "",
		"tests/it.rs":               "",
	})

	files := discover(t, root, config.PathsConfig{
		Include: []string{"src/**"},
		Exclude: []string{"src/generated/**"},
	}, false)

	assert.Equal(t, []string{"src/lib.rs"}, relPaths(files))
}

func TestFileDiscovery_FilePatternExclude(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/lib.rs":         "",
		"src/lib_test.rs":    "",
		"src/deep/x_test.rs": "",
	})

	files := discover(t, root, config.PathsConfig{
		Include: []string{"**/*.rs"},
		Exclude: []string{"**/*_test.rs"},
	}, false)

	assert.Equal(t, []string{"src/lib.rs"}, relPaths(files))
}

func TestFileDiscovery_Symlinks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, root, map[string]string{"src/lib.rs": ""})
	writeTree(t, outside, map[string]string{"shared/common.rs": ""})
	require.NoError(t, os.Symlink(filepath.Join(outside, "shared"), filepath.Join(root, "src", "shared")))
	// A link back to the root must not loop forever.
	require.NoError(t, os.Symlink(root, filepath.Join(root, "src", "loop")))

	files := discover(t, root, config.Default().Paths, false)
	assert.Equal(t, []string{"src/lib.rs"}, relPaths(files))

	files = discover(t, root, config.Default().Paths, true)
	assert.Equal(t, []string{"src/lib.rs", "src/shared/common.rs"}, relPaths(files))
}

func TestFileDiscovery_Paths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.rs":     "",
		"b/c.rs":   "",
		"d/e/f.rs": "",
	})

	fd, err := NewFileDiscovery(root, config.Default().Paths, false, nil)
	require.NoError(t, err)

	var all []string
	for p := range fd.Paths() {
		all = append(all, p)
	}
	slices.Sort(all)
	assert.Equal(t, []string{
		filepath.Join(root, "a.rs"),
		filepath.Join(root, "b", "c.rs"),
		filepath.Join(root, "d", "e", "f.rs"),
	}, all)

	count := 0
	for range fd.Paths() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestFileDiscovery_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewFileDiscovery(t.TempDir(), config.PathsConfig{Include: []string{"src/[z-a].rs"}}, false, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidPattern)
}

func TestFileDiscovery_MissingRoot(t *testing.T) {
	t.Parallel()

	fd, err := NewFileDiscovery(filepath.Join(t.TempDir(), "missing"), config.Default().Paths, false, nil)
	require.NoError(t, err)

	_, err = fd.DiscoverFiles()
	assert.Error(t, err)
}
