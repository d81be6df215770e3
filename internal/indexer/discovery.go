package indexer

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/cortex-extract/internal/config"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// SourceFile is a discovered candidate with its absolute and root-relative paths.
// RelPath always uses '/' separators.
type SourceFile struct {
	Path    string
	RelPath string
}

// FileDiscovery handles file discovery with glob patterns and exclude rules.
// Exclusion always wins over inclusion.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	excludePatterns []compiledPattern
	followSymlinks  bool
	logger          *slog.Logger
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, paths config.PathsConfig, followSymlinks bool, logger *slog.Logger) (*FileDiscovery, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fd := &FileDiscovery{
		rootDir:        rootDir,
		followSymlinks: followSymlinks,
		logger:         logger,
	}

	var err error
	if fd.includePatterns, err = compilePatterns(paths.Include); err != nil {
		return nil, err
	}
	if fd.excludePatterns, err = compilePatterns(paths.Exclude); err != nil {
		return nil, err
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := config.CompilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", config.ErrInvalidPattern, pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// DiscoverFiles walks the directory tree and returns every matching source file,
// sorted by relative path.
func (fd *FileDiscovery) DiscoverFiles() ([]SourceFile, error) {
	info, err := os.Stat(fd.rootDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", fd.rootDir)
	}

	files := []SourceFile{}
	for file := range fd.Files() {
		files = append(files, file)
	}

	slices.SortFunc(files, func(a, b SourceFile) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
	return files, nil
}

// Files lazily yields matching source files in directory walk order.
// Unreadable directories are logged and skipped.
func (fd *FileDiscovery) Files() iter.Seq[SourceFile] {
	return func(yield func(SourceFile) bool) {
		visited := map[string]bool{}
		if real, err := filepath.EvalSymlinks(fd.rootDir); err == nil {
			visited[real] = true
		}
		fd.walk(fd.rootDir, "", visited, yield)
	}
}

// Paths lazily yields the absolute paths of matching source files.
func (fd *FileDiscovery) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		for file := range fd.Files() {
			if !yield(file.Path) {
				return
			}
		}
	}
}

// walk visits dir recursively. It returns false once yield asks to stop.
func (fd *FileDiscovery) walk(dir, relDir string, visited map[string]bool, yield func(SourceFile) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fd.logger.Warn("skipping unreadable directory", "path", dir, "error", err)
		return true
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		relPath := entry.Name()
		if relDir != "" {
			relPath = relDir + "/" + entry.Name()
		}

		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			if !fd.followSymlinks {
				continue
			}
			target, err := os.Stat(path)
			if err != nil {
				fd.logger.Warn("skipping broken symlink", "path", path, "error", err)
				continue
			}
			mode = target.Mode().Type()
			if target.IsDir() {
				real, err := filepath.EvalSymlinks(path)
				if err != nil || visited[real] {
					continue
				}
				visited[real] = true
			}
		}

		switch {
		case mode.IsDir():
			if fd.shouldPrune(relPath) {
				continue
			}
			if !fd.walk(path, relPath, visited, yield) {
				return false
			}
		case mode.IsRegular():
			if !fd.matches(relPath) {
				continue
			}
			if !yield(SourceFile{Path: path, RelPath: relPath}) {
				return false
			}
		}
	}

	return true
}

// matches reports whether a root-relative file path is a candidate source file.
func (fd *FileDiscovery) matches(relPath string) bool {
	if filepath.Ext(relPath) != config.SourceExtension {
		return false
	}
	if fd.shouldExclude(relPath) {
		return false
	}
	return matchesAnyPattern(relPath, fd.includePatterns)
}

// shouldExclude checks if a path matches any exclude pattern.
func (fd *FileDiscovery) shouldExclude(relPath string) bool {
	// Always ignore .cortex directory
	if strings.HasPrefix(relPath, ".cortex/") || relPath == ".cortex" {
		return true
	}
	return matchesAnyPattern(relPath, fd.excludePatterns)
}

// shouldPrune reports whether every file below a directory is excluded, so the
// walk can skip it. Only "dir/**" style patterns prune.
func (fd *FileDiscovery) shouldPrune(relDir string) bool {
	if relDir == ".cortex" {
		return true
	}
	for _, cp := range fd.excludePatterns {
		if strings.HasSuffix(cp.pattern, "/**") && cp.glob.Match(relDir+"/") {
			return true
		}
	}
	return false
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Special handling: if path is in root (no slash), also try matching against
	// patterns with **/ prefix removed. This makes "**/*.rs" match both "main.rs"
	// and "src/lib.rs" as users would expect.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if simplified, ok := strings.CutPrefix(cp.pattern, "**/"); ok {
				if g, err := config.CompilePattern(simplified); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
