// Package manifest reads project metadata from a crate's Cargo.toml.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mvp-joe/cortex-extract/internal/indexer/extraction"
)

// FileName is the manifest file looked up at the project root.
const FileName = "Cargo.toml"

// Dependency sections read from the manifest, in output order.
const (
	SectionNormal = "dependencies"
	SectionDev    = "dev-dependencies"
	SectionBuild  = "build-dependencies"
)

// Cargo is the subset of Cargo.toml the extractor cares about.
type Cargo struct {
	Package struct {
		Name string `toml:"name"`
		// Version and Edition may be inherited tables such as { workspace = true }.
		Version any `toml:"version"`
		Edition any `toml:"edition"`
	} `toml:"package"`

	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

// Load reads rootDir/Cargo.toml. It returns (nil, nil) when the file does not exist.
func Load(rootDir string) (*Cargo, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var c Cargo
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &c, nil
}

// Info builds ProjectInfo for rootDir. A nil manifest yields the directory name
// as the project name. Dependencies are listed only when withDeps is set.
func (c *Cargo) Info(rootDir string, withDeps bool) extraction.ProjectInfo {
	info := extraction.ProjectInfo{
		Name:     filepath.Base(rootDir),
		RootPath: rootDir,
	}
	if c == nil {
		return info
	}

	if c.Package.Name != "" {
		info.Name = c.Package.Name
	}
	info.Version = stringValue(c.Package.Version)
	info.Edition = stringValue(c.Package.Edition)

	if withDeps {
		info.Dependencies = c.DeclaredDependencies()
	}
	return info
}

// DeclaredDependencies lists declared dependencies, section by section, sorted by name
// within each section.
func (c *Cargo) DeclaredDependencies() []extraction.Dependency {
	var deps []extraction.Dependency
	for _, section := range []struct {
		name  string
		table map[string]any
	}{
		{SectionNormal, c.Dependencies},
		{SectionDev, c.DevDependencies},
		{SectionBuild, c.BuildDependencies},
	} {
		names := make([]string, 0, len(section.table))
		for name := range section.table {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			deps = append(deps, extraction.Dependency{
				Name:    name,
				Version: dependencyVersion(section.table[name]),
				Section: section.name,
			})
		}
	}
	return deps
}

// dependencyVersion handles both `dep = "1.0"` and `dep = { version = "1.0", ... }`.
// Path, git and workspace dependencies have no version.
func dependencyVersion(spec any) string {
	switch v := spec.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		return stringValue(v["version"])
	}
	return ""
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
