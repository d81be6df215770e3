package config

import (
	"github.com/gobwas/glob"
	"github.com/maypok86/otter"
)

// compiledPatterns caches compiled globs process-wide; discoverers for the same
// configuration compile each pattern once.
var compiledPatterns = newPatternCache()

func newPatternCache() otter.Cache[string, glob.Glob] {
	cache, err := otter.MustBuilder[string, glob.Glob](1024).Build()
	if err != nil {
		panic(err)
	}
	return cache
}

// CompilePattern compiles a glob pattern with '/' as the separator, so '*' stops at
// directory boundaries and '**' spans them.
func CompilePattern(pattern string) (glob.Glob, error) {
	if g, ok := compiledPatterns.Get(pattern); ok {
		return g, nil
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	compiledPatterns.Set(pattern, g)
	return g, nil
}
