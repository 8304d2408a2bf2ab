package filtering

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// NameFilter matches project names against compiled glob patterns
type NameFilter struct {
	include []compiledPattern
	exclude []compiledPattern
}

type compiledPattern struct {
	source string
	glob   glob.Glob
}

// NewNameFilter compiles the include and exclude patterns
func NewNameFilter(include, exclude []string) (*NameFilter, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &NameFilter{include: inc, exclude: exc}, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		// filepath.Match reports malformed character classes that glob accepts
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %w", p, err)
		}
		// No separators: '*' matches across '/'
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %w", p, err)
		}
		out = append(out, compiledPattern{source: p, glob: g})
	}
	return out, nil
}

// Empty reports whether the filter has no patterns
func (f *NameFilter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

// ShouldInclude reports whether name passes the filter and why
func (f *NameFilter) ShouldInclude(name string) (bool, string) {
	for _, p := range f.exclude {
		if p.glob.Match(name) {
			return false, fmt.Sprintf("excluded by pattern '%s'", p.source)
		}
	}

	if len(f.include) > 0 {
		for _, p := range f.include {
			if p.glob.Match(name) {
				return true, fmt.Sprintf("included by pattern '%s'", p.source)
			}
		}
		return false, "no include pattern matched"
	}

	if len(f.exclude) > 0 {
		return true, "no exclude pattern matched"
	}
	return true, "no name filters specified"
}
