package filtering

import (
	"fmt"
	"slices"
)

// TagFilter matches entity tags exactly
type TagFilter struct {
	include []string
	exclude []string
}

// NewTagFilter creates a TagFilter from include and exclude tag lists
func NewTagFilter(include, exclude []string) *TagFilter {
	return &TagFilter{include: include, exclude: exclude}
}

// Empty reports whether the filter has no tags
func (f *TagFilter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

// ShouldInclude reports whether an entity with tags passes the filter and why
func (f *TagFilter) ShouldInclude(tags []string) (bool, string) {
	for _, tag := range tags {
		if slices.Contains(f.exclude, tag) {
			return false, fmt.Sprintf("excluded by tag '%s'", tag)
		}
	}

	if len(f.include) > 0 {
		for _, tag := range tags {
			if slices.Contains(f.include, tag) {
				return true, fmt.Sprintf("included by tag '%s'", tag)
			}
		}
		return false, fmt.Sprintf("no tag in %v is in the include list", tags)
	}

	if len(f.exclude) > 0 {
		return true, "no excluded tag present"
	}
	return true, "no tag filters specified"
}
