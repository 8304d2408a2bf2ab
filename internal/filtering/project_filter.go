package filtering

import (
	"github.com/stacklok/pipeline-tracker/internal/config"
)

// ProjectFilter decides whether a project is reconciled
type ProjectFilter interface {
	// ShouldTrack reports whether the project passes and the reason for the decision
	ShouldTrack(projectName string, tags []string) (bool, string)
}

type defaultProjectFilter struct {
	names *NameFilter
	tags  *TagFilter
}

var _ ProjectFilter = (*defaultProjectFilter)(nil)

// NewProjectFilter builds a ProjectFilter from configuration. A nil configuration tracks every project.
func NewProjectFilter(cfg *config.ProjectFilterConfig) (ProjectFilter, error) {
	var nameInclude, nameExclude, tagInclude, tagExclude []string
	if cfg != nil {
		if cfg.Names != nil {
			nameInclude, nameExclude = cfg.Names.Include, cfg.Names.Exclude
		}
		if cfg.Tags != nil {
			tagInclude, tagExclude = cfg.Tags.Include, cfg.Tags.Exclude
		}
	}

	names, err := NewNameFilter(nameInclude, nameExclude)
	if err != nil {
		return nil, err
	}
	return &defaultProjectFilter{
		names: names,
		tags:  NewTagFilter(tagInclude, tagExclude),
	}, nil
}

// ShouldTrack applies the name filter, then the tag filter
func (f *defaultProjectFilter) ShouldTrack(projectName string, tags []string) (bool, string) {
	ok, nameReason := f.names.ShouldInclude(projectName)
	if !ok {
		return false, "name filter: " + nameReason
	}
	ok, tagReason := f.tags.ShouldInclude(tags)
	if !ok {
		return false, "tag filter: " + tagReason
	}

	switch {
	case f.names.Empty() && f.tags.Empty():
		return true, "no filters specified"
	case f.tags.Empty():
		return true, "name filter: " + nameReason
	case f.names.Empty():
		return true, "tag filter: " + tagReason
	}
	return true, "name filter: " + nameReason + " and tag filter: " + tagReason
}
