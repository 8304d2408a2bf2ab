package changes

import (
	"context"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// StaticSource serves a fixed change list. Changes whose project name is
// empty are reported for every project.
type StaticSource struct {
	changes []pipeline.ChangeInfo
}

var _ Source = (*StaticSource)(nil)

// NewStaticSource creates a source serving changes
func NewStaticSource(changes []pipeline.ChangeInfo) *StaticSource {
	return &StaticSource{changes: changes}
}

// DemoChanges is the change list served by a static source with no configured changes
func DemoChanges() []pipeline.ChangeInfo {
	return []pipeline.ChangeInfo{
		{
			Number:      1756,
			Subject:     "One change",
			Status:      pipeline.ChangeStatusNew,
			Branch:      "master",
			ProjectName: "demo",
			OwnerName:   "John Doe",
		},
		{
			Number:      1757,
			Subject:     "Another change",
			Status:      pipeline.ChangeStatusNew,
			Branch:      "master",
			ProjectName: "demo",
			OwnerName:   "John Doe",
		},
	}
}

// ListOpenChanges returns the configured open changes of project
func (s *StaticSource) ListOpenChanges(_ context.Context, project string) ([]pipeline.ChangeInfo, error) {
	out := []pipeline.ChangeInfo{}
	for _, c := range s.changes {
		if c.Status != pipeline.ChangeStatusNew {
			continue
		}
		if c.ProjectName == "" {
			c.ProjectName = project
		} else if c.ProjectName != project {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
