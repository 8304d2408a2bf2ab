package changes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xanzy/go-gitlab"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

const gitlabPageSize = 100

// GitLabSource lists open merge requests through the GitLab API.
// The project name is the GitLab project path, e.g. "group/service".
type GitLabSource struct {
	gl *gitlab.Client
}

var _ Source = (*GitLabSource)(nil)

// NewGitLabSource creates a source for the GitLab server at baseURL
func NewGitLabSource(baseURL, token string) (*GitLabSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gitlab base URL is required")
	}
	gl, err := gitlab.NewClient(token, gitlab.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v4"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &GitLabSource{gl: gl}, nil
}

// ListOpenChanges returns the opened merge requests of project
func (g *GitLabSource) ListOpenChanges(ctx context.Context, project string) ([]pipeline.ChangeInfo, error) {
	opts := &gitlab.ListProjectMergeRequestsOptions{
		ListOptions: gitlab.ListOptions{
			PerPage: gitlabPageSize,
			Page:    1,
		},
		State: gitlab.Ptr("opened"),
	}

	var out []pipeline.ChangeInfo
	for {
		mrs, resp, err := g.gl.MergeRequests.ListProjectMergeRequests(project, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, classifyGitLabError(err)
		}

		for _, mr := range mrs {
			out = append(out, mergeRequestToChange(project, mr))
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if out == nil {
		out = []pipeline.ChangeInfo{}
	}
	return out, nil
}

func mergeRequestToChange(project string, mr *gitlab.MergeRequest) pipeline.ChangeInfo {
	info := pipeline.ChangeInfo{
		Number:      int64(mr.IID),
		Subject:     mr.Title,
		Status:      gitlabState(mr.State),
		Branch:      mr.TargetBranch,
		ProjectName: project,
	}
	if mr.Author != nil {
		info.OwnerName = mr.Author.Name
		if info.OwnerName == "" {
			info.OwnerName = mr.Author.Username
		}
	}
	return info
}

func gitlabState(state string) pipeline.ChangeStatus {
	switch state {
	case "merged":
		return pipeline.ChangeStatusMerged
	case "closed", "locked":
		return pipeline.ChangeStatusAbandoned
	default:
		return pipeline.ChangeStatusNew
	}
}

func classifyGitLabError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", pipeline.ErrUpstreamProtocol, err)
	}
	return fmt.Errorf("%w: %v", pipeline.ErrUpstreamUnavailable, err)
}
