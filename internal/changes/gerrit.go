package changes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/stacklok/pipeline-tracker/internal/httpclient"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// gerritXSSIPrefix precedes every Gerrit JSON response
const gerritXSSIPrefix = ")]}'"

// GerritSource lists open changes through the Gerrit REST API
type GerritSource struct {
	baseURL string
	client  httpclient.Client
}

var _ Source = (*GerritSource)(nil)

// NewGerritSource creates a source for the Gerrit server at baseURL
func NewGerritSource(baseURL string, client httpclient.Client) (*GerritSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gerrit base URL is required")
	}
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	return &GerritSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}, nil
}

type gerritAccount struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type gerritChange struct {
	Number    int64          `json:"_number"`
	NumberAlt int64          `json:"number"`
	Subject   string         `json:"subject"`
	Status    string         `json:"status"`
	Branch    string         `json:"branch"`
	Project   string         `json:"project"`
	Owner     *gerritAccount `json:"owner"`
}

// ListOpenChanges queries /changes/?q=status:open project:{project}
func (g *GerritSource) ListOpenChanges(ctx context.Context, project string) ([]pipeline.ChangeInfo, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("status:open project:%s", project))
	query.Add("o", "DETAILED_ACCOUNTS")
	endpoint := fmt.Sprintf("%s/changes/?%s", g.baseURL, query.Encode())

	body, err := g.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrUpstreamUnavailable, err)
	}

	return parseGerritChanges(body, project)
}

func parseGerritChanges(body []byte, project string) ([]pipeline.ChangeInfo, error) {
	body = bytes.TrimPrefix(bytes.TrimSpace(body), []byte(gerritXSSIPrefix))

	var raw []gerritChange
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode gerrit changes: %v", pipeline.ErrUpstreamProtocol, err)
	}

	out := make([]pipeline.ChangeInfo, 0, len(raw))
	for i, c := range raw {
		number := c.Number
		if number == 0 {
			number = c.NumberAlt
		}
		if number <= 0 {
			return nil, fmt.Errorf("%w: change %d has no number", pipeline.ErrUpstreamProtocol, i)
		}

		status := pipeline.ChangeStatus(strings.ToUpper(c.Status))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: change %d has unknown status %q", pipeline.ErrUpstreamProtocol, number, c.Status)
		}

		projectName := c.Project
		if projectName == "" {
			projectName = project
		}

		info := pipeline.ChangeInfo{
			Number:      number,
			Subject:     c.Subject,
			Status:      status,
			Branch:      c.Branch,
			ProjectName: projectName,
		}
		if c.Owner != nil {
			info.OwnerName = c.Owner.Name
			if info.OwnerName == "" {
				info.OwnerName = c.Owner.Username
			}
		}
		out = append(out, info)
	}
	return out, nil
}
