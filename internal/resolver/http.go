package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/stacklok/pipeline-tracker/internal/httpclient"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// DefaultStateField is the gjson path read when none is configured
const DefaultStateField = "status"

// HTTPResolver reads a stage status document from the stage host.
//
// The request URL is stage.Host followed by the status path with {project},
// {number}, {branch} and {stage} replaced. A 404 means the change has not
// entered the stage. The state is read from the JSON body at the configured
// gjson path and mapped through the state table; values that already are
// status tags are accepted as-is.
type HTTPResolver struct {
	client     httpclient.Client
	statusPath string
	stateField string
	states     map[string]pipeline.StatusType
}

var _ Resolver = (*HTTPResolver)(nil)

// NewHTTPResolver creates a resolver probing statusPath on each stage host
func NewHTTPResolver(
	client httpclient.Client, statusPath, stateField string, states map[string]pipeline.StatusType,
) (*HTTPResolver, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if statusPath == "" {
		return nil, fmt.Errorf("status path is required")
	}
	if stateField == "" {
		stateField = DefaultStateField
	}
	normalized := make(map[string]pipeline.StatusType, len(states))
	for k, v := range states {
		normalized[strings.ToUpper(k)] = v
	}
	return &HTTPResolver{
		client:     client,
		statusPath: statusPath,
		stateField: stateField,
		states:     normalized,
	}, nil
}

// Resolve fetches and interprets the stage status document for change
func (h *HTTPResolver) Resolve(
	ctx context.Context, stage pipeline.Stage, change pipeline.ChangeInfo,
) (pipeline.StageStatus, error) {
	if stage.Host == "" {
		return pipeline.StageStatus{}, fmt.Errorf("stage %q has no host", stage.Name)
	}
	endpoint := strings.TrimSuffix(stage.Host, "/") + h.expandPath(stage, change)

	body, err := h.client.Get(ctx, endpoint)
	if httpclient.IsNotFound(err) {
		return pipeline.Status(pipeline.StatusUnEntered), nil
	}
	if err != nil {
		return pipeline.StageStatus{}, fmt.Errorf("%w: stage %s: %v", pipeline.ErrUpstreamUnavailable, stage.Name, err)
	}

	if !gjson.ValidBytes(body) {
		return pipeline.StageStatus{}, fmt.Errorf("%w: stage %s returned invalid JSON", pipeline.ErrUpstreamProtocol, stage.Name)
	}
	state := gjson.GetBytes(body, h.stateField)
	if !state.Exists() {
		return pipeline.StageStatus{}, fmt.Errorf("%w: stage %s response has no %q field",
			pipeline.ErrUpstreamProtocol, stage.Name, h.stateField)
	}

	status, ok := h.mapState(state.String())
	if !ok {
		return pipeline.StageStatus{}, fmt.Errorf("%w: stage %s reported unknown state %q",
			pipeline.ErrUpstreamProtocol, stage.Name, state.String())
	}
	return pipeline.Status(status), nil
}

func (h *HTTPResolver) mapState(state string) (pipeline.StatusType, bool) {
	if mapped, ok := h.states[strings.ToUpper(state)]; ok {
		return mapped, true
	}
	if direct := pipeline.StatusType(strings.ToLower(state)); direct.Valid() {
		return direct, true
	}
	return "", false
}

func (h *HTTPResolver) expandPath(stage pipeline.Stage, change pipeline.ChangeInfo) string {
	r := strings.NewReplacer(
		"{project}", url.PathEscape(change.ProjectName),
		"{number}", strconv.FormatInt(change.Number, 10),
		"{branch}", url.PathEscape(change.Branch),
		"{stage}", url.PathEscape(stage.Name),
	)
	path := r.Replace(h.statusPath)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
