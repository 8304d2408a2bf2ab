package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

// FakeGerrit serves /changes/ queries from a mutable change list
type FakeGerrit struct {
	*httptest.Server

	mu       sync.Mutex
	changes  map[string]map[int64]pipeline.ChangeInfo
	failing  bool
	requests int
}

// NewFakeGerrit starts a fake Gerrit server
func NewFakeGerrit() *FakeGerrit {
	g := &FakeGerrit{changes: map[string]map[int64]pipeline.ChangeInfo{}}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serveChanges))
	return g
}

// SetChange adds or replaces a change
func (g *FakeGerrit) SetChange(c pipeline.ChangeInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.changes[c.ProjectName] == nil {
		g.changes[c.ProjectName] = map[int64]pipeline.ChangeInfo{}
	}
	g.changes[c.ProjectName][c.Number] = c
}

// Merge marks a change as merged so it is no longer open
func (g *FakeGerrit) Merge(project string, number int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.changes[project][number]; ok {
		c.Status = pipeline.ChangeStatusMerged
		g.changes[project][number] = c
	}
}

// SetFailing makes every query answer 503
func (g *FakeGerrit) SetFailing(failing bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing = failing
}

// Requests returns the number of queries served
func (g *FakeGerrit) Requests() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests
}

type gerritChange struct {
	Number  int64  `json:"_number"`
	Subject string `json:"subject"`
	Status  string `json:"status"`
	Branch  string `json:"branch"`
	Project string `json:"project"`
	Owner   struct {
		Name string `json:"name"`
	} `json:"owner"`
}

func (g *FakeGerrit) serveChanges(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests++

	if g.failing {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/changes") {
		http.NotFound(w, r)
		return
	}

	var project string
	for _, term := range strings.Fields(r.URL.Query().Get("q")) {
		if p, ok := strings.CutPrefix(term, "project:"); ok {
			project = p
		}
	}

	out := []gerritChange{}
	for _, c := range g.changes[project] {
		if c.Status != pipeline.ChangeStatusNew {
			continue
		}
		gc := gerritChange{
			Number:  c.Number,
			Subject: c.Subject,
			Status:  string(c.Status),
			Branch:  c.Branch,
			Project: c.ProjectName,
		}
		gc.Owner.Name = c.OwnerName
		out = append(out, gc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })

	body, err := json.Marshal(out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(")]}'\n"))
	_, _ = w.Write(body)
}

// FakeStageHost serves /status/{project}/{number} documents of the form
// {"state": "..."}; changes without a state answer 404.
type FakeStageHost struct {
	*httptest.Server

	mu     sync.Mutex
	states map[string]string
}

// NewFakeStageHost starts a fake stage host
func NewFakeStageHost() *FakeStageHost {
	h := &FakeStageHost{states: map[string]string{}}

	r := chi.NewRouter()
	r.Get("/status/{project}/{number}", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "project") + "/" + chi.URLParam(r, "number")
		h.mu.Lock()
		state, ok := h.states[key]
		h.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"state": state})
	})
	h.Server = httptest.NewServer(r)
	return h
}

// SetState sets the state reported for a change
func (h *FakeStageHost) SetState(project, number, state string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[project+"/"+number] = state
}
