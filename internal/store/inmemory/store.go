// Package inmemory provides a process-local Store for development and tests.
package inmemory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
	"github.com/stacklok/pipeline-tracker/internal/store"
)

// Store keeps records in a map guarded by a mutex
type Store struct {
	mu       sync.RWMutex
	records  map[pipeline.ChangeKey]store.Record
	statuses status.StatusPersistence
	now      func() time.Time
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Pruner = (*Store)(nil)
)

// Option configures a Store
type Option func(*Store)

// WithStatusPersistence stores project sync status through p instead of in memory
func WithStatusPersistence(p status.StatusPersistence) Option {
	return func(s *Store) {
		s.statuses = p
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[pipeline.ChangeKey]store.Record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.statuses == nil {
		s.statuses = newStatusMap()
	}
	return s
}

// Upsert stores a copy of the snapshot
func (s *Store) Upsert(_ context.Context, st pipeline.ChangePipelineStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := st.Change.Key()
	now := s.now()

	rec, ok := s.records[key]
	if !ok {
		rec = store.Record{ID: uuid.New(), CreatedAt: now}
	}
	rec.Change = st.Change
	rec.Stages = slices.Clone(st.Stages)
	if rec.Stages == nil {
		rec.Stages = []pipeline.StageState{}
	}
	rec.UpdatedAt = now

	s.records[key] = rec
	return nil
}

// GetByProject returns copies of the project's records ordered by change number
func (s *Store) GetByProject(_ context.Context, projectName string) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Record, 0)
	for key, rec := range s.records {
		if key.ProjectName != projectName {
			continue
		}
		rec.Stages = slices.Clone(rec.Stages)
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b store.Record) int {
		return cmp.Compare(a.Change.Number, b.Change.Number)
	})
	return out, nil
}

// PruneProject deletes the project's records whose number is not in keep
func (s *Store) PruneProject(_ context.Context, projectName string, keep []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key := range s.records {
		if key.ProjectName == projectName && !slices.Contains(keep, key.Number) {
			delete(s.records, key)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds
func (*Store) Ping(_ context.Context) error {
	return nil
}

// SaveStatus saves the sync status of a project
func (s *Store) SaveStatus(ctx context.Context, projectName string, st *status.ProjectSyncStatus) error {
	return s.statuses.SaveStatus(ctx, projectName, st)
}

// LoadStatus loads the sync status of a project
func (s *Store) LoadStatus(ctx context.Context, projectName string) (*status.ProjectSyncStatus, error) {
	return s.statuses.LoadStatus(ctx, projectName)
}

// LoadAllStatus loads sync status for all projects
func (s *Store) LoadAllStatus(ctx context.Context) (map[string]*status.ProjectSyncStatus, error) {
	return s.statuses.LoadAllStatus(ctx)
}

// statusMap keeps sync status in memory
type statusMap struct {
	mu       sync.RWMutex
	statuses map[string]status.ProjectSyncStatus
}

func newStatusMap() *statusMap {
	return &statusMap{statuses: make(map[string]status.ProjectSyncStatus)}
}

func (m *statusMap) SaveStatus(_ context.Context, projectName string, st *status.ProjectSyncStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[projectName] = *st
	return nil
}

func (m *statusMap) LoadStatus(_ context.Context, projectName string) (*status.ProjectSyncStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.statuses[projectName]
	return &st, nil
}

func (m *statusMap) LoadAllStatus(_ context.Context) (map[string]*status.ProjectSyncStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*status.ProjectSyncStatus, len(m.statuses))
	for name, st := range m.statuses {
		out[name] = &st
	}
	return out, nil
}
