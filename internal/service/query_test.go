package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/pipeline-tracker/internal/catalog"
	catalogmocks "github.com/stacklok/pipeline-tracker/internal/catalog/mocks"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
	"github.com/stacklok/pipeline-tracker/internal/status"
	"github.com/stacklok/pipeline-tracker/internal/store/inmemory"
	storemocks "github.com/stacklok/pipeline-tracker/internal/store/mocks"
)

var (
	demoRef  = catalog.NewEntityRef("Component", "", "demo")
	testTime = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
)

func demoEntity(annotated bool) *catalog.Entity {
	e := &catalog.Entity{
		Kind:     "Component",
		Metadata: catalog.EntityMetadata{Name: "demo", Namespace: catalog.DefaultNamespace},
	}
	if annotated {
		e.Metadata.Annotations = map[string]string{catalog.ProjectAnnotation: "demo"}
	}
	return e
}

func stageStates(statuses ...pipeline.StatusType) []pipeline.StageState {
	names := []string{"build", "verify", "deploy"}
	types := []pipeline.StageType{pipeline.StageTypeJenkins, pipeline.StageTypeGerrit, pipeline.StageTypeSpinnaker}
	out := make([]pipeline.StageState, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, pipeline.StageState{
			Stage:  pipeline.Stage{Type: types[i], Name: names[i], Host: "https://ci.example.com"},
			Status: pipeline.Status(s),
		})
	}
	return out
}

func TestGetHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := inmemory.New()
	change := func(n int64) pipeline.ChangeInfo {
		return pipeline.ChangeInfo{Number: n, Subject: "Subject", Status: pipeline.ChangeStatusNew, ProjectName: "demo"}
	}
	require.NoError(t, st.Upsert(ctx, pipeline.NewChangePipelineStatus(change(1757),
		stageStates(pipeline.StatusPassed, pipeline.StatusUnEntered, pipeline.StatusFailed))))
	require.NoError(t, st.Upsert(ctx, pipeline.NewChangePipelineStatus(change(1756),
		stageStates(pipeline.StatusEnqueued, pipeline.StatusRunning, pipeline.StatusPassed))))
	require.NoError(t, st.Upsert(ctx, pipeline.NewChangePipelineStatus(
		pipeline.ChangeInfo{Number: 1, ProjectName: "other"}, nil)))

	ctrl := gomock.NewController(t)
	cat := catalogmocks.NewMockCatalog(ctrl)
	cat.EXPECT().GetEntityByRef(gomock.Any(), demoRef).Return(demoEntity(true), nil)

	history, err := New(cat, st).GetHistory(ctx, demoRef)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, int64(1756), history[0].Change.Number)
	require.NotNil(t, history[0].Current)
	assert.Equal(t, "deploy", history[0].Current.Stage.Name)

	// Collapse stops at the first un-entered stage after the first one
	assert.Equal(t, int64(1757), history[1].Change.Number)
	require.NotNil(t, history[1].Current)
	assert.Equal(t, "build", history[1].Current.Stage.Name)
}

func TestGetHistory_NoStages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := inmemory.New()
	require.NoError(t, st.Upsert(ctx, pipeline.NewChangePipelineStatus(
		pipeline.ChangeInfo{Number: 1, ProjectName: "demo"}, nil)))

	ctrl := gomock.NewController(t)
	cat := catalogmocks.NewMockCatalog(ctrl)
	cat.EXPECT().GetEntityByRef(gomock.Any(), demoRef).Return(demoEntity(true), nil)

	history, err := New(cat, st).GetHistory(ctx, demoRef)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].Current)
	assert.NotNil(t, history[0].Stages)
	assert.Empty(t, history[0].Stages)
}

func TestGetHistory_EntityWithoutProject(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cat := catalogmocks.NewMockCatalog(ctrl)
	cat.EXPECT().GetEntityByRef(gomock.Any(), demoRef).Return(demoEntity(false), nil)

	// No expectations: the store must not be touched
	st := storemocks.NewMockStore(ctrl)

	history, err := New(cat, st).GetHistory(context.Background(), demoRef)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestGetHistory_Errors(t *testing.T) {
	t.Parallel()

	t.Run("entity not found", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cat := catalogmocks.NewMockCatalog(ctrl)
		cat.EXPECT().GetEntityByRef(gomock.Any(), demoRef).
			Return(nil, fmt.Errorf("%w: %s", pipeline.ErrEntityNotFound, demoRef))

		_, err := New(cat, storemocks.NewMockStore(ctrl)).GetHistory(context.Background(), demoRef)
		require.ErrorIs(t, err, pipeline.ErrEntityNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		cat := catalogmocks.NewMockCatalog(ctrl)
		cat.EXPECT().GetEntityByRef(gomock.Any(), demoRef).Return(demoEntity(true), nil)
		st := storemocks.NewMockStore(ctrl)
		st.EXPECT().GetByProject(gomock.Any(), "demo").Return(nil, errors.New("connection reset"))

		_, err := New(cat, st).GetHistory(context.Background(), demoRef)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NotErrorIs(t, err, pipeline.ErrEntityNotFound)
	})
}

func TestSyncStatuses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := inmemory.New()
	synced := &status.ProjectSyncStatus{}
	synced.MarkComplete(testTime, 3)
	require.NoError(t, st.SaveStatus(ctx, "demo", synced))

	svc := New(catalogmocks.NewMockCatalog(gomock.NewController(t)), st)

	all, err := svc.ListSyncStatuses(ctx)
	require.NoError(t, err)
	require.Contains(t, all, "demo")
	assert.Equal(t, 3, all["demo"].ChangeCount)

	got, err := svc.GetSyncStatus(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseComplete, got.Phase)

	_, err = svc.GetSyncStatus(ctx, "unknown")
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestCheckReadiness(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := storemocks.NewMockStore(ctrl)
	st.EXPECT().Ping(gomock.Any()).Return(nil)
	st.EXPECT().Ping(gomock.Any()).Return(errors.New("pool closed"))

	svc := New(catalogmocks.NewMockCatalog(ctrl), st)
	require.NoError(t, svc.CheckReadiness(context.Background()))

	err := svc.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool closed")
}
