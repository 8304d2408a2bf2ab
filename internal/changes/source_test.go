package changes_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/pipeline-tracker/internal/catalog"
	"github.com/stacklok/pipeline-tracker/internal/changes"
	"github.com/stacklok/pipeline-tracker/internal/changes/mocks"
	"github.com/stacklok/pipeline-tracker/internal/pipeline"
)

func TestForEntity(t *testing.T) {
	t.Parallel()

	annotated := &catalog.Entity{
		Kind: "Component",
		Metadata: catalog.EntityMetadata{
			Name:        "demo",
			Annotations: map[string]string{catalog.ProjectAnnotation: "demo"},
		},
	}
	bare := &catalog.Entity{Kind: "Component", Metadata: catalog.EntityMetadata{Name: "docs"}}

	t.Run("annotated entity queries its project", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		src := mocks.NewMockSource(ctrl)
		src.EXPECT().ListOpenChanges(gomock.Any(), "demo").Return(changes.DemoChanges(), nil)

		got, err := changes.ForEntity(context.Background(), src, annotated)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("entity without annotation does not contact the source", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		src := mocks.NewMockSource(ctrl)
		src.EXPECT().ListOpenChanges(gomock.Any(), gomock.Any()).Times(0)

		got, err := changes.ForEntity(context.Background(), src, bare)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("source errors are returned", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		src := mocks.NewMockSource(ctrl)
		src.EXPECT().ListOpenChanges(gomock.Any(), "demo").
			Return(nil, errors.Join(pipeline.ErrUpstreamUnavailable, errors.New("timeout")))

		_, err := changes.ForEntity(context.Background(), src, annotated)
		require.ErrorIs(t, err, pipeline.ErrUpstreamUnavailable)
	})
}

func TestStaticSource(t *testing.T) {
	t.Parallel()

	list := append(changes.DemoChanges(),
		pipeline.ChangeInfo{Number: 1, Subject: "merged", Status: pipeline.ChangeStatusMerged, ProjectName: "demo"},
		pipeline.ChangeInfo{Number: 2, Subject: "any project", Status: pipeline.ChangeStatusNew},
		pipeline.ChangeInfo{Number: 3, Subject: "other", Status: pipeline.ChangeStatusNew, ProjectName: "other"},
	)
	src := changes.NewStaticSource(list)

	demo, err := src.ListOpenChanges(context.Background(), "demo")
	require.NoError(t, err)
	numbers := make([]int64, 0, len(demo))
	for _, c := range demo {
		numbers = append(numbers, c.Number)
		assert.Equal(t, "demo", c.ProjectName)
	}
	assert.Equal(t, []int64{1756, 1757, 2}, numbers)

	none, err := changes.NewStaticSource(nil).ListOpenChanges(context.Background(), "demo")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
