package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    EntityRef
		wantErr bool
	}{
		{
			name:  "kind and name with slash",
			input: "component/demo",
			want:  EntityRef{Kind: "component", Namespace: "default", Name: "demo"},
		},
		{
			name:  "kind and name with colon",
			input: "Component:demo",
			want:  EntityRef{Kind: "component", Namespace: "default", Name: "demo"},
		},
		{
			name:  "full reference",
			input: "component:platform/docs",
			want:  EntityRef{Kind: "component", Namespace: "platform", Name: "docs"},
		},
		{
			name:  "full reference with slashes",
			input: "system/platform/payments",
			want:  EntityRef{Kind: "system", Namespace: "platform", Name: "payments"},
		},
		{name: "missing kind", input: "demo", wantErr: true},
		{name: "empty kind", input: ":demo", wantErr: true},
		{name: "empty name", input: "component/", wantErr: true},
		{name: "too many segments", input: "component/a/b/c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ref, err := ParseEntityRef(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestEntityRef_EqualAndString(t *testing.T) {
	t.Parallel()

	a := EntityRef{Kind: "Component", Name: "demo"}
	b := NewEntityRef("component", "default", "demo")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewEntityRef("component", "other", "demo")))
	assert.Equal(t, "component:default/demo", b.String())
}

func TestFilter_Matches(t *testing.T) {
	t.Parallel()

	withStages, err := DecodeEntity([]byte(demoEntityYAML))
	require.NoError(t, err)
	withoutStages, err := DecodeEntity([]byte(noStagesEntityYAML))
	require.NoError(t, err)

	assert.True(t, Filter{}.Matches(withoutStages))
	assert.False(t, Filter{WithStages: true}.Matches(withoutStages))
	assert.True(t, Filter{WithStages: true, Kind: "component"}.Matches(withStages))
	assert.False(t, Filter{Kind: "system"}.Matches(withStages))
}

func TestEntity_ProjectName(t *testing.T) {
	t.Parallel()

	e, err := DecodeEntity([]byte(demoEntityYAML))
	require.NoError(t, err)
	project, ok := e.ProjectName()
	assert.True(t, ok)
	assert.Equal(t, "demo", project)

	e.Metadata.Annotations[ProjectAnnotation] = ""
	_, ok = e.ProjectName()
	assert.False(t, ok)

	e.Metadata.Annotations = nil
	_, ok = e.ProjectName()
	assert.False(t, ok)
}
