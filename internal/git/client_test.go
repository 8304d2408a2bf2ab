package git

import (
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entitiesFile = "catalog/entities.yaml"

func TestNewDefaultGitClient(t *testing.T) {
	t.Parallel()

	client := NewDefaultGitClient()
	require.NotNil(t, client)
	_, ok := client.(*defaultGitClient)
	assert.True(t, ok)
}

func TestDefaultGitClient_Clone_Errors(t *testing.T) {
	t.Parallel()

	client := NewDefaultGitClient()

	_, err := client.Clone(t.Context(), nil)
	require.Error(t, err)

	_, err = client.Clone(t.Context(), &CloneConfig{})
	require.Error(t, err)

	repoInfo, err := client.Clone(t.Context(), &CloneConfig{URL: t.TempDir()})
	require.Error(t, err)
	assert.Nil(t, repoInfo)
}

func TestDefaultGitClient_FullWorkflow(t *testing.T) {
	t.Parallel()

	content := "kind: Component\nmetadata:\n  name: demo\n"
	repoDir, hash := CreateTestRepo(t, TestRepoConfig{
		Files: map[string]string{entitiesFile: content},
	})

	client := NewDefaultGitClient()
	repoInfo, err := client.Clone(t.Context(), &CloneConfig{URL: repoDir})
	require.NoError(t, err)
	require.NotNil(t, repoInfo.Repository)
	assert.Equal(t, repoDir, repoInfo.RemoteURL)
	assert.Equal(t, hash.String(), repoInfo.CommitHash)

	got, err := client.GetFileContent(repoInfo, entitiesFile)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	_, err = client.GetFileContent(repoInfo, "missing.yaml")
	require.Error(t, err)

	require.NoError(t, client.Cleanup(t.Context(), repoInfo))
	assert.Nil(t, repoInfo.Repository)

	_, err = client.GetFileContent(repoInfo, entitiesFile)
	require.Error(t, err)
}

func TestDefaultGitClient_CloneCommit(t *testing.T) {
	t.Parallel()

	repoDir, first := CreateTestRepo(t, TestRepoConfig{
		Files: map[string]string{entitiesFile: "first"},
	})
	repo, err := git.PlainOpen(repoDir)
	require.NoError(t, err)
	second := CommitFiles(t, repo, repoDir, map[string]string{entitiesFile: "second"}, "Update entities")

	client := NewDefaultGitClient()

	latest, err := client.Clone(t.Context(), &CloneConfig{URL: repoDir})
	require.NoError(t, err)
	assert.Equal(t, second.String(), latest.CommitHash)
	got, err := client.GetFileContent(latest, entitiesFile)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	pinned, err := client.Clone(t.Context(), &CloneConfig{URL: repoDir, Commit: first.String()})
	require.NoError(t, err)
	assert.Equal(t, first.String(), pinned.CommitHash)
	assert.Empty(t, pinned.Branch)
	got, err = client.GetFileContent(pinned, entitiesFile)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestDefaultGitClient_Cleanup_Nil(t *testing.T) {
	t.Parallel()

	client := NewDefaultGitClient()
	require.Error(t, client.Cleanup(t.Context(), nil))
	require.Error(t, client.Cleanup(t.Context(), &RepositoryInfo{}))
}
