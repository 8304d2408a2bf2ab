// Package git clones repositories into memory and reads files from them.
//
// It backs the git catalog: entity descriptors kept in a repository are read
// from a shallow, in-memory clone of the configured branch, tag or commit.
//
//	client := git.NewDefaultGitClient()
//	repoInfo, err := client.Clone(ctx, &git.CloneConfig{URL: url, Branch: "main"})
//	if err != nil {
//	    return err
//	}
//	defer client.Cleanup(ctx, repoInfo)
//
//	content, err := client.GetFileContent(repoInfo, "catalog/entities.yaml")
package git
