package fetch

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
)

// RepoRevision returns the HEAD commit hash of a cloned repository.
// Weight repos keep their .git directory after cloning, so the revision
// serves as provenance for what was actually downloaded.
func RepoRevision(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
