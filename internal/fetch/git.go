package fetch

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CloneOptions control how a repository is cloned.
type CloneOptions struct {
	Branch  string
	Depth   int
	SkipLFS bool
}

// GitCloner mirrors model repositories with git, pulling large files
// through Git LFS when the repository uses it.
type GitCloner struct {
	opts CloneOptions
}

// NewGitCloner creates a GitCloner with the given options.
func NewGitCloner(opts CloneOptions) *GitCloner {
	return &GitCloner{opts: opts}
}

// Clone clones gitURL into targetPath. The target directory is removed
// again if the clone fails partway.
func (g *GitCloner) Clone(gitURL, targetPath string) error {
	args := []string{"clone"}

	// Add depth flag if specified
	if g.opts.Depth > 0 {
		args = append(args, "--depth", fmt.Sprintf("%d", g.opts.Depth))
	}

	// Add branch flag
	if g.opts.Branch != "" {
		args = append(args, "--branch", g.opts.Branch)
	}

	args = append(args, gitURL, targetPath)

	// Execute git clone
	cmd := exec.Command("git", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if g.opts.SkipLFS {
		// Skip LFS downloads during the clone itself
		cmd.Env = append(os.Environ(), "GIT_LFS_SKIP_SMUDGE=1")
	}

	if err := cmd.Run(); err != nil {
		os.RemoveAll(targetPath)
		return fmt.Errorf("git clone failed: %w", err)
	}

	// If not skipping LFS, pull LFS files
	if !g.opts.SkipLFS && hasLFSFiles(targetPath) {
		fmt.Println("Downloading LFS files...")
		lfscmd := exec.Command("git", "lfs", "pull")
		lfscmd.Dir = targetPath
		lfscmd.Stdout = os.Stdout
		lfscmd.Stderr = os.Stderr

		if err := lfscmd.Run(); err != nil {
			// LFS might not be installed, warn but don't fail
			fmt.Printf("Warning: Failed to pull LFS files: %v\n", err)
			fmt.Println("You may need to install Git LFS to download large model files")
		}
	}

	return nil
}

// hasLFSFiles checks if a repository has LFS files
func hasLFSFiles(repoPath string) bool {
	// Check for .gitattributes file
	gitattributesPath := filepath.Join(repoPath, ".gitattributes")
	if data, err := os.ReadFile(gitattributesPath); err == nil {
		// Look for LFS patterns
		return strings.Contains(string(data), "filter=lfs")
	}
	return false
}
