package git

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spinode/spinode/internal/catalog"
	"github.com/spinode/spinode/internal/config"
	"github.com/spinode/spinode/internal/storage"
)

// ErrNotGitRepo indicates the directory is not a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// ErrCommitNotFound indicates the specified commit does not exist.
var ErrCommitNotFound = errors.New("commit not found")

// FindRepoRoot finds the root of the git repository containing the given path.
func FindRepoRoot(path string) (string, error) {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", ErrNotGitRepo
	}
	return strings.TrimSpace(string(output)), nil
}

// ValidateCommit resolves a commit reference (SHA, HEAD~N, branch, tag) to a
// full SHA.
func ValidateCommit(gitRoot, commitRef string) (string, error) {
	cmd := exec.Command("git", "-C", gitRoot, "rev-parse", "--verify", commitRef+"^{commit}")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommitNotFound, commitRef)
	}
	return strings.TrimSpace(string(output)), nil
}

// classesPathInGit returns classes.jsonl relative to the git root, with
// forward slashes as git expects.
func classesPathInGit(gitRoot, repoRoot string) (string, error) {
	rel, err := filepath.Rel(gitRoot, config.ClassesPath(repoRoot))
	if err != nil {
		return "", fmt.Errorf("locating classes file in git tree: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// ClassesAtCommit returns the catalog as recorded at commitRef. A file that
// did not exist at that commit yields an empty catalog.
func ClassesAtCommit(gitRoot, repoRoot, commitRef string) ([]catalog.Class, error) {
	sha, err := ValidateCommit(gitRoot, commitRef)
	if err != nil {
		return nil, err
	}
	rel, err := classesPathInGit(gitRoot, repoRoot)
	if err != nil {
		return nil, err
	}

	output, err := exec.Command("git", "-C", gitRoot, "show", sha+":"+rel).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return []catalog.Class{}, nil
		}
		return nil, fmt.Errorf("reading classes at %s: %w", commitRef, err)
	}

	// Reuse the JSONL reader through a temp file so parsing rules stay identical.
	tmp, err := os.CreateTemp("", "spinode-classes-*.jsonl")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(output); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return storage.ReadClasses(tmp.Name())
}
