// Package gitlog answers history questions by shelling out to git.
//
// Every lookup degrades gracefully: a missing git binary, a shallow clone,
// or a path with no history all yield empty results rather than errors that
// would abort a run.
package gitlog

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// History locates the change that introduced a file.
type History interface {
	// FirstAddedCommit returns the oldest commit that added relPath, or an
	// empty string when history is unavailable.
	FirstAddedCommit(ctx context.Context, relPath string) (string, error)
}

// Repo is a History backed by a local git checkout.
type Repo struct {
	root string
}

// NewRepo returns a Repo rooted at dir. It does not verify that dir is a
// git repository; use IsRepository for that.
func NewRepo(dir string) *Repo {
	return &Repo{root: dir}
}

// FirstAddedCommit finds the oldest "added" event for relPath.
func (r *Repo) FirstAddedCommit(ctx context.Context, relPath string) (string, error) {
	out, err := r.git(ctx, "log", "--diff-filter=A", "--follow", "--format=%H", "--reverse", "--", relPath)
	if err != nil {
		return "", err
	}
	lines := strings.Fields(out)
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], nil
}

// IsRepository checks whether dir is inside a git work tree.
func IsRepository(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// RepoRoot finds the git repository root from the given directory.
func RepoRoot(startPath string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = startPath
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("gitlog: find repo root: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("gitlog: git %s: %w", args[0], err)
	}
	return string(out), nil
}
