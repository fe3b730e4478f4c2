package gitlog

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initTestRepo creates a throwaway git repository with one committed file.
// Tests are skipped when the git binary is unavailable.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=tester", "GIT_AUTHOR_EMAIL=t@example.com",
			"GIT_COMMITTER_NAME=tester", "GIT_COMMITTER_EMAIL=t@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	if err := os.MkdirAll(filepath.Join(dir, "update"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "update", "a.xml"), []byte("<a/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "add proposal")
	return dir
}

func TestFirstAddedCommit(t *testing.T) {
	dir := initTestRepo(t)
	repo := NewRepo(dir)

	sha, err := repo.FirstAddedCommit(context.Background(), "update/a.xml")
	if err != nil {
		t.Fatalf("FirstAddedCommit: %v", err)
	}
	if len(sha) != 40 {
		t.Errorf("sha = %q, want 40-char hash", sha)
	}
}

func TestFirstAddedCommit_UnknownPath(t *testing.T) {
	dir := initTestRepo(t)
	repo := NewRepo(dir)

	sha, err := repo.FirstAddedCommit(context.Background(), "update/missing.xml")
	if err != nil {
		t.Fatalf("FirstAddedCommit: %v", err)
	}
	if sha != "" {
		t.Errorf("sha = %q, want empty", sha)
	}
}

func TestIsRepository(t *testing.T) {
	dir := initTestRepo(t)
	if !IsRepository(dir) {
		t.Error("expected repository")
	}
	if IsRepository(t.TempDir()) {
		t.Error("plain temp dir should not be a repository")
	}
}
