package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL(srv.URL, "acme/hack4good-ideas", token)
}

func TestPullsForCommit(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/hack4good-ideas/commits/abc123/pulls" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("accept = %q", got)
		}
		io.WriteString(w, `[{"number": 7, "created_at": "2025-09-01T12:00:00Z", "user": {"login": "alice", "html_url": "https://github.com/alice"}}]`)
	}, "")

	pulls, err := c.PullsForCommit(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("PullsForCommit: %v", err)
	}
	if len(pulls) != 1 || pulls[0].User.Login != "alice" {
		t.Errorf("pulls = %+v", pulls)
	}
}

func TestCommit_BearerToken(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		io.WriteString(w, `{"sha": "abc123", "author": {"login": "bob"}, "commit": {"author": {"name": "Bob B", "email": "bob@example.com"}}}`)
	}, "secret")

	commit, err := c.Commit(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if commit.Author == nil || commit.Author.Login != "bob" {
		t.Errorf("author = %+v", commit.Author)
	}
	if commit.Commit.Author.Name != "Bob B" {
		t.Errorf("raw author = %q", commit.Commit.Author.Name)
	}
}

func TestContributors_EmptyOnFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, "")

	if got := c.Contributors(context.Background()); len(got) != 0 {
		t.Errorf("contributors = %+v, want empty", got)
	}
}

func TestCreateIssueComment(t *testing.T) {
	var body map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/repos/acme/hack4good-ideas/issues/42/comments" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}, "")

	if err := c.CreateIssueComment(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("CreateIssueComment: %v", err)
	}
	if body["body"] != "hello" {
		t.Errorf("comment body = %q", body["body"])
	}
}

func TestCreateIssueComment_Non201(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "")
	if err := c.CreateIssueComment(context.Background(), 1, "x"); err == nil {
		t.Error("expected error on 401")
	}
}
