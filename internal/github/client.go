// Package github is a minimal REST client for the handful of GitHub
// endpoints the attribution and reporting pipeline needs.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptHeader   = "application/vnd.github+json"
	apiVersion     = "2022-11-28"
	userAgent      = "ideadex"
)

// User is a GitHub account reference.
type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// PullRequest is a collaborative-review request associated with a commit.
type PullRequest struct {
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user"`
}

// Commit carries the commit metadata relevant to attribution: the linked
// account (when GitHub could match one) and the raw recorded author.
type Commit struct {
	SHA    string `json:"sha"`
	Author *User  `json:"author"`
	Commit struct {
		Author struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// Contributor is one entry of the repository contributors listing.
type Contributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Contributions int    `json:"contributions"`
}

// Client talks to the GitHub REST API for a single owner/repo.
// An empty token means unauthenticated calls (lower rate limits).
type Client struct {
	http    *http.Client
	baseURL string
	repo    string // "owner/repo"
	token   string
}

// New creates a client scoped to repo ("owner/repo").
func New(repo, token string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		repo:    repo,
		token:   token,
	}
}

// NewWithBaseURL is like New but targets a custom API endpoint (tests).
func NewWithBaseURL(baseURL, repo, token string) *Client {
	c := New(repo, token)
	c.baseURL = baseURL
	return c
}

// Repo returns the "owner/repo" identifier this client is scoped to.
func (c *Client) Repo() string { return c.repo }

// PullsForCommit lists the pull requests that contain the given commit.
func (c *Client) PullsForCommit(ctx context.Context, sha string) ([]PullRequest, error) {
	var pulls []PullRequest
	err := c.get(ctx, fmt.Sprintf("/repos/%s/commits/%s/pulls", c.repo, sha), &pulls)
	if err != nil {
		return nil, err
	}
	return pulls, nil
}

// Commit fetches a single commit's metadata.
func (c *Client) Commit(ctx context.Context, sha string) (*Commit, error) {
	var commit Commit
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/commits/%s", c.repo, sha), &commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

// Contributors lists repository contributors. Best-effort: any failure
// yields an empty list and a nil error.
func (c *Client) Contributors(ctx context.Context) []Contributor {
	var out []Contributor
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/contributors", c.repo), &out); err != nil {
		return nil
	}
	return out
}

// CreateIssueComment posts a comment on an issue or pull request.
func (c *Client) CreateIssueComment(ctx context.Context, number int, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("github: marshal comment: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/issues/%d/comments", c.repo, number), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: post comment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("github: post comment: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github: get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("github: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}
