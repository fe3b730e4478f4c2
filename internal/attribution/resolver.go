package attribution

import (
	"context"
	"log/slog"
	"sort"

	"github.com/hack4good/ideadex/internal/github"
	"github.com/hack4good/ideadex/internal/gitlog"
	"github.com/hack4good/ideadex/internal/models"
)

// CommitAPI is the slice of the GitHub client the resolver needs.
type CommitAPI interface {
	PullsForCommit(ctx context.Context, sha string) ([]github.PullRequest, error)
	Commit(ctx context.Context, sha string) (*github.Commit, error)
}

// Source resolves the attribution for a proposal file path.
type Source interface {
	Resolve(ctx context.Context, sourcePath string) *models.Attribution
}

// strategy tries one way of turning a commit into an attribution. A nil
// result means "try the next one"; errors never cross this boundary.
type strategy func(ctx context.Context, sha string) *models.Attribution

// Resolver finds the author of the commit that introduced a file, preferring
// the author of the earliest pull request containing that commit.
type Resolver struct {
	history    gitlog.History
	api        CommitAPI
	logger     *slog.Logger
	strategies []strategy
}

// NewResolver builds a resolver over local git history and the GitHub API.
// api may be nil when no repository is configured; resolution then always
// returns nil and callers fall back to the Unknown placeholder.
func NewResolver(history gitlog.History, api CommitAPI, logger *slog.Logger) *Resolver {
	r := &Resolver{history: history, api: api, logger: logger}
	r.strategies = []strategy{r.fromPullRequest, r.fromLinkedAccount, r.fromRawAuthor}
	return r
}

// Resolve is best-effort and never returns an error: transient failures at
// any step fall through to the next strategy, and the terminal fallback
// is nil.
func (r *Resolver) Resolve(ctx context.Context, sourcePath string) *models.Attribution {
	sha, err := r.history.FirstAddedCommit(ctx, sourcePath)
	if err != nil {
		r.logger.Debug("attribution: history unavailable",
			slog.String("path", sourcePath), slog.String("error", err.Error()))
		return nil
	}
	if sha == "" || r.api == nil {
		return nil
	}

	for _, try := range r.strategies {
		if attr := try(ctx, sha); attr != nil {
			return attr
		}
	}
	return nil
}

// fromPullRequest attributes the file to the author of the earliest pull
// request containing the introducing commit.
func (r *Resolver) fromPullRequest(ctx context.Context, sha string) *models.Attribution {
	pulls, err := r.api.PullsForCommit(ctx, sha)
	if err != nil {
		r.logger.Debug("attribution: pull lookup failed",
			slog.String("sha", sha), slog.String("error", err.Error()))
		return nil
	}
	if len(pulls) == 0 {
		return nil
	}
	sort.Slice(pulls, func(i, j int) bool { return pulls[i].CreatedAt.Before(pulls[j].CreatedAt) })
	u := pulls[0].User
	if u == nil || u.Login == "" {
		return nil
	}
	return &models.Attribution{Login: u.Login, AvatarURL: u.AvatarURL, ProfileURL: u.HTMLURL}
}

// fromLinkedAccount attributes the file to the GitHub account linked to the
// commit, when GitHub could match one.
func (r *Resolver) fromLinkedAccount(ctx context.Context, sha string) *models.Attribution {
	commit, err := r.api.Commit(ctx, sha)
	if err != nil {
		r.logger.Debug("attribution: commit lookup failed",
			slog.String("sha", sha), slog.String("error", err.Error()))
		return nil
	}
	if commit.Author == nil || commit.Author.Login == "" {
		return nil
	}
	return &models.Attribution{
		Login:      commit.Author.Login,
		AvatarURL:  commit.Author.AvatarURL,
		ProfileURL: commit.Author.HTMLURL,
	}
}

// fromRawAuthor falls back to the free-text author name or email recorded on
// the commit itself.
func (r *Resolver) fromRawAuthor(ctx context.Context, sha string) *models.Attribution {
	commit, err := r.api.Commit(ctx, sha)
	if err != nil {
		return nil
	}
	name := commit.Commit.Author.Name
	if name == "" {
		name = commit.Commit.Author.Email
	}
	if name == "" {
		return nil
	}
	return &models.Attribution{Login: name}
}
