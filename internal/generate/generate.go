// Package generate implements the README generation pipeline: discover
// proposal exports, parse them, resolve attribution, render the markdown
// block and inject it between the README markers.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hack4good/ideadex/internal/attribution"
	"github.com/hack4good/ideadex/internal/github"
	"github.com/hack4good/ideadex/internal/gitlog"
	"github.com/hack4good/ideadex/internal/inject"
	"github.com/hack4good/ideadex/internal/models"
	"github.com/hack4good/ideadex/internal/parser"
	"github.com/hack4good/ideadex/internal/render"
	"github.com/hack4good/ideadex/internal/storage"
)

// Options configures a pipeline run. Paths are relative to the store root.
type Options struct {
	ReadmePath string
	BackupPath string
	CachePath  string
	DryRun     bool
	PRNumber   int
}

// Pipeline runs the end-to-end README generation.
type Pipeline struct {
	store  *storage.FS
	gh     *github.Client // nil disables attribution and PR comments
	opts   Options
	logger *slog.Logger
	out    io.Writer
}

// New creates a Pipeline. A nil GitHub client disables network attribution
// and PR comments; cached attribution is still used.
func New(store *storage.FS, gh *github.Client, opts Options, logger *slog.Logger) *Pipeline {
	return &Pipeline{store: store, gh: gh, opts: opts, logger: logger, out: os.Stdout}
}

// SetOutput redirects dry-run output (used in tests).
func (p *Pipeline) SetOutput(w io.Writer) { p.out = w }

// Run executes one pipeline pass. Parse failures are logged and skipped;
// only discovery and README write errors abort the run.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	metas, err := p.store.ListProposals()
	if err != nil {
		return fmt.Errorf("generate: discover proposals: %w", err)
	}

	proposals := make([]models.Proposal, 0, len(metas))
	failures := 0
	for _, m := range metas {
		data, readErr := p.store.Read(m.Path)
		if readErr != nil {
			failures++
			p.logger.Warn("⚠ read failed", slog.String("path", m.Path), slog.String("error", readErr.Error()))
			continue
		}
		prop, fail := parser.Parse(m.Path, data)
		if fail != nil {
			failures++
			p.logger.Warn("⚠ parse failed", slog.String("path", m.Path), slog.String("reason", string(fail.Reason)))
			continue
		}
		proposals = append(proposals, *prop)
	}
	models.SortByCreatedDesc(proposals)

	cache := attribution.Load(p.cachePath(), p.logger)
	renderer := render.New(p.resolver(), cache)
	result := renderer.Render(ctx, proposals)

	current, err := p.store.Read(p.opts.ReadmePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("generate: read readme: %w", err)
		}
		current = nil
	}
	updated := inject.Inject(string(current), result.Markdown)

	if p.opts.DryRun {
		fmt.Fprintln(p.out, updated)
		p.logger.Info("dry run, no files written",
			slog.Int("proposals", result.Total),
			slog.Int("failures", failures))
		return nil
	}

	if updated == string(current) {
		p.logger.Info("readme already up to date", slog.Int("proposals", result.Total))
	} else {
		if len(current) > 0 && p.opts.BackupPath != "" {
			if copyErr := p.store.Copy(p.opts.ReadmePath, p.opts.BackupPath); copyErr != nil {
				p.logger.Warn("backup failed", slog.String("error", copyErr.Error()))
			} else {
				p.logger.Info("💾 backup written", slog.String("path", p.opts.BackupPath))
			}
		}
		if writeErr := p.store.Write(p.opts.ReadmePath, []byte(updated)); writeErr != nil {
			return fmt.Errorf("generate: write readme: %w", writeErr)
		}
	}

	if saveErr := cache.Save(); saveErr != nil {
		p.logger.Warn("cache save failed", slog.String("error", saveErr.Error()))
	}

	p.comment(ctx, result)

	p.logger.Info("✅ generation complete",
		slog.Int("proposals", result.Total),
		slog.Int("new", result.NewCount),
		slog.Int("failures", failures),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// resolver builds the attribution source. Attribution requires both a GitHub
// client and a git history for the export tree; missing either returns nil.
func (p *Pipeline) resolver() attribution.Source {
	if p.gh == nil {
		return nil
	}
	root := p.store.Root()
	if !gitlog.IsRepository(root) {
		p.logger.Debug("attribution disabled, not a git repository", slog.String("root", root))
		return nil
	}
	return attribution.NewResolver(gitlog.NewRepo(root), p.gh, p.logger)
}

// cachePath resolves the cache file location under the store root.
func (p *Pipeline) cachePath() string {
	return filepath.Join(p.store.Root(), p.opts.CachePath)
}

// comment posts the run summary to the pull request, best effort.
func (p *Pipeline) comment(ctx context.Context, result render.Result) {
	if p.gh == nil || p.opts.PRNumber <= 0 {
		return
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "## 📋 Proposal README preview\n\n")
	fmt.Fprintf(&b, "%d proposal(s), %d new this run.\n\n", result.Total, result.NewCount)
	if contributors := p.gh.Contributors(ctx); len(contributors) > 0 {
		fmt.Fprintf(&b, "👥 %d contributors so far.\n\n", len(contributors))
	}
	b.WriteString(result.Markdown)
	if err := p.gh.CreateIssueComment(ctx, p.opts.PRNumber, b.String()); err != nil {
		p.logger.Warn("pr comment failed", slog.Int("pr", p.opts.PRNumber), slog.String("error", err.Error()))
	} else {
		p.logger.Info("pr comment posted", slog.Int("pr", p.opts.PRNumber))
	}
}
