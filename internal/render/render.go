// Package render turns parsed proposals into the markdown block injected
// into the README.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hack4good/ideadex/internal/attribution"
	"github.com/hack4good/ideadex/internal/models"
)

const (
	// Display truncation bounds; these never mutate the stored record.
	descriptionLimit = 110
	impactLimit      = 70

	ellipsis  = "…"
	newMarker = "🆕 "

	unknownAuthor = "Unknown"

	emptyPlaceholder = "_No proposals yet. Be the first to submit one!_"
)

// Renderer builds the README block, resolving attribution through the cache.
type Renderer struct {
	resolver attribution.Source
	cache    *attribution.Cache
}

// New creates a Renderer. The cache is mutated during Render (attribution
// entries and the seen set) and must be persisted by the caller afterwards.
// A nil resolver disables network resolution; only cached entries are used.
func New(resolver attribution.Source, cache *attribution.Cache) *Renderer {
	return &Renderer{resolver: resolver, cache: cache}
}

// Result is the rendered block plus the run counters used for the summary
// comment.
type Result struct {
	Markdown string
	Total    int
	NewCount int
}

// Render emits a summary block and a table with one row per proposal, in the
// given order. Proposals whose source path has not been seen in a previous
// run are prefixed with the new marker and recorded as seen.
func (r *Renderer) Render(ctx context.Context, proposals []models.Proposal) Result {
	if len(proposals) == 0 {
		return Result{Markdown: emptyPlaceholder}
	}

	rows := make([]string, 0, len(proposals))
	newCount := 0
	for _, p := range proposals {
		attr := r.attributionFor(ctx, p.SourcePath)

		title := escapeCell(p.ProjectName)
		if r.cache.MarkSeen(p.SourcePath) {
			newCount++
			title = newMarker + title
		}

		rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s | %s | %s |",
			title,
			escapeCell(p.FocusArea),
			escapeCell(truncate(p.Description, descriptionLimit)),
			escapeCell(truncate(p.Impact, impactLimit)),
			formatDate(p.CreatedAt),
			authorCell(attr),
		))
	}

	var b strings.Builder
	b.WriteString(summary(proposals, newCount))
	b.WriteString("\n\n")
	b.WriteString("| Project | Focus Area | Description | Impact | Submitted | Author |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n")

	return Result{Markdown: b.String(), Total: len(proposals), NewCount: newCount}
}

// attributionFor consults the cache first; the network resolver only runs
// when no cached entry with a non-empty login exists. Results (including
// failed resolutions, stored as empty records) are written back to the cache.
func (r *Renderer) attributionFor(ctx context.Context, sourcePath string) *models.Attribution {
	if cached := r.cache.Get(sourcePath); cached.Resolved() {
		return cached
	}
	if r.resolver == nil {
		return nil
	}
	attr := r.resolver.Resolve(ctx, sourcePath)
	r.cache.Put(sourcePath, attr)
	return attr
}

// summary reports total count, the most frequent focus area (ties broken by
// first encounter in the record order), the known-timestamp date range, and
// the number of proposals new this run.
func summary(proposals []models.Proposal, newCount int) string {
	counts := make(map[string]int)
	var order []string
	var minDate, maxDate *time.Time

	for i := range proposals {
		p := &proposals[i]
		if counts[p.FocusArea] == 0 {
			order = append(order, p.FocusArea)
		}
		counts[p.FocusArea]++

		if p.CreatedAt != nil {
			if minDate == nil || p.CreatedAt.Before(*minDate) {
				minDate = p.CreatedAt
			}
			if maxDate == nil || p.CreatedAt.After(*maxDate) {
				maxDate = p.CreatedAt
			}
		}
	}

	top := ""
	for _, area := range order {
		if top == "" || counts[area] > counts[top] {
			top = area
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d proposals** · Top focus area: **%s** (%d)", len(proposals), top, counts[top])
	if newCount > 0 {
		fmt.Fprintf(&b, " · 🆕 %d new this run", newCount)
	}
	if minDate != nil {
		fmt.Fprintf(&b, "\n\nSubmitted between %s and %s.", minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"))
	}
	return b.String()
}

func authorCell(attr *models.Attribution) string {
	if !attr.Resolved() {
		return unknownAuthor
	}
	if attr.ProfileURL == "" {
		// Raw commit author name or email, no account to link.
		return escapeCell(attr.Login)
	}
	label := "@" + attr.Login
	if attr.AvatarURL != "" {
		label = fmt.Sprintf(`<img src="%s" width="20" alt=""> @%s`, attr.AvatarURL, attr.Login)
	}
	return fmt.Sprintf("[%s](%s)", label, attr.ProfileURL)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("2006-01-02")
}

// truncate bounds s to limit runes, appending an ellipsis when cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

// escapeCell keeps free text from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
