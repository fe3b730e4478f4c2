package render

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hack4good/ideadex/internal/attribution"
	"github.com/hack4good/ideadex/internal/models"
)

type fakeResolver struct {
	attrs map[string]*models.Attribution
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, path string) *models.Attribution {
	f.calls++
	return f.attrs[path]
}

func testCache(t *testing.T) *attribution.Cache {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return attribution.Load(filepath.Join(t.TempDir(), "cache.json"), logger)
}

func datePtr(s string) *time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return &t
}

func sampleProposals() []models.Proposal {
	return []models.Proposal{
		{ProjectName: "Tutor Match", FocusArea: "Education", Description: "d", Impact: "i",
			CreatedAt: datePtr("2025-10-31T10:00:00Z"), SourcePath: "update/p_1.xml"},
		{ProjectName: "Class Kits", FocusArea: "Education", Description: "d", Impact: "i",
			CreatedAt: datePtr("2025-09-01T08:00:00Z"), SourcePath: "update/p_2.xml"},
		{ProjectName: "Misc Idea", FocusArea: "Other", Description: "d", Impact: "i",
			SourcePath: "update/p_3.xml"},
	}
}

func TestRender_SummaryAndTable(t *testing.T) {
	r := New(&fakeResolver{}, testCache(t))
	res := r.Render(context.Background(), sampleProposals())

	if res.Total != 3 {
		t.Errorf("total = %d, want 3", res.Total)
	}
	if !strings.Contains(res.Markdown, "**3 proposals**") {
		t.Errorf("summary missing total:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "Top focus area: **Education** (2)") {
		t.Errorf("summary missing top focus area:\n%s", res.Markdown)
	}
	// Date range only spans records with known timestamps.
	if !strings.Contains(res.Markdown, "between 2025-09-01 and 2025-10-31") {
		t.Errorf("summary missing date range:\n%s", res.Markdown)
	}
	if got := strings.Count(res.Markdown, "\n| "); got < 3 {
		t.Errorf("expected 3 table rows, markdown:\n%s", res.Markdown)
	}
}

func TestRender_NewMarkerOnlyOnce(t *testing.T) {
	cache := testCache(t)
	r := New(&fakeResolver{}, cache)

	first := r.Render(context.Background(), sampleProposals())
	if first.NewCount != 3 {
		t.Fatalf("first run new = %d, want 3", first.NewCount)
	}
	if !strings.Contains(first.Markdown, "🆕 Tutor Match") {
		t.Errorf("first run missing new marker:\n%s", first.Markdown)
	}

	second := r.Render(context.Background(), sampleProposals())
	if second.NewCount != 0 {
		t.Errorf("second run new = %d, want 0", second.NewCount)
	}
	if strings.Contains(second.Markdown, "🆕") {
		t.Errorf("seen proposals must not be marked new again:\n%s", second.Markdown)
	}
}

func TestRender_SecondRunIsDeterministic(t *testing.T) {
	cache := testCache(t)
	r := New(&fakeResolver{}, cache)

	_ = r.Render(context.Background(), sampleProposals())
	a := r.Render(context.Background(), sampleProposals())
	b := r.Render(context.Background(), sampleProposals())
	if a.Markdown != b.Markdown {
		t.Error("warm-cache renders should be byte-identical")
	}
}

func TestRender_UsesCacheBeforeNetwork(t *testing.T) {
	cache := testCache(t)
	cache.Put("update/p_1.xml", &models.Attribution{Login: "cached", ProfileURL: "https://github.com/cached"})
	resolver := &fakeResolver{attrs: map[string]*models.Attribution{
		"update/p_2.xml": {Login: "fresh", ProfileURL: "https://github.com/fresh"},
	}}
	r := New(resolver, cache)

	res := r.Render(context.Background(), sampleProposals()[:2])
	if !strings.Contains(res.Markdown, "@cached") {
		t.Errorf("cached attribution not used:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "@fresh") {
		t.Errorf("uncached path not resolved:\n%s", res.Markdown)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1 (cached login must skip network)", resolver.calls)
	}
}

func TestRender_UnknownAuthorPlaceholder(t *testing.T) {
	r := New(&fakeResolver{}, testCache(t))
	res := r.Render(context.Background(), sampleProposals()[:1])
	if !strings.Contains(res.Markdown, "Unknown") {
		t.Errorf("unresolved attribution should render Unknown:\n%s", res.Markdown)
	}
}

func TestRender_EmptyInput(t *testing.T) {
	r := New(&fakeResolver{}, testCache(t))
	res := r.Render(context.Background(), nil)
	if res.Markdown != emptyPlaceholder {
		t.Errorf("markdown = %q", res.Markdown)
	}
	if res.Total != 0 || res.NewCount != 0 {
		t.Errorf("counters = %+v", res)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 200)
	got := truncate(long, 110)
	if len([]rune(got)) != 111 {
		t.Errorf("truncated length = %d, want 111 runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, ellipsis) {
		t.Error("missing ellipsis")
	}
	if truncate("short", 110) != "short" {
		t.Error("short strings must pass through untouched")
	}
}

func TestEscapeCell(t *testing.T) {
	if got := escapeCell("a|b\nc"); got != `a\|b c` {
		t.Errorf("got %q", got)
	}
}
