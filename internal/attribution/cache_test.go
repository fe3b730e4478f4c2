package attribution

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hack4good/ideadex/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_MissingFile(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "nope.json"), discardLogger())
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
	if c.Seen("anything") {
		t.Error("fresh cache should have empty seen set")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := Load(path, discardLogger())
	if c.Len() != 0 {
		t.Errorf("malformed cache should start empty, len = %d", c.Len())
	}
}

func TestLoad_LegacyShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	legacy := `{"update/p_1.xml": {"login": "alice", "profile_url": "https://github.com/alice"}}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(path, discardLogger())
	attr := c.Get("update/p_1.xml")
	if attr == nil || attr.Login != "alice" {
		t.Fatalf("attr = %+v, want alice", attr)
	}
	if c.Seen("update/p_1.xml") {
		t.Error("legacy cache has no seen metadata")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := Load(path, discardLogger())
	c.Put("update/p_1.xml", &models.Attribution{Login: "alice", ProfileURL: "https://github.com/alice"})
	c.Put("update/p_2.xml", nil)
	c.MarkSeen("update/p_1.xml")
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := Load(path, discardLogger())
	if got := reloaded.Get("update/p_1.xml"); got == nil || got.Login != "alice" {
		t.Errorf("p_1 = %+v", got)
	}
	if got := reloaded.Get("update/p_2.xml"); got == nil || got.Login != "" {
		t.Errorf("p_2 = %+v, want empty record", got)
	}
	if !reloaded.Seen("update/p_1.xml") {
		t.Error("seen set lost in round trip")
	}
	if reloaded.Seen("update/p_2.xml") {
		t.Error("p_2 was never marked seen")
	}
	if reloaded.LastRun().IsZero() {
		t.Error("last run timestamp not persisted")
	}
}

func TestSave_ReplacesLegacyShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"p.xml": {"login": "bob"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(path, discardLogger())
	c.MarkSeen("p.xml")
	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{`"attrs"`, `"meta"`, `"bob"`} {
		if !strings.Contains(got, want) {
			t.Errorf("saved cache missing %s:\n%s", want, got)
		}
	}
}

func TestMarkSeen_OnlyOnce(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "cache.json"), discardLogger())
	if !c.MarkSeen("p.xml") {
		t.Error("first mark should report new")
	}
	if c.MarkSeen("p.xml") {
		t.Error("second mark must not report new")
	}
}
