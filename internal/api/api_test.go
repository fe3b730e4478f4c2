package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/hack4good/ideadex/internal/index"
	"github.com/hack4good/ideadex/internal/storage"
	"github.com/hack4good/ideadex/internal/svc"
)

// testEnv sets up a temp export tree, SQLite index, service, and router.
// authToken="" means auth disabled; non-empty enables token mode.
func testEnv(t *testing.T, authToken string) (*svc.Service, http.Handler) {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	seedProposal(t, store, "1", "Tutor Match", "education", "Pairs volunteer tutors with students.")
	seedProposal(t, store, "2", "Flood Relief Map", "disaster", "Crowdsourced flood reporting.")

	dbFile, err := os.CreateTemp("", "ideadex-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := index.Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	service := svc.NewService(store, db)
	router := NewRouter(service, authToken != "", authToken, nil)
	return service, router
}

func seedProposal(t *testing.T, store *storage.FS, id, project, focus, desc string) {
	t.Helper()
	export := fmt.Sprintf(`<record_update><x_snc_hack4good_0_hack4good_proposal>
<project_name>%s</project_name>
<focus_area>%s</focus_area>
<description>%s</description>
<impact_statement>Helps the community.</impact_statement>
<sys_created_on>2025-10-2%s 10:00:00</sys_created_on>
</x_snc_hack4good_0_hack4good_proposal></record_update>`, project, focus, desc, id)
	path := fmt.Sprintf("app/update/x_snc_hack4good_0_hack4good_proposal_%s.xml", id)
	if err := store.Write(path, []byte(export)); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestListProposals(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/proposals", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ProposalListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Proposals) != 2 {
		t.Fatalf("total = %d, items = %d", resp.Total, len(resp.Proposals))
	}
	// Newest first.
	if resp.Proposals[0].Project != "Flood Relief Map" {
		t.Errorf("first = %q, want Flood Relief Map", resp.Proposals[0].Project)
	}
}

func TestListProposals_FocusFilter(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/proposals?focus=Education", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ProposalListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Proposals[0].Project != "Tutor Match" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetProposal(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/proposals/app/update/x_snc_hack4good_0_hack4good_proposal_1.xml", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var detail ProposalDetail
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.Project != "Tutor Match" {
		t.Errorf("project = %q", detail.Project)
	}
	if detail.FocusArea != "Education" {
		t.Errorf("focus = %q", detail.FocusArea)
	}
}

func TestGetProposal_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/proposals/app/update/missing.xml", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSearch(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search?q=flood", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Project != "Flood Relief Map" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestStats(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats StatsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Total != 2 || len(stats.FocusAreas) != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAuth(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/proposals", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/proposals", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with token: status = %d, want 200", w.Code)
	}
}
