//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM proposals_fts`).Scan(&count); err != nil {
		t.Fatalf("proposals_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := ProposalRow{
		Path:        "update/x_snc_hack4good_0_hack4good_proposal_fts.xml",
		Project:     "Solar Schools",
		FocusArea:   "Sustainability",
		Description: "Install rooftop solar panels on rural school buildings.",
		Impact:      "Cuts energy costs for underfunded districts.",
		Checksum:    "f1",
		UpdatedAt:   time.Now(),
	}
	if err := db.UpsertProposal(row); err != nil {
		t.Fatalf("UpsertProposal: %v", err)
	}

	results, err := db.Search("rooftop", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != row.Path {
		t.Errorf("path = %q", results[0].Path)
	}
	if results[0].Snippet == "" {
		t.Error("expected a non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	row := ProposalRow{
		Path:      "update/x_snc_hack4good_0_hack4good_proposal_del.xml",
		Project:   "Ephemeral",
		FocusArea: "Other",
		Checksum:  "d1",
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertProposal(row); err != nil {
		t.Fatalf("UpsertProposal: %v", err)
	}
	if err := db.DeleteProposal(row.Path); err != nil {
		t.Fatalf("DeleteProposal: %v", err)
	}

	results, err := db.Search("Ephemeral", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("deleted proposal still searchable: %+v", results)
	}
}
