package index

import (
	"database/sql"
	"fmt"
	"time"
)

// ProposalRow represents a row in the proposals table.
type ProposalRow struct {
	Path        string
	Project     string
	FocusArea   string
	Description string
	Impact      string
	Author      string
	Checksum    string
	CreatedAt   *time.Time
	UpdatedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Project string
	Snippet string
}

// FocusCount is one focus-area bucket in the stats breakdown.
type FocusCount struct {
	FocusArea string `json:"focus_area"`
	Count     int    `json:"count"`
}

// UpsertProposal inserts or replaces a proposal and its FTS entry within a
// transaction.
func (db *DB) UpsertProposal(p ProposalRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var created any
	if p.CreatedAt != nil {
		created = p.CreatedAt.UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO proposals (path, project, focus_area, description, impact, author, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			project     = excluded.project,
			focus_area  = excluded.focus_area,
			description = excluded.description,
			impact      = excluded.impact,
			author      = excluded.author,
			checksum    = excluded.checksum,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at
	`, p.Path, p.Project, p.FocusArea, p.Description, p.Impact, p.Author, p.Checksum, created, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert proposal: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Project, p.Description, p.Impact); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteProposal removes a proposal and its FTS entry.
func (db *DB) DeleteProposal(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM proposals WHERE path = ?`, path)

	return tx.Commit()
}

// GetProposal returns a single indexed proposal, or nil when absent.
func (db *DB) GetProposal(path string) (*ProposalRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, project, focus_area, description, impact, author, checksum, created_at, updated_at
		FROM proposals WHERE path = ?
	`, path)
	p, err := scanProposal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get proposal: %w", err)
	}
	return p, nil
}

// ListProposals returns paginated proposals, optionally filtered by focus
// area, newest first (unknown dates last).
func (db *DB) ListProposals(limit, offset int, focusArea string) ([]ProposalRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where := ""
	args := []any{}
	if focusArea != "" {
		where = "WHERE focus_area = ?"
		args = append(args, focusArea)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM proposals `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count proposals: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT path, project, focus_area, description, impact, author, checksum, created_at, updated_at
		FROM proposals %s
		ORDER BY created_at IS NULL, created_at DESC, path
		LIMIT ? OFFSET ?
	`, where)
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list proposals: %w", err)
	}
	defer rows.Close()

	var out []ProposalRow
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// Stats returns the total proposal count and a per-focus-area breakdown
// ordered by descending count.
func (db *DB) Stats() (int, []FocusCount, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM proposals`).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("index: stats total: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT focus_area, COUNT(*) AS n
		FROM proposals
		GROUP BY focus_area
		ORDER BY n DESC, focus_area
	`)
	if err != nil {
		return 0, nil, fmt.Errorf("index: stats breakdown: %w", err)
	}
	defer rows.Close()

	var counts []FocusCount
	for rows.Next() {
		var fc FocusCount
		if err := rows.Scan(&fc.FocusArea, &fc.Count); err != nil {
			return 0, nil, err
		}
		counts = append(counts, fc)
	}
	return total, counts, rows.Err()
}

// GetChecksum returns the stored checksum for a proposal, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM proposals WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed proposal.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM proposals`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(r rowScanner) (*ProposalRow, error) {
	var p ProposalRow
	var created sql.NullTime
	if err := r.Scan(&p.Path, &p.Project, &p.FocusArea, &p.Description, &p.Impact,
		&p.Author, &p.Checksum, &created, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if created.Valid {
		t := created.Time
		p.CreatedAt = &t
	}
	return &p, nil
}
