// Package svc coordinates storage and index operations for the API and MCP
// surfaces.
package svc

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/hack4good/ideadex/internal/apperr"
	"github.com/hack4good/ideadex/internal/index"
	"github.com/hack4good/ideadex/internal/parser"
	"github.com/hack4good/ideadex/internal/storage"
)

// ProposalDetail is the full representation of a proposal.
type ProposalDetail struct {
	Path        string     `json:"path"`
	Project     string     `json:"project"`
	FocusArea   string     `json:"focus_area"`
	Description string     `json:"description"`
	Impact      string     `json:"impact"`
	Author      string     `json:"author,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Raw         string     `json:"raw,omitempty"`
}

// ProposalListItem is a lightweight item in a list response.
type ProposalListItem struct {
	Path      string     `json:"path"`
	Project   string     `json:"project"`
	FocusArea string     `json:"focus_area"`
	Author    string     `json:"author,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Stats summarises the indexed corpus.
type Stats struct {
	Total      int                `json:"total"`
	FocusAreas []index.FocusCount `json:"focus_areas"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new proposal service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// GetProposal reads a proposal file from storage and parses it fresh,
// falling back to the index row for fields the export lacks.
func (s *Service) GetProposal(_ context.Context, path string) (*ProposalDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	p, fail := parser.Parse(path, data)
	if fail != nil {
		return nil, fail
	}

	detail := &ProposalDetail{
		Path:        p.SourcePath,
		Project:     p.ProjectName,
		FocusArea:   p.FocusArea,
		Description: p.Description,
		Impact:      p.Impact,
		CreatedAt:   p.CreatedAt,
		Raw:         string(data),
	}
	if row, rowErr := s.db.GetProposal(path); rowErr == nil && row != nil {
		detail.Author = row.Author
	}
	return detail, nil
}

// ListProposals returns paginated proposals with an optional focus filter.
func (s *Service) ListProposals(_ context.Context, limit, offset int, focusArea string) ([]ProposalListItem, int, error) {
	rows, total, err := s.db.ListProposals(limit, offset, focusArea)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ProposalListItem, len(rows))
	for i, r := range rows {
		items[i] = ProposalListItem{
			Path:      r.Path,
			Project:   r.Project,
			FocusArea: r.FocusArea,
			Author:    r.Author,
			CreatedAt: r.CreatedAt,
		}
	}
	return items, total, nil
}

// Search delegates to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Stats delegates to the index.
func (s *Service) Stats(_ context.Context) (*Stats, error) {
	total, counts, err := s.db.Stats()
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []index.FocusCount{}
	}
	return &Stats{Total: total, FocusAreas: counts}, nil
}
