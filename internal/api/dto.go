package api

import "github.com/hack4good/ideadex/internal/svc"

// ProposalDetail is the full proposal response type (aliased from the domain layer).
type ProposalDetail = svc.ProposalDetail

// ProposalListItem is a lightweight item in a list response (aliased from the domain layer).
type ProposalListItem = svc.ProposalListItem

// ProposalListResponse wraps paginated proposal listings.
type ProposalListResponse struct {
	Proposals []ProposalListItem `json:"proposals"`
	Total     int                `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Project string `json:"project"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// StatsResponse is the corpus summary (aliased from the domain layer).
type StatsResponse = svc.Stats
