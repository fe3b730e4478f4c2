// Package models defines the domain types for ideadex.
package models

import (
	"sort"
	"time"
)

// Proposal represents one parsed hack4good idea submission.
//
// SourcePath is the file's path relative to the repository root and doubles
// as the stable identity key for attribution and the seen set.
type Proposal struct {
	ProjectName string     `json:"project_name"`
	FocusArea   string     `json:"focus_area"`
	Description string     `json:"description"`
	Impact      string     `json:"impact"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	SourcePath  string     `json:"source_path"`
}

// Attribution is the resolved human identity behind a proposal file.
type Attribution struct {
	Login      string `json:"login,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// Resolved reports whether the attribution carries a usable login.
func (a *Attribution) Resolved() bool {
	return a != nil && a.Login != ""
}

// ProposalMetadata is a lightweight representation returned by list operations.
type ProposalMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortByCreatedDesc orders proposals newest first. Proposals without a
// creation timestamp sort after all dated ones; ties keep their relative
// order so output stays stable between runs.
func SortByCreatedDesc(proposals []Proposal) {
	sort.SliceStable(proposals, func(i, j int) bool {
		a, b := proposals[i].CreatedAt, proposals[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
