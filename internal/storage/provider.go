// Package storage defines the repository file-system abstraction.
package storage

import "github.com/hack4good/ideadex/internal/models"

// Provider is the interface for repository file operations.
type Provider interface {
	// ListProposals returns metadata for every proposal export file found
	// under an update/ directory (paths relative to the repository root).
	ListProposals() ([]models.ProposalMetadata, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Copy duplicates src to dst (both relative to root), used for backups.
	Copy(src, dst string) error
}
