package index

// ProposalIndex defines the interface for proposal indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ProposalIndex interface {
	UpsertProposal(p ProposalRow) error
	DeleteProposal(path string) error
	GetProposal(path string) (*ProposalRow, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListProposals(limit, offset int, focusArea string) ([]ProposalRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Stats() (int, []FocusCount, error)
	Close() error
}

// Verify *DB satisfies ProposalIndex at compile time.
var _ ProposalIndex = (*DB)(nil)
