package index

import (
	"log/slog"
	"time"

	"github.com/hack4good/ideadex/internal/checksum"
	"github.com/hack4good/ideadex/internal/parser"
	"github.com/hack4good/ideadex/internal/storage"
)

// Sync walks the repository and brings the index up to date:
//   - new/changed proposal files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// Files that fail to parse are skipped with a warning; they never abort the
// sync.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.ListProposals()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteProposal(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	p, fail := parser.Parse(path, data)
	if fail != nil {
		return fail
	}

	return db.UpsertProposal(ProposalRow{
		Path:        p.SourcePath,
		Project:     p.ProjectName,
		FocusArea:   p.FocusArea,
		Description: p.Description,
		Impact:      p.Impact,
		Checksum:    checksum.Sum(data),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	})
}
