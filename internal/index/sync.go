package index

import (
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
)

// Reconcile brings the index in line with one run's extracted document set:
//   - new/changed documents are upserted (checksum diff decides)
//   - index rows whose document left the set are deleted
//   - the stored relation set is replaced wholesale
//
// docs must be in locate order; the position of each document is recorded so
// listings and graph output preserve that order. Per-row failures are logged
// and skipped, never fatal.
func Reconcile(db DocumentIndex, docs []models.Document, rels []models.Relation, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	now := time.Now()
	current := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		current[d.Path] = struct{}{}

		cs := checksum.SumString(d.Content)
		if checksums[d.Path] == cs {
			continue
		}

		row := DocumentRow{
			Path:      d.Path,
			Title:     d.Title,
			Category:  d.Category,
			Checksum:  cs,
			Ord:       i,
			UpdatedAt: now,
		}
		if err := db.UpsertDocument(row, d.Content); err != nil {
			logger.Warn("reconcile: upsert failed", slog.String("path", d.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("reconcile: indexed", slog.String("path", d.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := current[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("reconcile: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
			}
		}
	}

	return db.ReplaceRelations(rels)
}
