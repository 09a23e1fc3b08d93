package index

import (
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/models"
)

// DocumentRow represents a row in the documents table. Ord preserves the
// locate order of the owning sync run, so graph output keeps document order.
type DocumentRow struct {
	Path      string
	Title     string
	Category  models.Category
	Checksum  string
	Ord       int
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDocument inserts or replaces a document row and its FTS entry
// within a transaction.
func (db *DB) UpsertDocument(row DocumentRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, category, checksum, body, ord, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			category   = excluded.category,
			checksum   = excluded.checksum,
			body       = excluded.body,
			ord        = excluded.ord,
			updated_at = excluded.updated_at
	`, row.Path, row.Title, string(row.Category), row.Checksum, body, row.Ord, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, row.Title, body, string(row.Category)); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDocument removes a document row and its FTS entry.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// ListDocuments returns every indexed document in locate order.
func (db *DB) ListDocuments() ([]DocumentRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, title, category, checksum, ord, updated_at
		FROM documents
		ORDER BY ord, path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var r DocumentRow
		var category string
		if err := rows.Scan(&r.Path, &r.Title, &category, &r.Checksum, &r.Ord, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Category = models.Category(category)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListDocumentsPage returns a page of documents plus the total count
// matching the filter. category narrows to one category when non-empty.
// sort is one of "updated_at", "title", "path"; anything else keeps the
// locate order.
func (db *DB) ListDocumentsPage(limit, offset int, category, sort string) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if category != "" {
		where = `WHERE category = ?`
		args = append(args, category)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	order := "ord, path"
	switch sort {
	case "updated_at":
		order = "updated_at DESC"
	case "title":
		order = "title COLLATE NOCASE"
	case "path":
		order = "path"
	}

	query := fmt.Sprintf(`
		SELECT path, title, category, checksum, ord, updated_at
		FROM documents %s
		ORDER BY %s
		LIMIT ? OFFSET ?
	`, where, order)
	args = append(args, limit, offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents page: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var r DocumentRow
		var cat string
		if err := rows.Scan(&r.Path, &r.Title, &cat, &r.Checksum, &r.Ord, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		r.Category = models.Category(cat)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// AllChecksums returns path → checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
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

// ReplaceRelations replaces the stored relation set wholesale, preserving
// rels order (including duplicates).
func (db *DB) ReplaceRelations(rels []models.Relation) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM relations`)
	if len(rels) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO relations (from_title, to_title, type) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare relation insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rels {
			if _, err := stmt.Exec(r.From, r.To, r.RelationType); err != nil {
				return fmt.Errorf("index: insert relation: %w", err)
			}
		}
	}

	return tx.Commit()
}

// RelationsFor returns every stored relation touching the given entity
// title, either side, in inference order.
func (db *DB) RelationsFor(title string) ([]models.Relation, error) {
	rows, err := db.conn.Query(`
		SELECT from_title, to_title, type
		FROM relations
		WHERE from_title = ? OR to_title = ?
		ORDER BY rowid
	`, title, title)
	if err != nil {
		return nil, fmt.Errorf("index: relations for %q: %w", title, err)
	}
	defer rows.Close()

	var out []models.Relation
	for rows.Next() {
		var from, to, typ string
		if err := rows.Scan(&from, &to, &typ); err != nil {
			return nil, err
		}
		out = append(out, models.NewRelation(from, to, typ))
	}
	return out, rows.Err()
}

// Graph rebuilds the knowledge graph from the index: one entity per document
// in locate order, then the stored relations in inference order.
func (db *DB) Graph() (graph.Graph, error) {
	var g graph.Graph

	rows, err := db.conn.Query(`SELECT title, category, body FROM documents ORDER BY ord, path`)
	if err != nil {
		return g, fmt.Errorf("index: graph documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var title, category, body string
		if err := rows.Scan(&title, &category, &body); err != nil {
			return g, err
		}
		g.Entities = append(g.Entities, models.NewEntity(models.Document{
			Title:    title,
			Category: models.Category(category),
			Content:  body,
		}))
	}
	if err := rows.Err(); err != nil {
		return g, err
	}

	relRows, err := db.conn.Query(`SELECT from_title, to_title, type FROM relations ORDER BY rowid`)
	if err != nil {
		return g, fmt.Errorf("index: graph relations: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var from, to, typ string
		if err := relRows.Scan(&from, &to, &typ); err != nil {
			return g, err
		}
		g.Relations = append(g.Relations, models.NewRelation(from, to, typ))
	}
	return g, relRows.Err()
}
