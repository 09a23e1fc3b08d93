package index

import (
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/models"
)

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(row DocumentRow, body string) error
	DeleteDocument(path string) error
	ListDocuments() ([]DocumentRow, error)
	ListDocumentsPage(limit, offset int, category, sort string) ([]DocumentRow, int, error)
	AllChecksums() (map[string]string, error)
	ReplaceRelations(rels []models.Relation) error
	RelationsFor(title string) ([]models.Relation, error)
	Graph() (graph.Graph, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
