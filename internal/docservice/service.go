// Package docservice coordinates the documentation pipeline: locate,
// extract, infer, write memory, reconcile the index, and record activity.
// It is the single entry point used by the CLI commands, the HTTP API, and
// the MCP server.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/journal"
	"github.com/starford/ansuz/internal/layout"
	"github.com/starford/ansuz/internal/locator"
	"github.com/starford/ansuz/internal/memory"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
	"github.com/starford/ansuz/internal/scaffold"
	"github.com/starford/ansuz/internal/storage"
)

// ExtractionFailure records one file that was dropped from a sync run.
type ExtractionFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// SyncReport summarises one sync run. Failures are collected, not raised:
// a file that cannot be read is excluded from the run's document set and
// the pipeline continues.
type SyncReport struct {
	Located    int                 `json:"located"`
	Extracted  int                 `json:"extracted"`
	Entities   int                 `json:"entities"`
	Relations  int                 `json:"relations"`
	MemoryPath string              `json:"memory_path"`
	LogUpdated bool                `json:"log_updated"`
	Failures   []ExtractionFailure `json:"failures,omitempty"`
}

// DocumentDetail is the full representation of one document.
type DocumentDetail struct {
	Path      string            `json:"path"`
	Title     string            `json:"title"`
	Category  models.Category   `json:"category"`
	Content   string            `json:"content"`
	Checksum  string            `json:"checksum"`
	Relations []models.Relation `json:"relations"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string          `json:"path"`
	Title     string          `json:"title"`
	Category  models.Category `json:"category"`
	Checksum  string          `json:"checksum"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Service coordinates storage, extraction, inference, memory, index, and
// the progress log.
type Service struct {
	store  storage.Provider
	db     index.DocumentIndex
	loc    *locator.Locator
	mem    *memory.Writer
	log    *journal.Journal
	scaf   *scaffold.Service
	tree   layout.Tree
	logger *slog.Logger
}

// New creates the document service.
func New(store storage.Provider, db index.DocumentIndex, loc *locator.Locator, mem *memory.Writer, jrnl *journal.Journal, scaf *scaffold.Service, tree layout.Tree, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		db:     db,
		loc:    loc,
		mem:    mem,
		log:    jrnl,
		scaf:   scaf,
		tree:   tree,
		logger: logger,
	}
}

// DocsRoot returns the absolute docs directory under the project root,
// suitable for handing to Watch.
func (s *Service) DocsRoot(root string) string {
	return filepath.Join(root, filepath.FromSlash(s.tree.DocsDir))
}

// collect locates and extracts the current document set. Read failures are
// converted into per-item failures and the file is skipped.
func (s *Service) collect() ([]models.Document, []ExtractionFailure, int, error) {
	paths, err := s.loc.Locate()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("docservice: locate: %w", err)
	}

	docs := make([]models.Document, 0, len(paths))
	var failures []ExtractionFailure
	for _, p := range paths {
		data, err := s.store.Read(p)
		if err != nil {
			s.logger.Warn("extract failed", slog.String("path", p), slog.String("error", err.Error()))
			failures = append(failures, ExtractionFailure{Path: p, Reason: err.Error()})
			continue
		}
		docs = append(docs, parser.Extract(p, data))
	}
	return docs, failures, len(paths), nil
}

// Sync runs the full pipeline: locate, extract, infer, fully regenerate the
// memory file, reconcile the index, and append a sync line to the progress
// log. Extraction failures degrade to exclusions, never abort the run.
func (s *Service) Sync(_ context.Context) (*SyncReport, error) {
	docs, failures, located, err := s.collect()
	if err != nil {
		return nil, err
	}

	g := graph.Build(docs)

	dest, err := s.mem.Write(g.Entities, g.Relations)
	if err != nil {
		return nil, fmt.Errorf("docservice: %w", err)
	}

	if err := index.Reconcile(s.db, docs, g.Relations, s.logger); err != nil {
		return nil, fmt.Errorf("docservice: reconcile index: %w", err)
	}

	logged, err := s.log.AppendActivity(fmt.Sprintf("Synced %d documents to memory", len(docs)))
	if err != nil {
		// A broken progress log should not undo a completed sync.
		s.logger.Warn("progress log update failed", slog.String("error", err.Error()))
	}

	s.logger.Info("sync completed",
		slog.Int("located", located),
		slog.Int("extracted", len(docs)),
		slog.Int("entities", len(g.Entities)),
		slog.Int("relations", len(g.Relations)),
		slog.String("memory_path", dest))

	return &SyncReport{
		Located:    located,
		Extracted:  len(docs),
		Entities:   len(g.Entities),
		Relations:  len(g.Relations),
		MemoryPath: dest,
		LogUpdated: logged,
		Failures:   failures,
	}, nil
}

// reindex refreshes the index from disk without touching the memory file or
// the progress log. Used after single-document mutations.
func (s *Service) reindex() error {
	docs, _, _, err := s.collect()
	if err != nil {
		return err
	}
	g := graph.Build(docs)
	return index.Reconcile(s.db, docs, g.Relations, s.logger)
}

// Get reads one document and enriches it with its stored relations.
func (s *Service) Get(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(path, data)
}

// Create writes a new document and refreshes the index.
func (s *Service) Create(_ context.Context, path string, content []byte) (*DocumentDetail, error) {
	exists, err := s.store.Exists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.reindex(); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content)
}

// Update writes updated content with optimistic concurrency: when ifMatch
// is non-empty it must equal the checksum of the current content.
func (s *Service) Update(_ context.Context, path string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.reindex(); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content)
}

// Delete removes a document from storage and the index.
func (s *Service) Delete(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.reindex()
}

// List returns a page of indexed documents with optional category filter.
func (s *Service) List(_ context.Context, limit, offset int, category, sort string) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocumentsPage(limit, offset, category, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:      r.Path,
			Title:     r.Title,
			Category:  r.Category,
			Checksum:  r.Checksum,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Graph returns the stored knowledge graph.
func (s *Service) Graph(_ context.Context) (graph.Graph, error) {
	return s.db.Graph()
}

// Relations returns every stored relation touching the given entity title.
func (s *Service) Relations(_ context.Context, title string) ([]models.Relation, error) {
	return s.db.RelationsFor(title)
}

// buildDetail constructs a DocumentDetail from raw data without re-reading
// the file.
func (s *Service) buildDetail(path string, data []byte) (*DocumentDetail, error) {
	d := parser.Extract(path, data)
	rels, err := s.db.RelationsFor(d.Title)
	if err != nil {
		return nil, err
	}
	if rels == nil {
		rels = []models.Relation{}
	}
	return &DocumentDetail{
		Path:      d.Path,
		Title:     d.Title,
		Category:  d.Category,
		Content:   d.Content,
		Checksum:  checksum.Sum(data),
		Relations: rels,
		UpdatedAt: time.Now(),
	}, nil
}

// CreateStage scaffolds a new stage document and records the activity.
// Returns the relative path of the created file.
func (s *Service) CreateStage(_ context.Context, phase, stage int, name string) (string, error) {
	rel, err := s.scaf.CreateStage(phase, stage, name)
	if err != nil {
		return "", err
	}
	if _, err := s.log.AppendActivity(fmt.Sprintf("Created Stage %d.%d: %s", phase, stage, name)); err != nil {
		s.logger.Warn("progress log update failed", slog.String("error", err.Error()))
	}
	s.logger.Info("stage created", slog.String("path", rel))
	return rel, nil
}

// CreateReport scaffolds a completion report for phase.stage and records
// both the activity and the stage completion. An empty name is derived from
// the existing stage document. Returns the relative path and the name used.
func (s *Service) CreateReport(_ context.Context, phase, stage int, name string) (string, string, error) {
	rel, used, err := s.scaf.CreateReport(phase, stage, name)
	if err != nil {
		return "", "", err
	}
	if _, err := s.log.AppendActivity(fmt.Sprintf("Created completion report for Stage %d.%d: %s", phase, stage, used)); err != nil {
		s.logger.Warn("progress log update failed", slog.String("error", err.Error()))
	}
	if _, err := s.log.RecordCompletion(phase, stage, used); err != nil {
		s.logger.Warn("completion log update failed", slog.String("error", err.Error()))
	}
	s.logger.Info("report created", slog.String("path", rel))
	return rel, used, nil
}

// InitReport summarises what init created.
type InitReport struct {
	Created    []string `json:"created"`
	Templates  []string `json:"templates"`
	Readme     bool     `json:"readme"`
	MemoryPath string   `json:"memory_path"`
}

// Init sets up the framework inside the project: directory tree, singleton
// documents, templates, README, an empty memory file, and the Cursor MCP
// registry entry. Existing documents are never overwritten; templates are.
func (s *Service) Init(_ context.Context, project, root string, mcpCommand []string) (*InitReport, error) {
	if err := s.scaf.EnsureTree(); err != nil {
		return nil, err
	}
	created, err := s.scaf.EnsureSingletons()
	if err != nil {
		return nil, err
	}
	templates, err := s.scaf.WriteTemplates()
	if err != nil {
		return nil, err
	}
	readme, err := s.scaf.EnsureReadme()
	if err != nil {
		return nil, err
	}
	memPath, err := s.mem.Touch()
	if err != nil {
		return nil, err
	}
	if err := s.scaf.RegisterProject(project, root, memPath, mcpCommand); err != nil {
		return nil, err
	}

	s.logger.Info("framework initialized",
		slog.Int("documents_created", len(created)),
		slog.String("memory_path", memPath))

	return &InitReport{
		Created:    created,
		Templates:  templates,
		Readme:     readme,
		MemoryPath: memPath,
	}, nil
}
