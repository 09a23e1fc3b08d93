package api

import (
	"github.com/starford/ansuz/internal/docservice"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"docs/phases/phase1.md" validate:"required"`
	Content string `json:"content" example:"# Phase 1: Core" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.DocumentListItem

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"12" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"docs/stages/stage1_1-auth.md" validate:"required"`
	Title   string `json:"title" example:"Stage 1.1: Auth" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// GraphNode is a node in the knowledge graph.
type GraphNode struct {
	ID   string `json:"id" example:"Stage 1.1: Auth" validate:"required"`
	Type string `json:"type" example:"Stage" validate:"required"`
}

// GraphLink is a typed edge in the knowledge graph.
type GraphLink struct {
	Source string `json:"source" example:"Phase 1: Core" validate:"required"`
	Target string `json:"target" example:"Stage 1.1: Auth" validate:"required"`
	Type   string `json:"type" example:"implements" validate:"required"`
}

// GraphResponse wraps the knowledge graph.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes" validate:"required"`
	Links []GraphLink `json:"links" validate:"required"`
}

// SyncResponse wraps a pipeline run report.
type SyncResponse = docservice.SyncReport
