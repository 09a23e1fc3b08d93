// Package models defines the domain types for Ansuz.
package models

// Category classifies a documentation file by its role in the framework.
type Category string

// Document categories, in classification priority order.
const (
	CategoryPhase    Category = "phase"
	CategoryStage    Category = "stage"
	CategoryReport   Category = "report"
	CategorySpec     Category = "spec"
	CategoryRoadmap  Category = "roadmap"
	CategoryProgress Category = "progress"
	CategoryDocument Category = "document"
)

// EntityType returns the category with its first letter upper-cased, which is
// how categories appear in memory entity records ("stage" → "Stage").
func (c Category) EntityType() string {
	s := string(c)
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// Document is one extracted documentation file. Content is the verbatim file
// text; extraction never mutates it.
type Document struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Content  string   `json:"content"`
}

// Relation types produced by the inference rules.
const (
	RelationInforms     = "informs"
	RelationTracks      = "tracks"
	RelationContains    = "contains"
	RelationImplements  = "implements"
	RelationCompletedBy = "completed_by"
)

// Entity is one memory record representing a document. Field order matters:
// records are serialized line-by-line and consumers expect the type
// discriminator first.
type Entity struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// Relation is a directed, typed edge between two entity names.
type Relation struct {
	Type         string `json:"type"`
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// NewEntity builds the memory entity for a document: the title becomes the
// entity name and the full content its single observation.
func NewEntity(d Document) Entity {
	return Entity{
		Type:         "entity",
		Name:         d.Title,
		EntityType:   d.Category.EntityType(),
		Observations: []string{d.Content},
	}
}

// NewRelation builds a directed relation between two entity names.
func NewRelation(from, to, relationType string) Relation {
	return Relation{
		Type:         "relation",
		From:         from,
		To:           to,
		RelationType: relationType,
	}
}
