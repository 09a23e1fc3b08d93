// Package graph derives the entity/relation graph for a document set.
//
// Relations are inferred purely from naming-convention substrings in document
// titles. Rules run in a fixed order and never fail on a malformed title; a
// title that does not match a rule's pattern contributes nothing. Duplicates
// are kept as-is.
package graph

import (
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

var (
	phaseNumRe = regexp.MustCompile(`Stage (\d+)[._]`)
	stageIDRe  = regexp.MustCompile(`Stage (\d+[._]\d+)`)
)

// Graph is the full derived knowledge graph for a project.
type Graph struct {
	Entities  []models.Entity   `json:"entities"`
	Relations []models.Relation `json:"relations"`
}

// Build extracts one entity per document, in document order, and infers
// relations between them.
func Build(docs []models.Document) Graph {
	entities := make([]models.Entity, 0, len(docs))
	for _, d := range docs {
		entities = append(entities, models.NewEntity(d))
	}
	return Graph{Entities: entities, Relations: Infer(docs)}
}

// Infer runs the five inference rules over the document set, in order:
// informs, tracks, contains, implements, completed_by.
func Infer(docs []models.Document) []models.Relation {
	var rels []models.Relation

	specIdx := firstIndex(docs, models.CategorySpec)
	roadmapIdx := firstIndex(docs, models.CategoryRoadmap)
	progressIdx := firstIndex(docs, models.CategoryProgress)

	var phases, stages, reports []models.Document
	for _, d := range docs {
		switch d.Category {
		case models.CategoryPhase:
			phases = append(phases, d)
		case models.CategoryStage:
			stages = append(stages, d)
		case models.CategoryReport:
			reports = append(reports, d)
		}
	}

	// The spec document informs the roadmap.
	if specIdx >= 0 && roadmapIdx >= 0 {
		rels = append(rels, models.NewRelation(docs[specIdx].Title, docs[roadmapIdx].Title, models.RelationInforms))
	}

	// The progress tracker tracks every other document.
	if progressIdx >= 0 {
		from := docs[progressIdx].Title
		for i, d := range docs {
			if i == progressIdx {
				continue
			}
			rels = append(rels, models.NewRelation(from, d.Title, models.RelationTracks))
		}
	}

	// The roadmap contains each phase.
	if roadmapIdx >= 0 {
		from := docs[roadmapIdx].Title
		for _, p := range phases {
			rels = append(rels, models.NewRelation(from, p.Title, models.RelationContains))
		}
	}

	// A phase implements-links every stage whose title carries its number.
	// The phase side is a plain substring test, so "Phase 12" also matches
	// a stage numbered 1; title-formatting discipline upstream is what
	// keeps the graph accurate.
	for _, s := range stages {
		m := phaseNumRe.FindStringSubmatch(s.Title)
		if m == nil {
			continue
		}
		needle := "Phase " + m[1]
		for _, p := range phases {
			if strings.Contains(p.Title, needle) {
				rels = append(rels, models.NewRelation(p.Title, s.Title, models.RelationImplements))
			}
		}
	}

	// A report completes the stage whose identifier appears in its title.
	for _, s := range stages {
		m := stageIDRe.FindStringSubmatch(s.Title)
		if m == nil {
			continue
		}
		for _, r := range reports {
			if strings.Contains(r.Title, m[1]) {
				rels = append(rels, models.NewRelation(s.Title, r.Title, models.RelationCompletedBy))
			}
		}
	}

	return rels
}

func firstIndex(docs []models.Document, c models.Category) int {
	for i, d := range docs {
		if d.Category == c {
			return i
		}
	}
	return -1
}
