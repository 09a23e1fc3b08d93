package graph

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func doc(title string, c models.Category) models.Document {
	return models.Document{Path: "docs/" + title + ".md", Title: title, Category: c, Content: "# " + title}
}

func TestInfer_Informs(t *testing.T) {
	docs := []models.Document{
		doc("Client Spec", models.CategorySpec),
		doc("Project Roadmap", models.CategoryRoadmap),
	}
	rels := Infer(docs)
	if len(rels) != 1 {
		t.Fatalf("len(rels) = %d, want 1", len(rels))
	}
	r := rels[0]
	if r.From != "Client Spec" || r.To != "Project Roadmap" || r.RelationType != models.RelationInforms {
		t.Errorf("relation = %+v", r)
	}
}

func TestInfer_InformsNeedsBoth(t *testing.T) {
	rels := Infer([]models.Document{doc("Client Spec", models.CategorySpec)})
	if len(rels) != 0 {
		t.Errorf("expected no relations, got %v", rels)
	}
}

func TestInfer_TracksEveryOtherDocument(t *testing.T) {
	docs := []models.Document{
		doc("Client Spec", models.CategorySpec),
		doc("Progress Tracker", models.CategoryProgress),
		doc("Notes", models.CategoryDocument),
		doc("More Notes", models.CategoryDocument),
	}
	rels := Infer(docs)
	var tracks []models.Relation
	for _, r := range rels {
		if r.RelationType == models.RelationTracks {
			tracks = append(tracks, r)
		}
	}
	if len(tracks) != len(docs)-1 {
		t.Fatalf("len(tracks) = %d, want %d", len(tracks), len(docs)-1)
	}
	for _, r := range tracks {
		if r.From != "Progress Tracker" {
			t.Errorf("tracks from = %q, want %q", r.From, "Progress Tracker")
		}
	}
	// Document order is preserved.
	if tracks[0].To != "Client Spec" || tracks[1].To != "Notes" || tracks[2].To != "More Notes" {
		t.Errorf("tracks order = %v", tracks)
	}
}

func TestInfer_TracksSkipsOnlyProgressItself(t *testing.T) {
	// Two documents with identical titles are tracked independently; only
	// the progress document's own position is excluded.
	docs := []models.Document{
		doc("Progress Tracker", models.CategoryProgress),
		doc("Notes", models.CategoryDocument),
		doc("Notes", models.CategoryDocument),
	}
	rels := Infer(docs)
	if len(rels) != 2 {
		t.Fatalf("len(rels) = %d, want 2", len(rels))
	}
	if rels[0].To != "Notes" || rels[1].To != "Notes" {
		t.Errorf("rels = %v", rels)
	}
}

func TestInfer_ContainsEachPhase(t *testing.T) {
	docs := []models.Document{
		doc("Project Roadmap", models.CategoryRoadmap),
		doc("Phase 1: Foundation", models.CategoryPhase),
		doc("Phase 2: Core", models.CategoryPhase),
	}
	rels := Infer(docs)
	var contains []models.Relation
	for _, r := range rels {
		if r.RelationType == models.RelationContains {
			contains = append(contains, r)
		}
	}
	if len(contains) != 2 {
		t.Fatalf("len(contains) = %d, want 2", len(contains))
	}
	if contains[0].To != "Phase 1: Foundation" || contains[1].To != "Phase 2: Core" {
		t.Errorf("contains = %v", contains)
	}
	for _, r := range contains {
		if r.From != "Project Roadmap" {
			t.Errorf("contains from = %q", r.From)
		}
	}
}

func TestInfer_ImplementsMatchesPhaseNumber(t *testing.T) {
	docs := []models.Document{
		doc("Phase 2: Core", models.CategoryPhase),
		doc("Stage 2.1: Auth", models.CategoryStage),
	}
	rels := Infer(docs)
	if len(rels) != 1 {
		t.Fatalf("len(rels) = %d, want 1", len(rels))
	}
	r := rels[0]
	if r.From != "Phase 2: Core" || r.To != "Stage 2.1: Auth" || r.RelationType != models.RelationImplements {
		t.Errorf("relation = %+v", r)
	}
}

func TestInfer_ImplementsNoPhaseMatch(t *testing.T) {
	docs := []models.Document{
		doc("Phase 2: Core", models.CategoryPhase),
		doc("Stage 9.1: Orphan", models.CategoryStage),
	}
	if rels := Infer(docs); len(rels) != 0 {
		t.Errorf("expected no relations, got %v", rels)
	}
}

func TestInfer_ImplementsIsSubstringMatch(t *testing.T) {
	// "Phase 12" contains "Phase 1", so a stage numbered 1 links to both.
	docs := []models.Document{
		doc("Phase 1: Foundation", models.CategoryPhase),
		doc("Phase 12: Polish", models.CategoryPhase),
		doc("Stage 1.1: Setup", models.CategoryStage),
	}
	rels := Infer(docs)
	if len(rels) != 2 {
		t.Fatalf("len(rels) = %d, want 2", len(rels))
	}
	if rels[0].From != "Phase 1: Foundation" || rels[1].From != "Phase 12: Polish" {
		t.Errorf("rels = %v", rels)
	}
}

func TestInfer_ImplementsUnderscoreSeparator(t *testing.T) {
	docs := []models.Document{
		doc("Phase 3: Hardening", models.CategoryPhase),
		doc("Stage 3_2: Fuzzing", models.CategoryStage),
	}
	rels := Infer(docs)
	if len(rels) != 1 || rels[0].RelationType != models.RelationImplements {
		t.Fatalf("rels = %v", rels)
	}
}

func TestInfer_CompletedByMatchesStageID(t *testing.T) {
	docs := []models.Document{
		doc("Stage 3.2: Setup", models.CategoryStage),
		doc("Stage 3.2: Setup - Completion Report", models.CategoryReport),
	}
	rels := Infer(docs)
	if len(rels) != 1 {
		t.Fatalf("len(rels) = %d, want 1", len(rels))
	}
	r := rels[0]
	if r.From != "Stage 3.2: Setup" || r.To != "Stage 3.2: Setup - Completion Report" || r.RelationType != models.RelationCompletedBy {
		t.Errorf("relation = %+v", r)
	}
}

func TestInfer_CompletedByMismatchedID(t *testing.T) {
	docs := []models.Document{
		doc("Stage 3.2: Setup", models.CategoryStage),
		doc("Stage 3.1: Setup - Completion Report", models.CategoryReport),
	}
	if rels := Infer(docs); len(rels) != 0 {
		t.Errorf("expected no relations, got %v", rels)
	}
}

func TestInfer_MalformedTitlesSkipSilently(t *testing.T) {
	docs := []models.Document{
		doc("Some Stage Without Numbers", models.CategoryStage),
		doc("Phase 1: Foundation", models.CategoryPhase),
		doc("A Report", models.CategoryReport),
	}
	if rels := Infer(docs); len(rels) != 0 {
		t.Errorf("expected no relations, got %v", rels)
	}
}

func TestInfer_RuleOrder(t *testing.T) {
	docs := []models.Document{
		doc("Client Spec", models.CategorySpec),
		doc("Project Roadmap", models.CategoryRoadmap),
		doc("Progress Tracker", models.CategoryProgress),
		doc("Phase 1: Foundation", models.CategoryPhase),
		doc("Stage 1.1: Setup", models.CategoryStage),
		doc("Stage 1.1: Setup - Completion Report", models.CategoryReport),
	}
	rels := Infer(docs)
	want := []string{
		models.RelationInforms,
		models.RelationTracks,
		models.RelationTracks,
		models.RelationTracks,
		models.RelationTracks,
		models.RelationTracks,
		models.RelationContains,
		models.RelationImplements,
		models.RelationCompletedBy,
	}
	if len(rels) != len(want) {
		t.Fatalf("len(rels) = %d, want %d", len(rels), len(want))
	}
	for i, r := range rels {
		if r.RelationType != want[i] {
			t.Errorf("rels[%d].RelationType = %q, want %q", i, r.RelationType, want[i])
		}
	}
}

func TestBuild_EntitiesInDocumentOrder(t *testing.T) {
	docs := []models.Document{
		doc("Project Roadmap", models.CategoryRoadmap),
		doc("Phase 1: Foundation", models.CategoryPhase),
	}
	g := Build(docs)
	if len(g.Entities) != 2 {
		t.Fatalf("len(entities) = %d, want 2", len(g.Entities))
	}
	if g.Entities[0].Name != "Project Roadmap" || g.Entities[1].Name != "Phase 1: Foundation" {
		t.Errorf("entities = %v", g.Entities)
	}
	if g.Entities[1].EntityType != "Phase" {
		t.Errorf("entityType = %q, want %q", g.Entities[1].EntityType, "Phase")
	}
	if len(g.Entities[0].Observations) != 1 || g.Entities[0].Observations[0] != "# Project Roadmap" {
		t.Errorf("observations = %v", g.Entities[0].Observations)
	}
	if len(g.Relations) != 1 {
		t.Errorf("len(relations) = %d, want 1", len(g.Relations))
	}
}
