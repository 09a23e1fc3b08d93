package parser

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestClassify_DirectoryWins(t *testing.T) {
	cases := map[string]models.Category{
		"docs/phases/phase1-foundation.md": models.CategoryPhase,
		"docs/stages/stage1_2-auth.md":     models.CategoryStage,
		"docs/reports/report1_2-auth.md":   models.CategoryReport,
		"docs/stages/progress.md":          models.CategoryStage,
		"docs/reports/client_spec.md":      models.CategoryReport,
	}
	for path, want := range cases {
		if got := Classify(path); got != want {
			t.Errorf("Classify(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestClassify_WellKnownFilenames(t *testing.T) {
	cases := map[string]models.Category{
		"docs/client_spec.md":     models.CategorySpec,
		"docs/project_roadmap.md": models.CategoryRoadmap,
		"docs/progress.md":        models.CategoryProgress,
	}
	for path, want := range cases {
		if got := Classify(path); got != want {
			t.Errorf("Classify(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestClassify_Fallback(t *testing.T) {
	if got := Classify("docs/notes/setup.md"); got != models.CategoryDocument {
		t.Errorf("Classify = %q, want %q", got, models.CategoryDocument)
	}
}

func TestClassify_SubstringAnywhereInPath(t *testing.T) {
	// Membership is a substring test on the whole relative path, so a
	// filename mentioning a well-known directory also matches.
	if got := Classify("docs/notes-about-phases.md"); got != models.CategoryPhase {
		t.Errorf("Classify = %q, want %q", got, models.CategoryPhase)
	}
}

func TestTitle_HeadingWins(t *testing.T) {
	content := "intro text\n\n# 🚧 STAGE 1.2: Auth Layer  \nbody"
	if got := Title("docs/stages/stage1_2-auth.md", content); got != "🚧 STAGE 1.2: Auth Layer" {
		t.Errorf("title = %q, want %q", got, "🚧 STAGE 1.2: Auth Layer")
	}
}

func TestTitle_FirstHeadingOfSeveral(t *testing.T) {
	content := "# First\ntext\n# Second\n"
	if got := Title("a.md", content); got != "First" {
		t.Errorf("title = %q, want %q", got, "First")
	}
}

func TestTitle_StemFallback(t *testing.T) {
	got := Title("docs/stages/stage1_2-authentication-layer.md", "no heading here")
	if got != "Stage1 2 Authentication Layer" {
		t.Errorf("title = %q, want %q", got, "Stage1 2 Authentication Layer")
	}
}

func TestTitle_HashWithoutSpaceIsNotHeading(t *testing.T) {
	if got := Title("docs/note.md", "#nospace\n"); got != "Note" {
		t.Errorf("title = %q, want %q", got, "Note")
	}
}

func TestExtract_ContentVerbatim(t *testing.T) {
	raw := "---\nupdated: \"x\"\n---\n# Progress Tracker\nbody\n"
	doc := Extract("docs/progress.md", []byte(raw))
	if doc.Content != raw {
		t.Errorf("content mutated: %q", doc.Content)
	}
	if doc.Category != models.CategoryProgress {
		t.Errorf("category = %q, want %q", doc.Category, models.CategoryProgress)
	}
	if doc.Title != "Progress Tracker" {
		t.Errorf("title = %q, want %q", doc.Title, "Progress Tracker")
	}
	if doc.Path != "docs/progress.md" {
		t.Errorf("path = %q", doc.Path)
	}
}
