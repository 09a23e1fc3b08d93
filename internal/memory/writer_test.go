package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestResolve_PrefersAssistantWhenParentExists(t *testing.T) {
	dir := t.TempDir()
	assistantDir := filepath.Join(dir, "Claude", "proj")
	if err := os.MkdirAll(assistantDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	w := New(filepath.Join(assistantDir, "memory.jsonl"), filepath.Join(dir, "local", "memory.jsonl"))

	dest, err := w.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dest != filepath.Join(assistantDir, "memory.jsonl") {
		t.Errorf("dest = %q, want assistant path", dest)
	}
}

func TestResolve_FallsBackToLocal(t *testing.T) {
	dir := t.TempDir()
	w := New(
		filepath.Join(dir, "no-such-parent", "memory.jsonl"),
		filepath.Join(dir, "proj", ".ansuz", "memory.jsonl"),
	)

	dest, err := w.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dest != filepath.Join(dir, "proj", ".ansuz", "memory.jsonl") {
		t.Errorf("dest = %q, want local path", dest)
	}
	// The fallback's parent is created so the write can proceed.
	if _, err := os.Stat(filepath.Join(dir, "proj", ".ansuz")); err != nil {
		t.Errorf("parent not created: %v", err)
	}
}

func TestWrite_RecordShape(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "absent", "memory.jsonl"), filepath.Join(dir, "memory.jsonl"))

	entities := []models.Entity{{
		Type:         "entity",
		Name:         "Stage 1.1: Setup",
		EntityType:   "Stage",
		Observations: []string{"# Stage 1.1: Setup\nbody"},
	}}
	relations := []models.Relation{{
		Type:         "relation",
		From:         "Progress Tracker",
		To:           "Stage 1.1: Setup",
		RelationType: models.RelationTracks,
	}}

	dest, err := w.Write(entities, relations)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	wantEntity := `{"type":"entity","name":"Stage 1.1: Setup","entityType":"Stage","observations":["# Stage 1.1: Setup\nbody"]}`
	if lines[0] != wantEntity {
		t.Errorf("line[0] = %s, want %s", lines[0], wantEntity)
	}
	wantRelation := `{"type":"relation","from":"Progress Tracker","to":"Stage 1.1: Setup","relationType":"tracks"}`
	if lines[1] != wantRelation {
		t.Errorf("line[1] = %s, want %s", lines[1], wantRelation)
	}
}

func TestWrite_ReplacesPreviousContent(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "absent", "memory.jsonl"), filepath.Join(dir, "memory.jsonl"))

	many := []models.Entity{
		{Type: "entity", Name: "A", EntityType: "Document", Observations: []string{"a"}},
		{Type: "entity", Name: "B", EntityType: "Document", Observations: []string{"b"}},
	}
	if _, err := w.Write(many, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	one := many[:1]
	dest, err := w.Write(one, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(dest)
	if got := strings.Count(string(data), "\n"); got != 1 {
		t.Errorf("line count = %d, want 1", got)
	}
}

func TestTouch_CreatesAndPreserves(t *testing.T) {
	dir := t.TempDir()
	w := New(filepath.Join(dir, "absent", "memory.jsonl"), filepath.Join(dir, "memory.jsonl"))

	dest, err := w.Touch()
	if err != nil {
		t.Fatalf("Touch: %v", err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("size = %d, want 0", info.Size())
	}

	if err := os.WriteFile(dest, []byte("keep"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := w.Touch(); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "keep" {
		t.Errorf("content = %q, want %q", data, "keep")
	}
}

func TestDefaultLocalPath(t *testing.T) {
	got := DefaultLocalPath("/proj")
	if got != filepath.Join("/proj", ".ansuz", "memory.jsonl") {
		t.Errorf("path = %q", got)
	}
}
