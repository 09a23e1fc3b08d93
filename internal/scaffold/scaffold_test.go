package scaffold

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/layout"
	"github.com/starford/ansuz/internal/storage"
)

func setup(t *testing.T) (*storage.FS, *Service) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store, New(store, layout.Default())
}

func TestCreateStage(t *testing.T) {
	store, s := setup(t)

	rel, err := s.CreateStage(1, 2, "Auth Layer")
	if err != nil {
		t.Fatalf("CreateStage: %v", err)
	}
	if rel != "docs/stages/stage1_2-auth-layer.md" {
		t.Errorf("rel = %q", rel)
	}
	data, err := store.Read(rel)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# 🚧 STAGE 1.2: Auth Layer\n") {
		t.Errorf("heading missing: %q", content[:60])
	}
	if !strings.Contains(content, `phase="1"`) || !strings.Contains(content, `stage="2"`) {
		t.Errorf("memory-update block not rendered: %q", content)
	}
}

func TestCreateStage_RefusesOverwrite(t *testing.T) {
	store, s := setup(t)

	rel, err := s.CreateStage(1, 2, "Auth Layer")
	if err != nil {
		t.Fatalf("CreateStage: %v", err)
	}
	original, _ := store.Read(rel)

	_, err = s.CreateStage(1, 2, "Auth Layer")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
	got, _ := store.Read(rel)
	if string(got) != string(original) {
		t.Error("existing stage file was modified")
	}
}

func TestCreateStage_DiskTemplateOverride(t *testing.T) {
	store, s := setup(t)
	_ = store.Write("templates/stage_template.md", []byte("custom {{.Phase}}.{{.Stage}} {{.Name}}\n"))

	rel, err := s.CreateStage(3, 1, "Fuzzing")
	if err != nil {
		t.Fatalf("CreateStage: %v", err)
	}
	data, _ := store.Read(rel)
	if string(data) != "custom 3.1 Fuzzing\n" {
		t.Errorf("content = %q", data)
	}
}

func TestCreateReport_ExplicitName(t *testing.T) {
	store, s := setup(t)

	rel, name, err := s.CreateReport(1, 2, "Auth Layer")
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if rel != "docs/reports/report1_2-auth-layer.md" {
		t.Errorf("rel = %q", rel)
	}
	if name != "Auth Layer" {
		t.Errorf("name = %q", name)
	}
	data, _ := store.Read(rel)
	if !strings.HasPrefix(string(data), "# Stage 1.2: Auth Layer - Completion Report\n") {
		t.Errorf("heading missing: %q", string(data)[:60])
	}
}

func TestCreateReport_NameDerivedFromStageHeading(t *testing.T) {
	_, s := setup(t)
	if _, err := s.CreateStage(1, 2, "Auth Layer"); err != nil {
		t.Fatalf("CreateStage: %v", err)
	}

	rel, name, err := s.CreateReport(1, 2, "")
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if name != "Auth Layer" {
		t.Errorf("name = %q, want %q", name, "Auth Layer")
	}
	if rel != "docs/reports/report1_2-auth-layer.md" {
		t.Errorf("rel = %q", rel)
	}
}

func TestCreateReport_NameDerivedFromFilename(t *testing.T) {
	store, s := setup(t)
	_ = store.Write("docs/stages/stage1_2-auth-layer.md", []byte("no scaffolded heading here\n"))

	_, name, err := s.CreateReport(1, 2, "")
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if name != "Auth Layer" {
		t.Errorf("name = %q, want %q", name, "Auth Layer")
	}
}

func TestCreateReport_NoStageDocument(t *testing.T) {
	_, s := setup(t)
	_, _, err := s.CreateReport(4, 7, "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateReport_RefusesOverwrite(t *testing.T) {
	_, s := setup(t)
	if _, _, err := s.CreateReport(1, 2, "Auth Layer"); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	_, _, err := s.CreateReport(1, 2, "Auth Layer")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestEnsureSingletons(t *testing.T) {
	store, s := setup(t)

	created, err := s.EnsureSingletons()
	if err != nil {
		t.Fatalf("EnsureSingletons: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("created = %v, want 3 entries", created)
	}
	data, err := store.Read("docs/progress.md")
	if err != nil {
		t.Fatalf("Read progress: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "# Project Progress Log") ||
		!strings.Contains(content, "## Activity Log") {
		t.Errorf("progress content = %q", content)
	}
	if strings.Contains(content, "{{.Timestamp}}") {
		t.Error("timestamp placeholder not rendered")
	}

	// Second run leaves edited files alone.
	_ = store.Write("docs/progress.md", []byte("edited"))
	created, err = s.EnsureSingletons()
	if err != nil {
		t.Fatalf("EnsureSingletons: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created = %v, want none", created)
	}
	data, _ = store.Read("docs/progress.md")
	if string(data) != "edited" {
		t.Error("existing singleton overwritten")
	}
}

func TestWriteTemplates_PlaceholdersIntactAndRefreshed(t *testing.T) {
	store, s := setup(t)

	written, err := s.WriteTemplates()
	if err != nil {
		t.Fatalf("WriteTemplates: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("written = %v", written)
	}
	data, _ := store.Read("templates/stage_template.md")
	if !strings.Contains(string(data), "{{.Phase}}.{{.Stage}}: {{.Name}}") {
		t.Errorf("placeholders missing: %q", string(data)[:60])
	}

	// A modified template file is refreshed on the next run.
	_ = store.Write("templates/stage_template.md", []byte("stale"))
	if _, err := s.WriteTemplates(); err != nil {
		t.Fatalf("WriteTemplates: %v", err)
	}
	data, _ = store.Read("templates/stage_template.md")
	if string(data) == "stale" {
		t.Error("template file not refreshed")
	}
}

func TestEnsureReadme(t *testing.T) {
	store, s := setup(t)

	wrote, err := s.EnsureReadme()
	if err != nil {
		t.Fatalf("EnsureReadme: %v", err)
	}
	if !wrote {
		t.Error("expected README to be written")
	}
	_ = store.Write("README.md", []byte("mine"))
	wrote, err = s.EnsureReadme()
	if err != nil {
		t.Fatalf("EnsureReadme: %v", err)
	}
	if wrote {
		t.Error("existing README must be kept")
	}
}

func TestEnsureTree(t *testing.T) {
	store, s := setup(t)
	if err := s.EnsureTree(); err != nil {
		t.Fatalf("EnsureTree: %v", err)
	}
	for _, d := range []string{"docs", "templates", "docs/phases", "docs/stages", "docs/reports", ".cursor"} {
		ok, err := store.Exists(d)
		if err != nil || !ok {
			t.Errorf("dir %q: exists = %v, err = %v", d, ok, err)
		}
	}
}

func TestRegisterProject(t *testing.T) {
	store, s := setup(t)
	_ = store.MkdirAll(".cursor")

	err := s.RegisterProject("myproj", "/abs/root", "/mem/memory.jsonl",
		[]string{"npx", "-y", "@itseasy21/mcp-knowledge-graph"})
	if err != nil {
		t.Fatalf("RegisterProject: %v", err)
	}
	data, err := store.Read(".cursor/mcp.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		`"myproj"`,
		`"root": "/abs/root"`,
		`"MEMORY_FILE_PATH": "/mem/memory.jsonl"`,
		`"command": "npx"`,
		`"docs/phases/*.md"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("registry missing %q in %s", want, content)
		}
	}
}

func TestRegisterProject_PreservesOtherProjects(t *testing.T) {
	store, s := setup(t)
	_ = store.Write(".cursor/mcp.json", []byte(`{"projects":{"other":{"root":"/elsewhere"}}}`))

	if err := s.RegisterProject("myproj", "/abs/root", "/mem/memory.jsonl", []string{"npx"}); err != nil {
		t.Fatalf("RegisterProject: %v", err)
	}
	data, _ := store.Read(".cursor/mcp.json")
	if !strings.Contains(string(data), `"other"`) || !strings.Contains(string(data), `"/elsewhere"`) {
		t.Errorf("other project lost: %s", data)
	}
}

func TestRegisterProject_CorruptRegistryRebuilt(t *testing.T) {
	store, s := setup(t)
	_ = store.Write(".cursor/mcp.json", []byte("{not json"))

	if err := s.RegisterProject("myproj", "/abs/root", "/mem/memory.jsonl", []string{"npx"}); err != nil {
		t.Fatalf("RegisterProject: %v", err)
	}
	data, _ := store.Read(".cursor/mcp.json")
	if !strings.Contains(string(data), `"myproj"`) {
		t.Errorf("registry not rebuilt: %s", data)
	}
}
