// Package layout fixes the on-disk layout of a managed project.
package layout

import "path"

// Well-known names inside a managed project.
const (
	SpecFile     = "client_spec.md"
	RoadmapFile  = "project_roadmap.md"
	ProgressFile = "progress.md"

	PhasesDir  = "phases"
	StagesDir  = "stages"
	ReportsDir = "reports"

	StageTemplateFile  = "stage_template.md"
	ReportTemplateFile = "report_template.md"

	CursorConfigFile = ".cursor/mcp.json"
)

// Tree locates the framework directories relative to the project root.
// TemplatesDir is a sibling of DocsDir, not nested under it.
type Tree struct {
	DocsDir      string
	TemplatesDir string
}

// Default returns the conventional layout: docs/ and templates/ at the
// project root.
func Default() Tree {
	return Tree{DocsDir: "docs", TemplatesDir: "templates"}
}

func (t Tree) Spec() string     { return path.Join(t.DocsDir, SpecFile) }
func (t Tree) Roadmap() string  { return path.Join(t.DocsDir, RoadmapFile) }
func (t Tree) Progress() string { return path.Join(t.DocsDir, ProgressFile) }
func (t Tree) Phases() string   { return path.Join(t.DocsDir, PhasesDir) }
func (t Tree) Stages() string   { return path.Join(t.DocsDir, StagesDir) }
func (t Tree) Reports() string  { return path.Join(t.DocsDir, ReportsDir) }

func (t Tree) StageTemplate() string  { return path.Join(t.TemplatesDir, StageTemplateFile) }
func (t Tree) ReportTemplate() string { return path.Join(t.TemplatesDir, ReportTemplateFile) }
