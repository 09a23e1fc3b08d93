// Package scaffold creates framework documents from templates.
//
// Stage and report documents render from the disk templates under the
// project's templates directory when present, falling back to the built-in
// copies embedded in the binary. Singleton documents (spec, roadmap,
// progress) always render from the built-ins.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"regexp"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/layout"
	"github.com/starford/ansuz/internal/storage"
)

//go:embed templates/*.md
var builtins embed.FS

// stageHeadingRe extracts the stage name from the scaffolded heading line.
var stageHeadingRe = regexp.MustCompile(`# 🚧 STAGE \d+\.\d+: (.+)`)

// TemplateData is the value rendered into scaffold templates.
type TemplateData struct {
	Phase     int
	Stage     int
	Name      string
	Timestamp string
}

// Service scaffolds framework files inside one project.
type Service struct {
	store storage.Provider
	tree  layout.Tree
}

// New creates a scaffold Service over the given store and layout.
func New(store storage.Provider, tree layout.Tree) *Service {
	return &Service{store: store, tree: tree}
}

// CreateStage renders a new stage document named
// stage<phase>_<stage>-<slug>.md and returns its relative path. Fails with
// apperr.ErrAlreadyExists when the target file is present; the existing file
// is left untouched.
func (s *Service) CreateStage(phase, stage int, name string) (string, error) {
	if err := s.store.MkdirAll(s.tree.Stages()); err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	rel := path.Join(s.tree.Stages(), fmt.Sprintf("stage%d_%d-%s.md", phase, stage, slug(name)))
	exists, err := s.store.Exists(rel)
	if err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	if exists {
		return "", fmt.Errorf("scaffold: %s: %w", rel, apperr.ErrAlreadyExists)
	}

	content, err := s.render(s.tree.StageTemplate(), layout.StageTemplateFile, TemplateData{
		Phase: phase, Stage: stage, Name: name,
	})
	if err != nil {
		return "", err
	}
	if err := s.store.Write(rel, content); err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	return rel, nil
}

// CreateReport renders a completion report for phase.stage and returns its
// relative path together with the stage name used. An empty name is derived
// from the existing stage document: its scaffolded heading when present, the
// filename otherwise. Fails with apperr.ErrNotFound when no stage document
// exists to derive from, and with apperr.ErrAlreadyExists when the report is
// already present.
func (s *Service) CreateReport(phase, stage int, name string) (string, string, error) {
	if err := s.store.MkdirAll(s.tree.Reports()); err != nil {
		return "", "", fmt.Errorf("scaffold: %w", err)
	}
	if name == "" {
		derived, err := s.deriveStageName(phase, stage)
		if err != nil {
			return "", "", err
		}
		name = derived
	}

	rel := path.Join(s.tree.Reports(), fmt.Sprintf("report%d_%d-%s.md", phase, stage, slug(name)))
	exists, err := s.store.Exists(rel)
	if err != nil {
		return "", "", fmt.Errorf("scaffold: %w", err)
	}
	if exists {
		return "", "", fmt.Errorf("scaffold: %s: %w", rel, apperr.ErrAlreadyExists)
	}

	content, err := s.render(s.tree.ReportTemplate(), layout.ReportTemplateFile, TemplateData{
		Phase: phase, Stage: stage, Name: name,
	})
	if err != nil {
		return "", "", err
	}
	if err := s.store.Write(rel, content); err != nil {
		return "", "", fmt.Errorf("scaffold: %w", err)
	}
	return rel, name, nil
}

// EnsureTree creates the framework directories.
func (s *Service) EnsureTree() error {
	dirs := []string{
		s.tree.DocsDir,
		s.tree.TemplatesDir,
		s.tree.Phases(),
		s.tree.Stages(),
		s.tree.Reports(),
		path.Dir(layout.CursorConfigFile),
	}
	for _, d := range dirs {
		if err := s.store.MkdirAll(d); err != nil {
			return fmt.Errorf("scaffold: %w", err)
		}
	}
	return nil
}

// EnsureSingletons renders the spec, roadmap, and progress documents when
// missing and returns the relative paths it created. Existing files are
// never overwritten.
func (s *Service) EnsureSingletons() ([]string, error) {
	ts := time.Now().Format(time.RFC3339)
	singletons := []struct {
		rel     string
		builtin string
	}{
		{s.tree.Spec(), "client_spec.md"},
		{s.tree.Roadmap(), "project_roadmap.md"},
		{s.tree.Progress(), "progress.md"},
	}

	var created []string
	for _, sg := range singletons {
		exists, err := s.store.Exists(sg.rel)
		if err != nil {
			return created, fmt.Errorf("scaffold: %w", err)
		}
		if exists {
			continue
		}
		content, err := renderBuiltin(sg.builtin, TemplateData{Timestamp: ts})
		if err != nil {
			return created, err
		}
		if err := s.store.Write(sg.rel, content); err != nil {
			return created, fmt.Errorf("scaffold: %w", err)
		}
		created = append(created, sg.rel)
	}
	return created, nil
}

// WriteTemplates writes the stage and report template files, placeholders
// intact, and returns their relative paths. Stale copies are overwritten.
func (s *Service) WriteTemplates() ([]string, error) {
	files := []struct {
		rel     string
		builtin string
	}{
		{s.tree.StageTemplate(), layout.StageTemplateFile},
		{s.tree.ReportTemplate(), layout.ReportTemplateFile},
	}

	var written []string
	for _, f := range files {
		data, err := builtins.ReadFile("templates/" + f.builtin)
		if err != nil {
			return written, fmt.Errorf("scaffold: builtin template %s: %w", f.builtin, err)
		}
		if err := s.store.Write(f.rel, data); err != nil {
			return written, fmt.Errorf("scaffold: %w", err)
		}
		written = append(written, f.rel)
	}
	return written, nil
}

// EnsureReadme writes README.md when missing and reports whether it did.
func (s *Service) EnsureReadme() (bool, error) {
	exists, err := s.store.Exists("README.md")
	if err != nil {
		return false, fmt.Errorf("scaffold: %w", err)
	}
	if exists {
		return false, nil
	}
	data, err := builtins.ReadFile("templates/readme.md")
	if err != nil {
		return false, fmt.Errorf("scaffold: builtin template readme.md: %w", err)
	}
	if err := s.store.Write("README.md", data); err != nil {
		return false, fmt.Errorf("scaffold: %w", err)
	}
	return true, nil
}

// deriveStageName resolves the stage name for phase.stage from the first
// matching stage document.
func (s *Service) deriveStageName(phase, stage int) (string, error) {
	notFound := fmt.Errorf("scaffold: no stage document for stage %d.%d: %w", phase, stage, apperr.ErrNotFound)

	exists, err := s.store.Exists(s.tree.Stages())
	if err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	if !exists {
		return "", notFound
	}

	pattern := fmt.Sprintf("stage%d_%d*.md", phase, stage)
	matches, err := s.store.Glob(s.tree.Stages(), pattern)
	if err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	if len(matches) == 0 {
		return "", notFound
	}

	data, err := s.store.Read(matches[0])
	if err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	if m := stageHeadingRe.FindStringSubmatch(string(data)); m != nil {
		return m[1], nil
	}

	stem := strings.TrimSuffix(path.Base(matches[0]), ".md")
	if i := strings.Index(stem, "-"); i >= 0 {
		stem = stem[i+1:]
	}
	return cases.Title(language.English).String(strings.ReplaceAll(stem, "-", " ")), nil
}

// render loads the template at overridePath when it exists, the named
// builtin otherwise, and executes it with data.
func (s *Service) render(overridePath, builtin string, data TemplateData) ([]byte, error) {
	text, err := s.templateText(overridePath, builtin)
	if err != nil {
		return nil, err
	}
	return execute(builtin, text, data)
}

func (s *Service) templateText(overridePath, builtin string) (string, error) {
	exists, err := s.store.Exists(overridePath)
	if err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	if exists {
		data, err := s.store.Read(overridePath)
		if err != nil {
			return "", fmt.Errorf("scaffold: %w", err)
		}
		return string(data), nil
	}
	data, err := builtins.ReadFile("templates/" + builtin)
	if err != nil {
		return "", fmt.Errorf("scaffold: builtin template %s: %w", builtin, err)
	}
	return string(data), nil
}

func renderBuiltin(name string, data TemplateData) ([]byte, error) {
	text, err := builtins.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("scaffold: builtin template %s: %w", name, err)
	}
	return execute(name, string(text), data)
}

func execute(name, text string, data TemplateData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("scaffold: parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("scaffold: render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
