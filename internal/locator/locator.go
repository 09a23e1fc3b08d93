// Package locator discovers the documentation files of a project.
package locator

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/ansuz/internal/layout"
	"github.com/starford/ansuz/internal/storage"
)

// Locator walks the fixed documentation layout and yields file paths in
// extraction order.
type Locator struct {
	store    storage.Provider
	tree     layout.Tree
	excludes []string
}

// New creates a Locator over the given store. excludes are doublestar
// patterns matched against project-relative paths; matching files are
// dropped from the result.
func New(store storage.Provider, tree layout.Tree, excludes []string) *Locator {
	return &Locator{store: store, tree: tree, excludes: excludes}
}

// Locate returns the documentation files in extraction order: the three
// singleton files first (spec, roadmap, progress; absent ones skipped), then
// every .md file under the phases, stages, and reports directories. Directory
// walks are lexical, which keeps the order stable across runs.
func (l *Locator) Locate() ([]string, error) {
	var out []string

	for _, p := range []string{l.tree.Spec(), l.tree.Roadmap(), l.tree.Progress()} {
		ok, err := l.store.Exists(p)
		if err != nil {
			return nil, fmt.Errorf("locator: %w", err)
		}
		if ok {
			out = append(out, p)
		}
	}

	for _, dir := range []string{l.tree.Phases(), l.tree.Stages(), l.tree.Reports()} {
		ok, err := l.store.Exists(dir)
		if err != nil {
			return nil, fmt.Errorf("locator: %w", err)
		}
		if !ok {
			continue
		}
		files, err := l.store.List(dir)
		if err != nil {
			return nil, fmt.Errorf("locator: %w", err)
		}
		out = append(out, files...)
	}

	kept := make([]string, 0, len(out))
	for _, p := range out {
		skip, err := l.excluded(p)
		if err != nil {
			return nil, err
		}
		if !skip {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

func (l *Locator) excluded(p string) (bool, error) {
	for _, pat := range l.excludes {
		ok, err := doublestar.Match(pat, p)
		if err != nil {
			return false, fmt.Errorf("locator: exclude pattern %q: %w", pat, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
