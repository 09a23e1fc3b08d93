// Package parser classifies documentation files and derives their display titles.
package parser

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/ansuz/internal/models"
)

var headingRe = regexp.MustCompile(`(?m)^# (.+)$`)

// Extract builds the Document record for one file. relPath is the
// slash-separated path relative to the project root; data is the raw file
// content, kept verbatim.
func Extract(relPath string, data []byte) models.Document {
	content := string(data)
	return models.Document{
		Path:     relPath,
		Title:    Title(relPath, content),
		Category: Classify(relPath),
		Content:  content,
	}
}

// Classify maps a project-relative path to a document category. Directory
// membership is checked before well-known filenames, so a file named
// progress.md that lives under stages/ counts as a stage.
func Classify(relPath string) models.Category {
	switch {
	case strings.Contains(relPath, "phases"):
		return models.CategoryPhase
	case strings.Contains(relPath, "stages"):
		return models.CategoryStage
	case strings.Contains(relPath, "reports"):
		return models.CategoryReport
	}
	switch path.Base(relPath) {
	case "client_spec.md":
		return models.CategorySpec
	case "project_roadmap.md":
		return models.CategoryRoadmap
	case "progress.md":
		return models.CategoryProgress
	}
	return models.CategoryDocument
}

// Title derives the display title: the first H1 heading when present,
// otherwise the filename stem with separators spaced out and title-cased.
func Title(relPath, content string) string {
	if m := headingRe.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return stemTitle(relPath)
}

func stemTitle(relPath string) string {
	stem := strings.TrimSuffix(path.Base(relPath), ".md")
	stem = strings.ReplaceAll(stem, "-", " ")
	stem = strings.ReplaceAll(stem, "_", " ")
	return cases.Title(language.English).String(stem)
}
