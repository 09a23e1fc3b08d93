// Package journal maintains the progress log through marker-based text
// splicing. Entries are inserted directly after a literal section heading;
// a missing heading grows a new section instead. The splice semantics are
// deliberately narrow so the log format can later move to structured
// sections without touching callers.
package journal

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/storage"
)

// Section markers matched literally, first occurrence only.
const (
	activityMarker   = "## Activity Log"
	syncMarker       = "## Memory Sync Log"
	completionMarker = "## Stage Completion Log"
	statusMarker     = "## Current Status"
)

// updatedRe matches a quoted front-matter style timestamp field; every
// occurrence in the log is refreshed on activity updates.
var updatedRe = regexp.MustCompile(`updated: ".*?"`)

// Journal edits the progress log of one project.
type Journal struct {
	store storage.Provider
	path  string
}

// New creates a Journal over the progress log at path (project-relative).
func New(store storage.Provider, path string) *Journal {
	return &Journal{store: store, path: path}
}

// AppendActivity records message in the Activity Log section. It reports
// false without error when the progress log does not exist. Messages with
// the "Sync" prefix also get a line in the Memory Sync Log section, and
// every updated:"..." field in the document is rewritten to the current
// timestamp.
func (j *Journal) AppendActivity(message string) (bool, error) {
	content, ok, err := j.load()
	if err != nil || !ok {
		return false, err
	}

	ts := timestamp()
	content = splice(content, activityMarker, "- "+ts+": "+message)
	if strings.HasPrefix(message, "Sync") {
		content = splice(content, syncMarker, "- "+ts+": Documentation synchronized")
	}
	content = updatedRe.ReplaceAllLiteralString(content, `updated: "`+ts+`"`)

	if err := j.store.Write(j.path, []byte(content)); err != nil {
		return false, fmt.Errorf("journal: %w", err)
	}
	return true, nil
}

// RecordCompletion records a stage completion line in the Stage Completion
// Log section. When that section is missing, it is created directly after
// Current Status if present, at end of file otherwise. No-op when the
// progress log does not exist.
func (j *Journal) RecordCompletion(phase, stage int, name string) (bool, error) {
	content, ok, err := j.load()
	if err != nil || !ok {
		return false, err
	}

	entry := fmt.Sprintf("- %s: Stage %d.%d: %s completed", timestamp(), phase, stage, name)
	switch {
	case strings.Contains(content, completionMarker):
		content = strings.Replace(content, completionMarker, completionMarker+"\n"+entry, 1)
	case strings.Contains(content, statusMarker):
		content = strings.Replace(content, statusMarker, statusMarker+"\n\n"+completionMarker+"\n"+entry, 1)
	default:
		content += "\n\n" + completionMarker + "\n" + entry
	}

	if err := j.store.Write(j.path, []byte(content)); err != nil {
		return false, fmt.Errorf("journal: %w", err)
	}
	return true, nil
}

func (j *Journal) load() (string, bool, error) {
	ok, err := j.store.Exists(j.path)
	if err != nil {
		return "", false, fmt.Errorf("journal: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	data, err := j.store.Read(j.path)
	if err != nil {
		return "", false, fmt.Errorf("journal: %w", err)
	}
	return string(data), true, nil
}

// splice inserts entry directly after the first occurrence of marker,
// appending a new section when the marker is absent.
func splice(content, marker, entry string) string {
	if strings.Contains(content, marker) {
		return strings.Replace(content, marker, marker+"\n"+entry, 1)
	}
	return content + "\n\n" + marker + "\n" + entry
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}
