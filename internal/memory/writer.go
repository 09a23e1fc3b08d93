// Package memory serializes the knowledge graph to a newline-delimited JSON
// file consumed by knowledge-graph MCP servers.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/ansuz/internal/models"
)

// Writer persists entities and relations to the memory file. Paths are
// absolute: the preferred destination usually lives outside the project
// root, in the assistant's own configuration directory.
type Writer struct {
	assistantPath string
	localPath     string
}

// New creates a Writer. assistantPath is preferred whenever its parent
// directory exists on this host; localPath is the in-project fallback.
func New(assistantPath, localPath string) *Writer {
	return &Writer{assistantPath: assistantPath, localPath: localPath}
}

// Resolve picks the destination file and creates its parent directory.
func (w *Writer) Resolve() (string, error) {
	dest := w.localPath
	if _, err := os.Stat(filepath.Dir(w.assistantPath)); err == nil {
		dest = w.assistantPath
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("memory: create parent: %w", err)
	}
	return dest, nil
}

// Touch ensures the destination file exists without altering its content,
// and returns its path.
func (w *Writer) Touch() (string, error) {
	dest, err := w.Resolve()
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return "", fmt.Errorf("memory: touch %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("memory: touch %s: %w", dest, err)
	}
	return dest, nil
}

// Write fully replaces the destination with one JSON record per line,
// entities first, then relations. The write is a plain truncate-and-write:
// the file is regenerated on every sync, so a crash mid-write costs nothing
// durable. Returns the destination path.
func (w *Writer) Write(entities []models.Entity, relations []models.Relation) (string, error) {
	dest, err := w.Resolve()
	if err != nil {
		return "", err
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("memory: create %s: %w", dest, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, e := range entities {
		if err := enc.Encode(e); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("memory: encode entity %q: %w", e.Name, err)
		}
	}
	for _, r := range relations {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("memory: encode relation: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("memory: close %s: %w", dest, err)
	}
	return dest, nil
}

// DefaultAssistantPath returns the per-assistant memory location for a
// project: <user config dir>/Claude/<project>/memory.jsonl.
func DefaultAssistantPath(project string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = filepath.Join(os.TempDir(), "ansuz")
	}
	return filepath.Join(base, "Claude", project, "memory.jsonl")
}

// DefaultLocalPath returns the in-project fallback location.
func DefaultLocalPath(root string) string {
	return filepath.Join(root, ".ansuz", "memory.jsonl")
}
