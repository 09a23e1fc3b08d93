// Package storage defines the project file-system abstraction.
package storage

// Provider is the interface for project file operations. All paths are
// slash-separated and relative to the project root.
type Provider interface {
	// List returns the relative path of every .md regular file under dir,
	// recursively, in lexical traversal order.
	List(dir string) ([]string, error)
	// Glob returns the relative path of every direct child of dir whose
	// name matches pattern, in lexical order.
	Glob(dir, pattern string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether path names an existing file or directory.
	Exists(path string) (bool, error)
	// Delete removes the file at path.
	Delete(path string) error
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
}
