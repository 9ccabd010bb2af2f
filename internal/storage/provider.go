// Package storage defines the vault file-system abstraction ideas are
// persisted in.
package storage

import "time"

// FileMeta describes one idea file in the vault.
type FileMeta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for vault file operations. Paths are relative
// to the vault root.
type Provider interface {
	// List returns metadata for every file with extension ext directly under the vault root.
	List(ext string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, replacing any existing file.
	Write(path string, content []byte) error
	// Create is Write for a path that must not exist yet (os.ErrExist otherwise).
	Create(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
