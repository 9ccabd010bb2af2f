package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/socialgram/internal/checksum"
)

const tmpPattern = ".socialgram-tmp-*"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the vault root and rejects
// anything that is not a plain file name directly under it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	if cleaned != filepath.Base(cleaned) || cleaned == ".." || cleaned == "." {
		return "", fmt.Errorf("storage: path escapes vault root: %s", rel)
	}
	return filepath.Join(f.root, cleaned), nil
}

// List returns metadata for every file ending in ext in the vault root.
func (f *FS) List(ext string) ([]FileMeta, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []FileMeta
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", name, err)
		}
		data, err := os.ReadFile(filepath.Join(f.root, name))
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", name, err)
		}
		out = append(out, FileMeta{
			Path:      name,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces the file at path with content.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	tmpName, err := f.stage(content)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, abs); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Create atomically writes content to path only if no file exists there.
// An existing file yields an error matching os.ErrExist.
func (f *FS) Create(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	tmpName, err := f.stage(content)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName)
	// link(2) fails when the target exists, unlike rename.
	if err := os.Link(tmpName, abs); err != nil {
		return fmt.Errorf("storage: create %s: %w", path, err)
	}
	return nil
}

// stage writes content to a synced temp file in the vault root and returns
// its name.
func (f *FS) stage(content []byte) (string, error) {
	tmp, err := os.CreateTemp(f.root, tmpPattern)
	if err != nil {
		return "", fmt.Errorf("storage: create temp: %w", err)
	}
	name := tmp.Name()
	fail := func(step string, err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("storage: %s: %w", step, err)
	}
	if _, err := tmp.Write(content); err != nil {
		return fail("write temp", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("fsync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("storage: close temp: %w", err)
	}
	return name, nil
}

// Delete removes a file from the vault.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}
