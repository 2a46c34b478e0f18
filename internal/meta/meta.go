// Package meta implements the blob directory every Database, Table, and
// Metastore descriptor keeps under its own ".meta" folder: named files
// holding a JSON snapshot of the owning object, addressable by name.
// Generalized from minidb's internal/storage/disk.go create-or-open path
// handling, here turned into a directory of independent named blobs
// rather than one size-bounded page file.
package meta

import (
	"os"
	"path/filepath"

	"rowstore/internal/errs"
)

// Meta tracks the files present under one directory.
type Meta struct {
	Location  string
	metaPaths map[string]string
}

// Build creates location if needed and loads the set of files already
// present there.
func Build(location string) (Meta, error) {
	if err := os.MkdirAll(location, 0o755); err != nil {
		return Meta{}, errs.Wrapf(errs.KindFileIO, err, "creating meta directory %q", location)
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return Meta{}, errs.Wrapf(errs.KindFileIO, err, "resolving meta directory %q", location)
	}

	m := Meta{Location: abs, metaPaths: make(map[string]string)}
	if err := m.loadMetaPaths(); err != nil {
		return Meta{}, err
	}
	return m, nil
}

func (m *Meta) loadMetaPaths() error {
	entries, err := os.ReadDir(m.Location)
	if err != nil {
		return errs.Wrapf(errs.KindFileIO, err, "reading meta directory %q", m.Location)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m.metaPaths[entry.Name()] = filepath.Join(m.Location, entry.Name())
	}
	return nil
}

// Save writes content to a file named name under Location, creating or
// truncating it, and tracks the path for later Load/Delete/List calls.
func (m *Meta) Save(name, content string) error {
	path := filepath.Join(m.Location, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errs.Wrapf(errs.KindFileIO, err, "writing meta file %q", path)
	}
	m.metaPaths[name] = path
	return nil
}

// Load returns the content of a previously saved file.
// ErrTablespaceObjectNotFound is returned when name has not been saved.
func (m Meta) Load(name string) (string, error) {
	path, ok := m.metaPaths[name]
	if !ok {
		return "", errs.Newf(errs.KindTablespaceObjectNotFound, "meta object %q not found", name)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrapf(errs.KindFileIO, err, "reading meta file %q", path)
	}
	return string(content), nil
}

// Delete removes a previously saved file.
func (m *Meta) Delete(name string) error {
	path, ok := m.metaPaths[name]
	if !ok {
		return errs.Newf(errs.KindTablespaceObjectNotFound, "meta object %q not found", name)
	}
	if err := os.Remove(path); err != nil {
		return errs.Wrapf(errs.KindFileIO, err, "removing meta file %q", path)
	}
	delete(m.metaPaths, name)
	return nil
}

// List returns the names of every file currently tracked.
func (m Meta) List() []string {
	names := make([]string, 0, len(m.metaPaths))
	for name := range m.metaPaths {
		names = append(names, name)
	}
	return names
}
