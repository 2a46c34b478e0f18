// Package tablespace implements the Database/Table/Metastore hierarchy: a
// tree of JSON-descriptor directories under which Files live, generalized
// from minidb's single binary catalog page (internal/storage's Catalog,
// which records one flat table-name-to-page-offset map) into the three
// nested levels this specification's tablespace requires.
package tablespace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"rowstore/internal/errs"
	"rowstore/internal/meta"
	"rowstore/internal/schema"
)

const metaFolder = ".meta"
const tableFileName = "table"

// Table is one schema-bound collection of Files, tracked by monotonically
// numbered file names.
type Table struct {
	Name     string        `json:"name"`
	Schema   schema.Schema `json:"schema"`
	Location string        `json:"location"`

	FilePaths map[string]string `json:"-"`
	Meta      meta.Meta         `json:"-"`
}

// BuildTable creates location (and its .meta subdirectory) and persists a
// fresh Table descriptor there.
func BuildTable(name, location string, s schema.Schema) (Table, error) {
	if err := os.MkdirAll(location, 0o755); err != nil {
		return Table{}, errs.Wrapf(errs.KindFileIO, err, "creating table directory %q", location)
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return Table{}, errs.Wrapf(errs.KindFileIO, err, "resolving table directory %q", location)
	}

	m, err := meta.Build(filepath.Join(abs, metaFolder))
	if err != nil {
		return Table{}, err
	}

	t := Table{
		Name:      name,
		Schema:    s,
		Location:  abs,
		FilePaths: make(map[string]string),
		Meta:      m,
	}
	if err := t.save(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (t *Table) save() error {
	b, err := json.Marshal(t)
	if err != nil {
		return errs.Wrap(errs.KindSerialization, err, "marshaling table descriptor")
	}
	return t.Meta.Save(tableFileName, string(b))
}

// LoadFilePaths refreshes FilePaths from the files actually present under
// Location.
func (t *Table) LoadFilePaths() error {
	entries, err := os.ReadDir(t.Location)
	if err != nil {
		return errs.Wrapf(errs.KindFileIO, err, "reading table directory %q", t.Location)
	}
	t.FilePaths = make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		t.FilePaths[entry.Name()] = filepath.Join(t.Location, entry.Name())
	}
	return nil
}

// NewFile creates an empty, monotonically named file under Location and
// returns its name and path.
func (t *Table) NewFile() (string, string, error) {
	name := t.nextFileName()
	path := filepath.Join(t.Location, name)
	f, err := os.Create(path)
	if err != nil {
		return "", "", errs.Wrapf(errs.KindFileIO, err, "creating file %q", path)
	}
	f.Close()

	t.FilePaths[name] = path
	if err := t.save(); err != nil {
		return "", "", err
	}
	return name, path, nil
}

// DeleteFile removes a file previously created with NewFile.
func (t *Table) DeleteFile(name string) error {
	path, ok := t.FilePaths[name]
	if !ok {
		return errs.Newf(errs.KindTablespaceObjectNotFound, "file %q not found", name)
	}
	if err := os.Remove(path); err != nil {
		return errs.Wrapf(errs.KindFileIO, err, "removing file %q", path)
	}
	delete(t.FilePaths, name)
	return t.save()
}

// ListFiles returns the names of every file tracked under this table.
func (t Table) ListFiles() []string {
	names := make([]string, 0, len(t.FilePaths))
	for name := range t.FilePaths {
		names = append(names, name)
	}
	return names
}

func (t Table) nextFileName() string {
	max := -1
	for name := range t.FilePaths {
		if n, err := strconv.Atoi(name); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// AsJSON renders the persisted portion of the descriptor.
func (t Table) AsJSON() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", errs.Wrap(errs.KindSerialization, err, "marshaling table descriptor")
	}
	return string(b), nil
}

// TableFromJSON parses a descriptor and rebuilds its meta directory handle.
func TableFromJSON(s string) (Table, error) {
	var t Table
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return Table{}, errs.Wrap(errs.KindSerialization, err, "unmarshaling table descriptor")
	}
	m, err := meta.Build(filepath.Join(t.Location, metaFolder))
	if err != nil {
		return Table{}, err
	}
	t.Meta = m
	t.FilePaths = make(map[string]string)
	return t, nil
}

// TableFromFile loads a table descriptor from location/.meta/table.
func TableFromFile(location string) (Table, error) {
	b, err := os.ReadFile(filepath.Join(location, metaFolder, tableFileName))
	if err != nil {
		return Table{}, errs.Wrapf(errs.KindFileIO, err, "reading table descriptor under %q", location)
	}
	return TableFromJSON(string(b))
}
