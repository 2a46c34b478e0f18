package tablespace

import (
	"encoding/json"
	"os"
	"path/filepath"

	"rowstore/internal/errs"
	"rowstore/internal/meta"
)

const metastoreFileName = "metastore"

// Metastore is the root of the tablespace: a named collection of
// Databases.
type Metastore struct {
	Location      string            `json:"location"`
	DatabasePaths map[string]string `json:"database_paths"`

	Databases map[string]Database `json:"-"`
	Meta      meta.Meta            `json:"-"`
}

// BuildMetastore creates location (and its .meta subdirectory) and
// persists a fresh Metastore descriptor there.
func BuildMetastore(location string) (Metastore, error) {
	if err := os.MkdirAll(location, 0o755); err != nil {
		return Metastore{}, errs.Wrapf(errs.KindFileIO, err, "creating metastore directory %q", location)
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return Metastore{}, errs.Wrapf(errs.KindFileIO, err, "resolving metastore directory %q", location)
	}

	m, err := meta.Build(filepath.Join(abs, metaFolder))
	if err != nil {
		return Metastore{}, err
	}

	ms := Metastore{
		Location:      abs,
		DatabasePaths: make(map[string]string),
		Databases:     make(map[string]Database),
		Meta:          m,
	}
	if err := ms.save(); err != nil {
		return Metastore{}, err
	}
	return ms, nil
}

func (ms *Metastore) save() error {
	b, err := json.Marshal(ms)
	if err != nil {
		return errs.Wrap(errs.KindSerialization, err, "marshaling metastore descriptor")
	}
	return ms.Meta.Save(metastoreFileName, string(b))
}

// LoadDatabases rebuilds Databases from DatabasePaths.
func (ms *Metastore) LoadDatabases() error {
	ms.Databases = make(map[string]Database, len(ms.DatabasePaths))
	for name, path := range ms.DatabasePaths {
		d, err := DatabaseFromFile(path)
		if err != nil {
			return err
		}
		ms.Databases[name] = d
	}
	return nil
}

// NewDatabase creates a database under location (defaulting to
// Location/name) and registers it. ErrTablespaceObjectExists is returned
// if name is already registered.
func (ms *Metastore) NewDatabase(name string, location *string) (Database, error) {
	if _, exists := ms.DatabasePaths[name]; exists {
		return Database{}, errs.Newf(errs.KindTablespaceObjectExists, "database %q already exists", name)
	}

	loc := filepath.Join(ms.Location, name)
	if location != nil {
		loc = *location
	}

	d, err := BuildDatabase(name, loc)
	if err != nil {
		return Database{}, err
	}

	ms.DatabasePaths[name] = d.Location
	ms.Databases[name] = d
	if err := ms.save(); err != nil {
		return Database{}, err
	}
	return d, nil
}

// DeleteDatabase removes a database's directory entirely and unregisters
// it.
func (ms *Metastore) DeleteDatabase(name string) error {
	path, ok := ms.DatabasePaths[name]
	if !ok {
		return errs.Newf(errs.KindTablespaceObjectNotFound, "database %q not found", name)
	}
	if err := os.RemoveAll(path); err != nil {
		return errs.Wrapf(errs.KindFileIO, err, "removing database directory %q", path)
	}
	delete(ms.DatabasePaths, name)
	delete(ms.Databases, name)
	return nil
}

// ListDatabases returns the names of every database registered in this
// metastore.
func (ms Metastore) ListDatabases() []string {
	names := make([]string, 0, len(ms.DatabasePaths))
	for name := range ms.DatabasePaths {
		names = append(names, name)
	}
	return names
}

// AsJSON renders the persisted portion of the descriptor.
func (ms Metastore) AsJSON() (string, error) {
	b, err := json.Marshal(ms)
	if err != nil {
		return "", errs.Wrap(errs.KindSerialization, err, "marshaling metastore descriptor")
	}
	return string(b), nil
}

// MetastoreFromJSON parses a descriptor and rebuilds its meta directory
// handle.
func MetastoreFromJSON(s string) (Metastore, error) {
	var ms Metastore
	if err := json.Unmarshal([]byte(s), &ms); err != nil {
		return Metastore{}, errs.Wrap(errs.KindSerialization, err, "unmarshaling metastore descriptor")
	}
	m, err := meta.Build(filepath.Join(ms.Location, metaFolder))
	if err != nil {
		return Metastore{}, err
	}
	ms.Meta = m
	ms.Databases = make(map[string]Database)
	return ms, nil
}

// MetastoreFromFile loads a metastore descriptor from
// location/.meta/metastore.
func MetastoreFromFile(location string) (Metastore, error) {
	b, err := os.ReadFile(filepath.Join(location, metaFolder, metastoreFileName))
	if err != nil {
		return Metastore{}, errs.Wrapf(errs.KindFileIO, err, "reading metastore descriptor under %q", location)
	}
	return MetastoreFromJSON(string(b))
}
