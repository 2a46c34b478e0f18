package tablespace

import (
	"encoding/json"
	"os"
	"path/filepath"

	"rowstore/internal/errs"
	"rowstore/internal/meta"
	"rowstore/internal/schema"
)

const databaseFileName = "database"

// Database is a named collection of Tables.
type Database struct {
	Name       string            `json:"name"`
	Location   string            `json:"location"`
	TablePaths map[string]string `json:"table_paths"`

	Tables map[string]Table `json:"-"`
	Meta   meta.Meta         `json:"-"`
}

// BuildDatabase creates location (and its .meta subdirectory) and
// persists a fresh Database descriptor there.
func BuildDatabase(name, location string) (Database, error) {
	if err := os.MkdirAll(location, 0o755); err != nil {
		return Database{}, errs.Wrapf(errs.KindFileIO, err, "creating database directory %q", location)
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return Database{}, errs.Wrapf(errs.KindFileIO, err, "resolving database directory %q", location)
	}

	m, err := meta.Build(filepath.Join(abs, metaFolder))
	if err != nil {
		return Database{}, err
	}

	d := Database{
		Name:       name,
		Location:   abs,
		TablePaths: make(map[string]string),
		Tables:     make(map[string]Table),
		Meta:       m,
	}
	if err := d.save(); err != nil {
		return Database{}, err
	}
	return d, nil
}

func (d *Database) save() error {
	b, err := json.Marshal(d)
	if err != nil {
		return errs.Wrap(errs.KindSerialization, err, "marshaling database descriptor")
	}
	return d.Meta.Save(databaseFileName, string(b))
}

// LoadTables rebuilds Tables from TablePaths.
func (d *Database) LoadTables() error {
	d.Tables = make(map[string]Table, len(d.TablePaths))
	for name, path := range d.TablePaths {
		t, err := TableFromFile(path)
		if err != nil {
			return err
		}
		d.Tables[name] = t
	}
	return nil
}

// NewTable creates a table under location (defaulting to Location/name)
// and registers it. ErrTablespaceObjectExists is returned if name is
// already registered.
func (d *Database) NewTable(name string, location *string, s schema.Schema) (Table, error) {
	if _, exists := d.TablePaths[name]; exists {
		return Table{}, errs.Newf(errs.KindTablespaceObjectExists, "table %q already exists", name)
	}

	loc := filepath.Join(d.Location, name)
	if location != nil {
		loc = *location
	}

	t, err := BuildTable(name, loc, s)
	if err != nil {
		return Table{}, err
	}

	d.TablePaths[name] = t.Location
	d.Tables[name] = t
	if err := d.save(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// DeleteTable removes a table's directory entirely and unregisters it.
func (d *Database) DeleteTable(name string) error {
	path, ok := d.TablePaths[name]
	if !ok {
		return errs.Newf(errs.KindTablespaceObjectNotFound, "table %q not found", name)
	}
	if err := os.RemoveAll(path); err != nil {
		return errs.Wrapf(errs.KindFileIO, err, "removing table directory %q", path)
	}
	delete(d.TablePaths, name)
	delete(d.Tables, name)
	return nil
}

// ListTables returns the names of every table registered in this
// database.
func (d Database) ListTables() []string {
	names := make([]string, 0, len(d.TablePaths))
	for name := range d.TablePaths {
		names = append(names, name)
	}
	return names
}

// AsJSON renders the persisted portion of the descriptor.
func (d Database) AsJSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", errs.Wrap(errs.KindSerialization, err, "marshaling database descriptor")
	}
	return string(b), nil
}

// DatabaseFromJSON parses a descriptor and rebuilds its meta directory
// handle.
func DatabaseFromJSON(s string) (Database, error) {
	var d Database
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return Database{}, errs.Wrap(errs.KindSerialization, err, "unmarshaling database descriptor")
	}
	m, err := meta.Build(filepath.Join(d.Location, metaFolder))
	if err != nil {
		return Database{}, err
	}
	d.Meta = m
	d.Tables = make(map[string]Table)
	return d, nil
}

// DatabaseFromFile loads a database descriptor from location/.meta/database.
func DatabaseFromFile(location string) (Database, error) {
	b, err := os.ReadFile(filepath.Join(location, metaFolder, databaseFileName))
	if err != nil {
		return Database{}, errs.Wrapf(errs.KindFileIO, err, "reading database descriptor under %q", location)
	}
	return DatabaseFromJSON(string(b))
}
