// Package catalog flattens a Metastore's nested Database/Table tree into a
// single "db.table" lookup map, generalized from minidb's
// Catalog.deserialize walk, which rebuilds its flat name-to-offset map by
// scanning one binary catalog page rather than a directory tree of JSON
// descriptors.
package catalog

import (
	"fmt"

	"rowstore/internal/tablespace"
)

// Table pairs a Table descriptor with the Database that owns it.
type Table struct {
	Database tablespace.Database
	Table    tablespace.Table
}

// Catalog is the flat view of every table reachable from one Metastore.
type Catalog struct {
	Metastore tablespace.Metastore
	Tables    map[string]Table
}

// Build loads the metastore descriptor at metastorePath and walks it to
// populate Tables.
func Build(metastorePath string) (Catalog, error) {
	ms, err := tablespace.MetastoreFromFile(metastorePath)
	if err != nil {
		return Catalog{}, err
	}
	c := Catalog{Metastore: ms, Tables: make(map[string]Table)}
	if err := c.Refresh(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Refresh reloads the metastore from disk and rebuilds Tables from it.
func (c *Catalog) Refresh() error {
	ms, err := tablespace.MetastoreFromFile(c.Metastore.Location)
	if err != nil {
		return err
	}
	if err := ms.LoadDatabases(); err != nil {
		return err
	}
	c.Metastore = ms

	tables := make(map[string]Table)
	for _, dbName := range ms.ListDatabases() {
		db := ms.Databases[dbName]
		if err := db.LoadTables(); err != nil {
			return err
		}
		for _, tableName := range db.ListTables() {
			key := fmt.Sprintf("%s.%s", db.Name, tableName)
			tables[key] = Table{Database: db, Table: db.Tables[tableName]}
		}
	}
	c.Tables = tables
	return nil
}
