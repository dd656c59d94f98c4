// Package sqlite selects the SQLite driver used by the catalog.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite (driver "sqlite")
//   - -tags cgo_sqlite with CGO_ENABLED=1: mattn/go-sqlite3 (driver "sqlite3")
//
// Use Open instead of sql.Open so the compiled-in driver is picked.
package sqlite

import (
	"database/sql"
	"strings"
)

// DriverName returns the database/sql driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns "cgo" or "purego".
func DriverType() string {
	return driverType
}

// IsCGO reports whether the mattn/go-sqlite3 driver is compiled in.
func IsCGO() bool {
	return driverType == "cgo"
}

// Memory is the data source name of a private in-memory database.
const Memory = ":memory:"

// Open opens a SQLite database. An in-memory database is limited to one
// connection, since every connection would otherwise see its own empty
// database.
func Open(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if isMemory(dataSourceName) {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenReadOnly opens the database file at path in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open("file:" + path + "?mode=ro")
}

func isMemory(dsn string) bool {
	return dsn == Memory || strings.Contains(dsn, "mode=memory")
}

// Info describes the compiled-in driver.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns information about the current SQLite configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
