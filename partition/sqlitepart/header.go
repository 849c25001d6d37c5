package sqlitepart

import (
	"database/sql"
	"encoding/binary"
	"fmt"

	// Pure-Go SQLite driver, the same one the teacher uses in d1.go to open
	// an isolated per-tenant database via database/sql.
	_ "github.com/glebarez/sqlite"
)

const (
	headerSize          = 100
	headerString         = "SQLite format 3\x00"
	pageSizeOffset       = 16
	reservedBytesOffset  = 20
	freelistCountOffset  = 36
	lockBytePageNumber   = 0x40000000
)

const (
	pageTypeIndexInterior = 0x02
	pageTypeTableInterior = 0x05
	pageTypeIndexLeaf     = 0x0A
	pageTypeTableLeaf     = 0x0D
)

// dbHeader is the parsed form of a SQLite file's 100-byte header.
type dbHeader struct {
	pageSize      int
	freelistCount uint32
	reservedBytes byte
}

func parseHeader(raw []byte) (dbHeader, error) {
	if len(raw) < headerSize || string(raw[:16]) != headerString {
		return dbHeader{}, ErrBadHeader
	}
	pageSize := int(binary.BigEndian.Uint16(raw[pageSizeOffset : pageSizeOffset+2]))
	if pageSize == 1 {
		// A stored page-size field of 1 denotes the maximum page size,
		// 65536, which does not fit in the 16-bit field directly.
		pageSize = 65536
	}
	return dbHeader{
		pageSize:      pageSize,
		freelistCount: binary.BigEndian.Uint32(raw[freelistCountOffset : freelistCountOffset+4]),
		reservedBytes: raw[reservedBytesOffset],
	}, nil
}

// vacuum runs VACUUM against the target database to eliminate free-list
// pages before the byte-exact page walk, per spec.md §4.6's precondition.
func vacuum(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlitepart: opening database for VACUUM: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("sqlitepart: VACUUM: %w", err)
	}
	return nil
}

// schemaTableMap reads sqlite_schema to build the initial root-page ->
// table-name map. Page 1 is always the sqlite_schema table itself.
func schemaTableMap(path string) (map[int]string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitepart: opening database for schema read: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name, rootpage FROM sqlite_schema WHERE type = 'table'`)
	if err != nil {
		return nil, fmt.Errorf("sqlitepart: querying sqlite_schema: %w", err)
	}
	defer rows.Close()

	pageToTable := map[int]string{1: "sqlite_schema"}
	for rows.Next() {
		var name string
		var rootPage int
		if err := rows.Scan(&name, &rootPage); err != nil {
			return nil, fmt.Errorf("sqlitepart: scanning sqlite_schema row: %w", err)
		}
		pageToTable[rootPage] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitepart: reading sqlite_schema: %w", err)
	}
	return pageToTable, nil
}

func be16(b []byte) int { return int(binary.BigEndian.Uint16(b)) }
func be32(b []byte) int { return int(binary.BigEndian.Uint32(b)) }
