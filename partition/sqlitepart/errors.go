package sqlitepart

import "errors"

// Unsupported-but-defined errors (spec.md §7.3): the input is a valid
// SQLite file, but this partitioner's byte-exact guarantee cannot be made
// for it.
var (
	// ErrFreePagesPresent is returned when, after VACUUM, the header's
	// free-page count is still non-zero — leaking through free pages is
	// unsafe, since their stale contents are not accounted for by any
	// bucket.
	ErrFreePagesPresent = errors.New("sqlitepart: database still has free pages after VACUUM")

	// ErrReservedBytesUnsupported is returned when header byte 20
	// ("reserved bytes per page") is non-zero.
	ErrReservedBytesUnsupported = errors.New("sqlitepart: reserved bytes per page is unsupported")
)

// Format errors: the input does not parse as the SQLite file format this
// partitioner understands.
var (
	// ErrBadHeader is returned when the first 16 bytes of the file are not
	// the SQLite format 3 magic string, and when a table-leaf page's
	// smallest cell offset differs from the cell-content offset in its
	// page header.
	ErrBadHeader = errors.New("sqlitepart: not a SQLite format 3 database file")

	// ErrUnknownPageType is returned when a page's type byte is none of
	// the four page types this format defines.
	ErrUnknownPageType = errors.New("sqlitepart: unknown b-tree page type")

	// ErrUnmappedPage is returned when a table-leaf or table-interior page
	// is reached that sqlite_schema traversal never assigned to a table.
	// This should not happen for a well-formed database file.
	ErrUnmappedPage = errors.New("sqlitepart: page not reachable from sqlite_schema")
)
