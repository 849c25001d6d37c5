// Package sqlitepart implements the SQLite B-tree partitioner (spec.md
// §4.6): it reparses the on-disk SQLite file format directly — pages,
// cells, varints, overflow chains — without help from the database
// engine, so the partition output can be reassembled byte-for-byte.
//
// Structural bytes (headers, interior pages, index pages, cell pointer
// arrays, inter-cell slack, overflow-page link fields) are always
// assigned to the null bucket; only the bytes of a table-leaf cell are
// classified against caller policy, at row granularity.
package sqlitepart

import (
	"database/sql"
	"fmt"
	"os"
	"sort"

	"github.com/cryguy/secompress/principal"
)

// DataUnit is the smallest classifiable element of a SQLite database: one
// row of one table, decoded in column order. A column holding SQL NULL is
// represented by a nil entry at its position.
type DataUnit struct {
	Table string
	RowID int64
	Row   []any
}

// Fragment is one (bucket, bytes) pair in file order (page, then cell
// offset within the page).
type Fragment struct {
	Bucket string
	Data   []byte
}

// Partition reparses the SQLite database file at path and emits its
// contents as an ordered sequence of (bucket, bytes) fragments whose
// concatenation reproduces the file exactly.
//
// It first runs VACUUM (eliminating free-list pages) and then walks the
// file once, page by page, looking ahead via direct seeks to resolve
// table-interior children and overflow chains before the main loop
// reaches them.
func Partition(path string, access principal.AccessControl[DataUnit], partition principal.PartitionPolicy) ([]Fragment, error) {
	if err := vacuum(path); err != nil {
		return nil, err
	}

	pageToTable, err := schemaTableMap(path)
	if err != nil {
		return nil, err
	}
	columnsByTable, err := tableColumns(path, pageToTable)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sqlitepart: opening database file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("sqlitepart: stat: %w", err)
	}

	head := make([]byte, headerSize)
	if _, err := f.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("sqlitepart: reading header: %w", err)
	}
	hdr, err := parseHeader(head)
	if err != nil {
		return nil, err
	}
	if hdr.freelistCount != 0 {
		return nil, ErrFreePagesPresent
	}
	if hdr.reservedBytes != 0 {
		return nil, ErrReservedBytesUnsupported
	}

	nullBucket := partition(principal.Null())
	pageSize := hdr.pageSize
	pageCount := int(info.Size()) / pageSize

	overflowOwner := make(map[int]string)
	var frags []Fragment

	readPage := func(pageNum int) ([]byte, error) {
		buf := make([]byte, pageSize)
		if _, err := f.ReadAt(buf, int64(pageNum-1)*int64(pageSize)); err != nil {
			return nil, fmt.Errorf("sqlitepart: reading page %d: %w", pageNum, err)
		}
		return buf, nil
	}

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page, err := readPage(pageNum)
		if err != nil {
			return nil, err
		}

		if bucket, ok := overflowOwner[pageNum]; ok {
			frags = append(frags, Fragment{Bucket: bucket, Data: page})
			continue
		}

		bodyStart := 0
		if pageNum == 1 {
			frags = append(frags, Fragment{Bucket: nullBucket, Data: page[:headerSize]})
			bodyStart = headerSize
		}

		pageType := page[bodyStart]

		if pageType == pageTypeIndexLeaf || pageType == pageTypeIndexInterior {
			frags = append(frags, Fragment{Bucket: nullBucket, Data: page[bodyStart:]})
			continue
		}

		tableName, known := pageToTable[pageNum]
		if !known {
			return nil, ErrUnmappedPage
		}

		switch pageType {
		case pageTypeTableInterior:
			children := parseInteriorChildren(pageNum, page, bodyStart)
			if _, mapped := pageToTable[children[0]]; !mapped {
				if err := mapDescendants(f, pageSize, pageToTable, tableName, children); err != nil {
					return nil, err
				}
			}
			frags = append(frags, Fragment{Bucket: nullBucket, Data: page[bodyStart:]})

		case pageTypeTableLeaf:
			leafFrags, err := partitionLeafPage(page, bodyStart, pageSize, tableName, columnsByTable[tableName], nullBucket, overflowOwner, readPage, access, partition)
			if err != nil {
				return nil, err
			}
			frags = append(frags, leafFrags...)

		default:
			return nil, ErrUnknownPageType
		}
	}

	return mergeAdjacent(frags), nil
}

// parseInteriorChildren decodes a table-interior page's child page
// numbers: the cell pointer array yields left pointers, and the
// rightmost pointer lives at header bytes 8..11 relative to bodyStart.
func parseInteriorChildren(pageNum int, page []byte, bodyStart int) []int {
	numCells := be16(page[bodyStart+3 : bodyStart+5])
	rightmost := be32(page[bodyStart+8 : bodyStart+12])
	children := make([]int, 0, numCells+1)
	children = append(children, rightmost)

	ptrArray := page[bodyStart+12 : bodyStart+12+2*numCells]
	for i := 0; i < numCells; i++ {
		cellOffset := be16(ptrArray[i*2 : i*2+2])
		children = append(children, be32(page[cellOffset:cellOffset+4]))
	}
	return children
}

// mapDescendants transitively maps every page reachable from the given
// table-interior children to tableName, by following table-interior
// pages deeper via direct file seeks until only leaves remain.
func mapDescendants(f *os.File, pageSize int, pageToTable map[int]string, tableName string, children []int) error {
	queue := append([]int{}, children...)
	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]
		pageToTable[child] = tableName

		buf := make([]byte, pageSize)
		if _, err := f.ReadAt(buf, int64(child-1)*int64(pageSize)); err != nil {
			return fmt.Errorf("sqlitepart: reading page %d while mapping table %q: %w", child, tableName, err)
		}
		if buf[0] != pageTypeTableInterior {
			continue
		}
		queue = append(queue, parseInteriorChildren(child, buf, 0)...)
	}
	return nil
}

// partitionLeafPage implements spec.md §4.6.1: emit the page prefix under
// null, then classify each cell (following any overflow chain) against
// access and partition, in cell-offset order.
func partitionLeafPage(
	page []byte,
	bodyStart int,
	pageSize int,
	tableName string,
	columns []string,
	nullBucket string,
	overflowOwner map[int]string,
	readPage func(int) ([]byte, error),
	access principal.AccessControl[DataUnit],
	partition principal.PartitionPolicy,
) ([]Fragment, error) {
	numCells := be16(page[bodyStart+3 : bodyStart+5])
	contentOffsetRaw := be16(page[bodyStart+5 : bodyStart+7])
	if contentOffsetRaw == 0 {
		contentOffsetRaw = 65536
	}

	if numCells == 0 {
		return []Fragment{{Bucket: nullBucket, Data: page[bodyStart:]}}, nil
	}

	frags := []Fragment{{Bucket: nullBucket, Data: page[bodyStart:contentOffsetRaw]}}

	ptrArray := page[bodyStart+8 : bodyStart+8+2*numCells]
	offsets := make([]int, numCells)
	for i := 0; i < numCells; i++ {
		offsets[i] = be16(ptrArray[i*2 : i*2+2])
	}
	sort.Ints(offsets)
	if offsets[0] != contentOffsetRaw {
		return nil, ErrBadHeader
	}

	for i, cellStart := range offsets {
		cellEnd := len(page)
		if i+1 < len(offsets) {
			cellEnd = offsets[i+1]
		}
		cellData := page[cellStart:cellEnd]

		payloadSize, n1 := varintToInteger(page, cellStart)
		rowID, n2 := varintToInteger(page, cellStart+n1)
		payloadHeaderOffset := n1 + n2

		onPage := payloadOnPage(pageSize, int(payloadSize))
		payload := append([]byte{}, cellData[payloadHeaderOffset:payloadHeaderOffset+onPage]...)

		var overflowPages []int
		if onPage < int(payloadSize) {
			ptrOffset := cellStart + payloadHeaderOffset + onPage
			nextPage := be32(page[ptrOffset : ptrOffset+4])
			remaining := int(payloadSize) - onPage

			for nextPage != 0 {
				overflowPages = append(overflowPages, nextPage)
				ovf, err := readPage(nextPage)
				if err != nil {
					return nil, err
				}
				nextPage = be32(ovf[:4])
				if nextPage == 0 {
					payload = append(payload, ovf[4:4+remaining]...)
				} else {
					payload = append(payload, ovf[4:]...)
					remaining -= pageSize - 4
				}
			}
		}

		row, err := decodeRecord(payload)
		if err != nil {
			return nil, err
		}
		du := DataUnit{Table: tableName, RowID: rowID, Row: row}
		bucket := partition(access(du))

		frags = append(frags, Fragment{Bucket: bucket, Data: cellData})
		for _, op := range overflowPages {
			overflowOwner[op] = bucket
		}
	}

	_ = columns // column names are not required to decode positional values; kept for future attribute-based policies
	return frags, nil
}

// decodeRecord parses a cell's assembled payload per the record format:
// a payload-header varint giving the header's own length, followed by one
// serial-type varint per column, followed by the column content bytes.
func decodeRecord(payload []byte) ([]any, error) {
	headerSize, n := varintToInteger(payload, 0)
	var serialTypes []int64
	off := n
	for int64(off) < headerSize {
		st, stN := varintToInteger(payload, off)
		serialTypes = append(serialTypes, st)
		off += stN
	}

	recordOffset := int(headerSize)
	row := make([]any, 0, len(serialTypes))
	for _, st := range serialTypes {
		size := serialTypeSize(st)
		content := payload[recordOffset : recordOffset+size]
		row = append(row, decodeValue(st, content))
		recordOffset += size
	}
	return row, nil
}

// tableColumns resolves each table's declared column names via
// PRAGMA table_info. The names are passed to partitionLeafPage, which does
// not use them: DataUnit carries positional column values only.
func tableColumns(path string, pageToTable map[int]string) (map[string][]string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitepart: opening database for column info: %w", err)
	}
	defer db.Close()

	out := make(map[string][]string, len(pageToTable))
	for _, table := range pageToTable {
		if table == "sqlite_schema" {
			continue
		}
		if _, done := out[table]; done {
			continue
		}
		rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", table))
		if err != nil {
			return nil, fmt.Errorf("sqlitepart: reading column info for %q: %w", table, err)
		}
		var cols []string
		for rows.Next() {
			var (
				cid       int
				name      string
				ctype     string
				notNull   int
				dfltValue sql.NullString
				pk        int
			)
			if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
				rows.Close()
				return nil, err
			}
			cols = append(cols, name)
		}
		rows.Close()
		out[table] = cols
	}
	return out, nil
}

// mergeAdjacent coalesces consecutive fragments sharing a bucket, per
// spec.md §4.6.2: this changes nothing about the decoded bytes, only the
// granularity at which MSC sees stream-switch calls.
func mergeAdjacent(frags []Fragment) []Fragment {
	if len(frags) == 0 {
		return frags
	}
	out := make([]Fragment, 0, len(frags))
	out = append(out, Fragment{Bucket: frags[0].Bucket, Data: append([]byte{}, frags[0].Data...)})
	for _, f := range frags[1:] {
		last := &out[len(out)-1]
		if last.Bucket == f.Bucket {
			last.Data = append(last.Data, f.Data...)
			continue
		}
		out = append(out, Fragment{Bucket: f.Bucket, Data: append([]byte{}, f.Data...)})
	}
	return out
}
