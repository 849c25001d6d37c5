package sqlitepart

import "math"

// varintToInteger decodes a SQLite variable-length integer starting at
// offset off in buf. It returns the decoded value, the number of bytes
// consumed, and mirrors the original parser byte-for-byte: up to 8 bytes
// contribute 7 bits each, and the 9th byte (if reached) contributes all 8
// bits unshifted, exactly as the file format defines it. No bytes beyond
// the 9th are ever consumed.
func varintToInteger(buf []byte, off int) (value int64, n int) {
	var result int64
	for i := 0; i < 8; i++ {
		b := buf[off+i]
		result = (result << 7) | int64(b&0x7F)
		if b&0x80 == 0 {
			return result, i + 1
		}
	}
	// 9th byte: all 8 bits, no continuation bit semantics.
	result = (result << 8) | int64(buf[off+8])
	return result, 9
}

// payloadOnPage implements the SQLite "how much of a payload is stored
// in-page before overflow" formula for table-leaf cells (the format's
// payload_on_page(U,P) computation), where U is the usable page size
// (pageSize - reservedBytes) and P is the total payload length.
func payloadOnPage(usable, payload int) int {
	maxLocal := usable - 35
	if payload <= maxLocal {
		return payload
	}
	minLocal := (usable-12)*32/255 - 23
	k := minLocal + (payload-minLocal)%(usable-4)
	if k <= maxLocal {
		return k
	}
	return minLocal
}

// decodeSignedBE sign-extends a big-endian two's-complement integer of
// 1, 2, 3, 4, 6, or 8 bytes, per the record serial-type encoding for
// integer columns.
func decodeSignedBE(b []byte) int64 {
	var v int64
	if len(b) > 0 && b[0]&0x80 != 0 {
		v = -1 // all-ones sign extension
	}
	for _, c := range b {
		v = (v << 8) | int64(c)
	}
	return v
}

// serialTypeSize returns the number of content bytes a record's serial
// type occupies, per the format's serial-type table.
func serialTypeSize(serialType int64) int {
	switch {
	case serialType == 0, serialType == 8, serialType == 9:
		return 0 // NULL, integer 0, integer 1: no content bytes
	case serialType >= 1 && serialType <= 4:
		return int(serialType)
	case serialType == 5:
		return 6
	case serialType == 6, serialType == 7:
		return 8 // 64-bit integer or IEEE754 float64
	case serialType >= 12 && serialType%2 == 0:
		return int((serialType - 12) / 2) // BLOB
	case serialType >= 13 && serialType%2 == 1:
		return int((serialType - 13) / 2) // TEXT
	default:
		return 0
	}
}

// decodeValue decodes one record column's raw content bytes according to
// its serial type. BLOB and TEXT are returned as-is; everything else
// decodes to an int64, float64, or nil (serial types 0/8/9 carry no
// content bytes but do carry a value: NULL, 0, and 1 respectively).
func decodeValue(serialType int64, content []byte) any {
	switch {
	case serialType == 0:
		return nil
	case serialType >= 1 && serialType <= 6:
		return decodeSignedBE(content)
	case serialType == 7:
		return math.Float64frombits(uint64(decodeSignedBE(content)))
	case serialType == 8:
		return int64(0)
	case serialType == 9:
		return int64(1)
	case serialType >= 12 && serialType%2 == 0:
		return content // BLOB
	default:
		return content // TEXT (odd serial types >= 13)
	}
}
