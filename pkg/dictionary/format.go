package dictionary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Artifact container layout, little-endian throughout:
//
//	0x00  magic         8 bytes  "HIMOTKSP"
//	0x08  version       uint32   = 1
//	0x0C  flags         uint32   bit0 = has_pos_table
//	0x10  record_size   uint32   = 12
//	0x14  pos_table_off uint64
//	0x1C  trie_off      uint64
//	0x24  trie_len      uint64
//
// The pos table is a uint16 count followed by count (uint16 length, UTF-8
// bytes) pairs, indexed by pos id. The trie payload layout is documented in
// datrie.go.
const (
	magic         = "HIMOTKSP"
	formatVersion = 1

	flagHasPosTable = 1 << 0

	recordSize = 12
	headerSize = 0x2C
)

var (
	// ErrNotFound means the artifact file does not exist.
	ErrNotFound = errors.New("dictionary: artifact not found")
	// ErrCorrupt means the magic, offsets, or section sizes are invalid.
	ErrCorrupt = errors.New("dictionary: artifact corrupt")
	// ErrVersionMismatch means the magic is valid but the version is not supported.
	ErrVersionMismatch = errors.New("dictionary: unsupported artifact version")
	// ErrClosed means the dictionary handle was already closed.
	ErrClosed = errors.New("dictionary: closed")
)

// WordEntry is the fixed 12-byte lexical record stored per surface form.
type WordEntry struct {
	Seq      int32 // dictionary sequence identifier
	Cost     int16 // precomputed unigram cost, lower is more likely
	PosID    uint8 // compact part-of-speech index
	ConjType uint8 // conjugation form, 0 is the root form
	BaseSeq  int32 // sequence of the dictionary form
}

// IsRoot reports whether the entry is a dictionary form rather than a
// conjugation of one.
func (e WordEntry) IsRoot() bool {
	return e.BaseSeq == 0 || e.BaseSeq == e.Seq
}

// BaseFormID returns the sequence identifier of the dictionary form.
func (e WordEntry) BaseFormID() int32 {
	if e.BaseSeq != 0 {
		return e.BaseSeq
	}
	return e.Seq
}

func decodeRecord(b []byte) WordEntry {
	return WordEntry{
		Seq:      int32(binary.LittleEndian.Uint32(b[0:4])),
		Cost:     int16(binary.LittleEndian.Uint16(b[4:6])),
		PosID:    b[6],
		ConjType: b[7],
		BaseSeq:  int32(binary.LittleEndian.Uint32(b[8:12])),
	}
}

func encodeRecord(b []byte, e WordEntry) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(e.Seq))
	binary.LittleEndian.PutUint16(b[4:6], uint16(e.Cost))
	b[6] = e.PosID
	b[7] = e.ConjType
	binary.LittleEndian.PutUint32(b[8:12], uint32(e.BaseSeq))
}

type header struct {
	flags       uint32
	posTableOff uint64
	trieOff     uint64
	trieLen     uint64
}

// parseHeader validates the fixed header against the file size. Section
// contents are validated by their own readers.
func parseHeader(data []byte) (header, error) {
	var h header
	if len(data) < headerSize {
		return h, fmt.Errorf("%w: file shorter than header (%d bytes)", ErrCorrupt, len(data))
	}
	if string(data[0:8]) != magic {
		return h, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[0:8])
	}
	if v := binary.LittleEndian.Uint32(data[8:12]); v != formatVersion {
		return h, fmt.Errorf("%w: version %d", ErrVersionMismatch, v)
	}
	if rs := binary.LittleEndian.Uint32(data[16:20]); rs != recordSize {
		return h, fmt.Errorf("%w: record size %d, want %d", ErrCorrupt, rs, recordSize)
	}
	h.flags = binary.LittleEndian.Uint32(data[12:16])
	h.posTableOff = binary.LittleEndian.Uint64(data[20:28])
	h.trieOff = binary.LittleEndian.Uint64(data[28:36])
	h.trieLen = binary.LittleEndian.Uint64(data[36:44])

	size := uint64(len(data))
	if h.flags&flagHasPosTable != 0 {
		if h.posTableOff < headerSize || h.posTableOff+2 > size {
			return h, fmt.Errorf("%w: pos table offset %d out of bounds", ErrCorrupt, h.posTableOff)
		}
	}
	if h.trieOff < headerSize || h.trieOff > size || h.trieLen > size-h.trieOff {
		return h, fmt.Errorf("%w: trie section [%d,+%d) out of bounds", ErrCorrupt, h.trieOff, h.trieLen)
	}
	return h, nil
}

// parsePosTable reads the uint16-count, length-prefixed string table at off.
func parsePosTable(data []byte, off uint64) ([]string, error) {
	if off+2 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: truncated pos table", ErrCorrupt)
	}
	count := int(binary.LittleEndian.Uint16(data[off : off+2]))
	pos := off + 2
	names := make([]string, count)
	for i := 0; i < count; i++ {
		if pos+2 > uint64(len(data)) {
			return nil, fmt.Errorf("%w: truncated pos table entry %d", ErrCorrupt, i)
		}
		n := uint64(binary.LittleEndian.Uint16(data[pos : pos+2]))
		pos += 2
		if pos+n > uint64(len(data)) {
			return nil, fmt.Errorf("%w: truncated pos table entry %d", ErrCorrupt, i)
		}
		names[i] = string(data[pos : pos+n])
		pos += n
	}
	return names, nil
}
