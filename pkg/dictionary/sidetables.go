package dictionary

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Side tables map a sequence id to a short UTF-8 string. On disk:
//
//	uint32 count
//	count * { uint32 seq, uint16 len, len bytes }
//
// little-endian, same layout the offline builder emits for
// kana_readings.bin and base_forms.bin.

func loadSeqTextTable(path string) (map[int32]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: side table %s truncated", ErrCorrupt, path)
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	table := make(map[int32]string, count)
	off := 4
	for i := uint32(0); i < count; i++ {
		if off+6 > len(data) {
			return nil, fmt.Errorf("%w: side table %s truncated at entry %d", ErrCorrupt, path, i)
		}
		seq := int32(binary.LittleEndian.Uint32(data[off : off+4]))
		n := int(binary.LittleEndian.Uint16(data[off+4 : off+6]))
		off += 6
		if off+n > len(data) {
			return nil, fmt.Errorf("%w: side table %s truncated at entry %d", ErrCorrupt, path, i)
		}
		table[seq] = string(data[off : off+n])
		off += n
	}
	return table, nil
}

// WriteSeqTextTable serializes a side table; used by the build tool and by
// tests that exercise reading/base-form resolution.
func WriteSeqTextTable(path string, table map[int32]string) error {
	out := appendUint32(nil, uint32(len(table)))
	for seq, text := range table {
		out = appendUint32(out, uint32(seq))
		out = appendUint16(out, uint16(len(text)))
		out = append(out, text...)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing side table: %w", err)
	}
	return nil
}
