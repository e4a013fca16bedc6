/*
Package dictionary opens, validates, and queries the binary lexicon artifact.

The artifact is a single memory-mapped file holding a double-array trie that
maps UTF-8 surface forms to one or more fixed 12-byte records. Lookups are
read-only and safe for concurrent use once Open has returned. Optional side
tables next to the artifact (kana_readings.bin, base_forms.bin) resolve
readings and dictionary-form surfaces by sequence id.
*/
package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/msr2903/himotoki-split/internal/fileutil"
)

// Match is one prefix-lookup hit: a stored key of Len runes starting at the
// queried position, with one of its records.
type Match struct {
	Len   int // key length in runes
	Entry WordEntry
}

// Dict is a read-only handle over a mapped artifact.
type Dict struct {
	data   []byte
	mapped bool
	file   *os.File
	closed atomic.Bool

	trie     daTrie
	posNames []string

	readings  map[int32]string
	baseForms map[int32]string
}

// Open maps and validates the artifact at path. The whole header, section
// bounds, and trie size arithmetic are checked here; queries assume validity
// afterwards. Side tables next to the artifact are loaded when present.
func Open(path string) (*Dict, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	d := &Dict{}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	if data, merr := fileutil.Mmap(f, int(fi.Size())); merr == nil {
		d.data = data
		d.mapped = true
		d.file = f
	} else {
		log.Debugf("mmap unavailable (%v), reading %s into memory", merr, path)
		f.Close()
		d.data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read artifact: %w", err)
		}
	}

	if err := d.parse(); err != nil {
		d.release()
		return nil, err
	}
	d.loadSideTables(filepath.Dir(path))
	log.Debugf("Dictionary ready: %d keys, %d records, %d trie states",
		d.trie.numKeys, d.trie.numRecs, d.trie.numStates)
	return d, nil
}

func (d *Dict) parse() error {
	h, err := parseHeader(d.data)
	if err != nil {
		return err
	}
	d.trie, err = parseTrie(d.data[h.trieOff : h.trieOff+h.trieLen])
	if err != nil {
		return err
	}
	if h.flags&flagHasPosTable != 0 {
		d.posNames, err = parsePosTable(d.data, h.posTableOff)
		if err != nil {
			return err
		}
	} else {
		d.posNames = defaultPosTable()
	}
	return nil
}

func (d *Dict) loadSideTables(dir string) {
	if t, err := loadSeqTextTable(filepath.Join(dir, "kana_readings.bin")); err == nil {
		d.readings = t
		log.Debugf("Loaded %d kana readings", len(t))
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Skipping kana readings: %v", err)
	}
	if t, err := loadSeqTextTable(filepath.Join(dir, "base_forms.bin")); err == nil {
		d.baseForms = t
		log.Debugf("Loaded %d base forms", len(t))
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Skipping base forms: %v", err)
	}
}

// PrefixLookup returns every stored key that is a prefix of s, in increasing
// key length, records per key in insertion order. A nil or empty result
// means no key matched. Safe for concurrent use.
func (d *Dict) PrefixLookup(s string) []Match {
	if d.closed.Load() || s == "" {
		return nil
	}
	var out []Match
	d.trie.visitPrefixes(s, func(charLen int, key uint32) bool {
		recs := d.trie.keyRecords(key)
		for off := 0; off+recordSize <= len(recs); off += recordSize {
			out = append(out, Match{Len: charLen, Entry: decodeRecord(recs[off : off+recordSize])})
		}
		return true
	})
	return out
}

// Lookup returns the records stored under exactly s.
func (d *Dict) Lookup(s string) []WordEntry {
	if d.closed.Load() || s == "" {
		return nil
	}
	want := utf8.RuneCountInString(s)
	var out []WordEntry
	d.trie.visitPrefixes(s, func(charLen int, key uint32) bool {
		if charLen != want {
			return true
		}
		recs := d.trie.keyRecords(key)
		for off := 0; off+recordSize <= len(recs); off += recordSize {
			out = append(out, decodeRecord(recs[off:off+recordSize]))
		}
		return false
	})
	return out
}

// Contains reports whether s is stored as a key.
func (d *Dict) Contains(s string) bool {
	return len(d.Lookup(s)) > 0
}

// PosName resolves a compact pos id to its tag name, "unk" when unassigned.
func (d *Dict) PosName(id uint8) string {
	return posNameFrom(d.posNames, id)
}

// KanaReading returns the hiragana reading recorded for seq, if the reading
// side table is present and covers it.
func (d *Dict) KanaReading(seq int32) (string, bool) {
	r, ok := d.readings[seq]
	return r, ok
}

// BaseForm returns the dictionary-form surface recorded for seq, if the base
// form side table is present and covers it.
func (d *Dict) BaseForm(seq int32) (string, bool) {
	b, ok := d.baseForms[seq]
	return b, ok
}

// Close releases the mapping. Queries after Close return nothing; calling
// Close twice returns ErrClosed.
func (d *Dict) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return d.release()
}

func (d *Dict) release() error {
	var err error
	if d.mapped {
		err = fileutil.Munmap(d.data)
		if cerr := d.file.Close(); err == nil {
			err = cerr
		}
		d.mapped = false
	}
	d.data = nil
	return err
}
