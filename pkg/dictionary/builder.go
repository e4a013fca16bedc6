package dictionary

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
)

// Builder assembles an artifact from prepared entries and writes the binary
// container. It packages records only; producing the entries themselves
// (conjugation expansion, cost assignment) is the offline pipeline's job.
type Builder struct {
	entries  map[string][]WordEntry
	posTable []string
}

// NewBuilder returns an empty builder carrying the default pos table.
func NewBuilder() *Builder {
	return &Builder{
		entries:  make(map[string][]WordEntry),
		posTable: defaultPosTable(),
	}
}

// Add appends a record for surface. Insertion order per surface is preserved
// in the artifact, which is what lookups return.
func (b *Builder) Add(surface string, e WordEntry) {
	b.entries[surface] = append(b.entries[surface], e)
}

// Len returns the number of distinct surfaces added so far.
func (b *Builder) Len() int {
	return len(b.entries)
}

// WriteFile serializes the artifact to path.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	log.Debugf("Wrote artifact: %d surfaces, %d bytes", len(b.entries), len(data))
	return nil
}

// Bytes serializes the artifact in memory.
func (b *Builder) Bytes() ([]byte, error) {
	if len(b.entries) == 0 {
		return nil, fmt.Errorf("builder: no entries")
	}

	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var records []byte
	valueOff := make([]uint32, len(keys))
	valueLen := make([]uint32, len(keys))
	nRecs := uint32(0)
	for i, k := range keys {
		es := b.entries[k]
		valueOff[i] = nRecs
		valueLen[i] = uint32(len(es))
		for _, e := range es {
			var buf [recordSize]byte
			encodeRecord(buf[:], e)
			records = append(records, buf[:]...)
			nRecs++
		}
	}

	da := newDABuilder()
	da.build(0, keys, 0, len(keys), 0)
	base, check := da.trim()

	trieLen := trieFixed + len(base)*8 + len(keys)*8 + len(records)

	posOff := uint64(headerSize)
	posLen := posTableSize(b.posTable)
	trieOff := posOff + uint64(posLen)

	out := make([]byte, 0, int(trieOff)+trieLen)
	out = append(out, magic...)
	out = appendUint32(out, formatVersion)
	out = appendUint32(out, flagHasPosTable)
	out = appendUint32(out, recordSize)
	out = appendUint64(out, posOff)
	out = appendUint64(out, trieOff)
	out = appendUint64(out, uint64(trieLen))

	out = appendPosTable(out, b.posTable)

	out = appendUint32(out, uint32(len(base)))
	out = appendUint32(out, uint32(len(keys)))
	out = appendUint32(out, nRecs)
	for _, v := range base {
		out = appendUint32(out, uint32(v))
	}
	for _, v := range check {
		out = appendUint32(out, uint32(v))
	}
	for _, v := range valueOff {
		out = appendUint32(out, v)
	}
	for _, v := range valueLen {
		out = appendUint32(out, v)
	}
	out = append(out, records...)
	return out, nil
}

func posTableSize(table []string) int {
	n := 2
	for _, name := range table {
		n += 2 + len(name)
	}
	return n
}

func appendPosTable(out []byte, table []string) []byte {
	out = appendUint16(out, uint16(len(table)))
	for _, name := range table {
		out = appendUint16(out, uint16(len(name)))
		out = append(out, name...)
	}
	return out
}

func appendUint16(b []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(b, buf[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

func appendUint64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

// daBuilder constructs the double array over sorted keys. The free-slot scan
// is naive; building is offline tooling and test setup, not a hot path.
type daBuilder struct {
	base  []int32
	check []int32
	used  []bool
}

func newDABuilder() *daBuilder {
	d := &daBuilder{}
	d.grow(512)
	// root occupies slot 0
	d.used[0] = true
	d.check[0] = -1
	return d
}

func (d *daBuilder) grow(n int) {
	for len(d.base) < n {
		d.base = append(d.base, 0)
		d.check = append(d.check, -1)
		d.used = append(d.used, false)
	}
}

// build lays out the subtrie for keys[lo:hi) at depth under state s.
// Sorted input means each child's key range is contiguous.
func (d *daBuilder) build(s uint32, keys []string, lo, hi, depth int) {
	type child struct {
		code   int // 0 = end of key, byte+1 otherwise
		lo, hi int
	}
	var children []child
	i := lo
	for i < hi {
		var code int
		if len(keys[i]) == depth {
			code = 0
		} else {
			code = int(keys[i][depth]) + 1
		}
		j := i + 1
		for j < hi {
			var c int
			if len(keys[j]) == depth {
				c = 0
			} else {
				c = int(keys[j][depth]) + 1
			}
			if c != code {
				break
			}
			j++
		}
		children = append(children, child{code: code, lo: i, hi: j})
		i = j
	}

	codes := make([]int, len(children))
	for k, c := range children {
		codes[k] = c.code
	}
	b := d.findBase(codes)
	d.base[s] = b
	for _, c := range children {
		t := uint32(int(b) + c.code)
		d.used[t] = true
		d.check[t] = int32(s)
	}
	for _, c := range children {
		t := uint32(int(b) + c.code)
		if c.code == 0 {
			// keys are unique, so an end-of-key group is a single key and
			// its index in the sorted slice is the key id
			d.base[t] = -(int32(c.lo) + 1)
			continue
		}
		d.build(t, keys, c.lo, c.hi, depth+1)
	}
}

func (d *daBuilder) findBase(codes []int) int32 {
	for b := 1; ; b++ {
		d.grow(b + 258)
		ok := true
		for _, c := range codes {
			if d.used[b+c] {
				ok = false
				break
			}
		}
		if ok {
			return int32(b)
		}
	}
}

// trim drops the unused tail so the serialized arrays stay compact.
func (d *daBuilder) trim() ([]int32, []int32) {
	last := 0
	for i, u := range d.used {
		if u {
			last = i
		}
	}
	return d.base[:last+1], d.check[:last+1]
}
