/*
Package main implements the himotoki-build packaging tool.

himotoki-build converts a prepared entry listing into the binary dictionary
artifact the analyzer memory-maps. It does not run the lexicon pipeline
(JMdict parsing, conjugation expansion, cost assignment); it only packages
entries that pipeline already produced.

The input is UTF-8 TSV, one entry per line:

	surface <TAB> seq <TAB> cost <TAB> pos <TAB> conj_type <TAB> base_seq

pos is a tag name ("n", "v5k", "prt", ...). Lines starting with '#' and
blank lines are skipped.

Optional side tables use two-column TSV (seq <TAB> text):

	himotoki-build -in entries.tsv -out himotoki.dic \
	    -readings readings.tsv -baseforms baseforms.tsv
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/msr2903/himotoki-split/pkg/dictionary"
)

func main() {
	inPath := flag.String("in", "", "Input entries TSV")
	outPath := flag.String("out", "himotoki.dic", "Output artifact path")
	readingsPath := flag.String("readings", "", "Optional kana readings TSV (seq, text)")
	baseFormsPath := flag.String("baseforms", "", "Optional base forms TSV (seq, text)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}
	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: himotoki-build -in entries.tsv -out himotoki.dic")
		flag.PrintDefaults()
		os.Exit(2)
	}

	builder := dictionary.NewBuilder()
	n, err := loadEntries(*inPath, builder)
	if err != nil {
		log.Fatalf("Loading entries: %v", err)
	}
	log.Infof("Loaded %d entries (%d surfaces)", n, builder.Len())

	if err := builder.WriteFile(*outPath); err != nil {
		log.Fatalf("Writing artifact: %v", err)
	}
	log.Infof("Wrote %s", *outPath)

	dir := filepath.Dir(*outPath)
	if *readingsPath != "" {
		if err := writeSideTable(*readingsPath, filepath.Join(dir, "kana_readings.bin")); err != nil {
			log.Fatalf("Writing readings: %v", err)
		}
	}
	if *baseFormsPath != "" {
		if err := writeSideTable(*baseFormsPath, filepath.Join(dir, "base_forms.bin")); err != nil {
			log.Fatalf("Writing base forms: %v", err)
		}
	}
}

func loadEntries(path string, b *dictionary.Builder) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 6 {
			return n, fmt.Errorf("line %d: want 6 fields, got %d", line, len(fields))
		}
		seq, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return n, fmt.Errorf("line %d: seq: %w", line, err)
		}
		cost, err := strconv.ParseInt(fields[2], 10, 16)
		if err != nil {
			return n, fmt.Errorf("line %d: cost: %w", line, err)
		}
		conj, err := strconv.ParseUint(fields[4], 10, 8)
		if err != nil {
			return n, fmt.Errorf("line %d: conj_type: %w", line, err)
		}
		baseSeq, err := strconv.ParseInt(fields[5], 10, 32)
		if err != nil {
			return n, fmt.Errorf("line %d: base_seq: %w", line, err)
		}
		b.Add(fields[0], dictionary.WordEntry{
			Seq:      int32(seq),
			Cost:     int16(cost),
			PosID:    dictionary.PosID(fields[3]),
			ConjType: uint8(conj),
			BaseSeq:  int32(baseSeq),
		})
		n++
	}
	return n, sc.Err()
}

func writeSideTable(inPath, outPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	table := make(map[int32]string)
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.SplitN(text, "\t", 2)
		if len(fields) != 2 {
			return fmt.Errorf("line %d: want 2 fields", line)
		}
		seq, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			return fmt.Errorf("line %d: seq: %w", line, err)
		}
		table[int32(seq)] = fields[1]
	}
	if err := sc.Err(); err != nil {
		return err
	}
	log.Debugf("Side table %s: %d entries", outPath, len(table))
	return dictionary.WriteSeqTextTable(outPath, table)
}
