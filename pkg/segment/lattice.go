package segment

import (
	"math"

	"github.com/msr2903/himotoki-split/pkg/dictionary"
	"github.com/msr2903/himotoki-split/pkg/jptext"
)

// Edge is one candidate segment spanning [Start, End) in rune offsets. An
// unknown edge carries a synthesized record with the unknown pos id.
type Edge struct {
	Start   int
	End     int
	Entry   dictionary.WordEntry
	Score   float64
	Unknown bool
}

// lattice holds the candidate graph for one input. Nodes are rune offsets
// 0..N; byteOff maps each node to its byte offset so surfaces slice the
// original string without re-decoding.
type lattice struct {
	text    string
	runes   []rune
	byteOff []int
	edges   [][]Edge // outgoing edges per start node
}

func (l *lattice) surface(e Edge) string {
	return l.text[l.byteOff[e.Start]:l.byteOff[e.End]]
}

func synthUnknown() dictionary.WordEntry {
	return dictionary.WordEntry{PosID: dictionary.UnknownPosID}
}

// buildLattice enumerates candidates per start position: artifact matches,
// user-overlay matches, the guaranteed single-rune unknown edge, and one
// coalesced unknown edge over homogeneous katakana/digit/latin runs. Kanji
// and hiragana runs are left to the dictionary.
func buildLattice(text string, dict *dictionary.Dict, user *dictionary.UserDict, maxWordLen int) *lattice {
	// decode once, keeping the true byte offset of every rune so malformed
	// sequences (decoded as U+FFFD) still slice the input correctly
	var runes []rune
	var byteOff []int
	for i, r := range text {
		runes = append(runes, r)
		byteOff = append(byteOff, i)
	}
	byteOff = append(byteOff, len(text))
	n := len(runes)
	l := &lattice{
		text:    text,
		runes:   runes,
		byteOff: byteOff,
		edges:   make([][]Edge, n),
	}

	for i := 0; i < n; i++ {
		rest := text[l.byteOff[i]:]

		for _, m := range dict.PrefixLookup(rest) {
			if m.Len > maxWordLen || i+m.Len > n {
				continue
			}
			end := i + m.Len
			l.edges[i] = append(l.edges[i], Edge{
				Start: i, End: end, Entry: m.Entry,
				Score: Score(text[l.byteOff[i]:l.byteOff[end]], m.Entry),
			})
		}
		if user != nil {
			for _, m := range user.PrefixLookup(rest) {
				if m.Len > maxWordLen || i+m.Len > n {
					continue
				}
				end := i + m.Len
				l.edges[i] = append(l.edges[i], Edge{
					Start: i, End: end, Entry: m.Entry,
					Score: Score(text[l.byteOff[i]:l.byteOff[end]], m.Entry),
				})
			}
		}

		// fallback single-rune edge keeps every node reachable
		l.edges[i] = append(l.edges[i], Edge{
			Start: i, End: i + 1, Entry: synthUnknown(),
			Score:   ScoreUnknown(text[l.byteOff[i]:l.byteOff[i+1]]),
			Unknown: true,
		})

		if end := runEnd(runes, i); end-i >= 2 {
			l.edges[i] = append(l.edges[i], Edge{
				Start: i, End: end, Entry: synthUnknown(),
				Score:   ScoreUnknown(text[l.byteOff[i]:l.byteOff[end]]),
				Unknown: true,
			})
		}
	}
	return l
}

// runEnd returns the end of the homogeneous coalescable run starting at i,
// or i when runes[i] is not a coalescable class.
func runEnd(runes []rune, i int) int {
	c := jptext.Class(runes[i])
	switch c {
	case jptext.Katakana, jptext.Digit, jptext.Latin:
	default:
		return i
	}
	j := i + 1
	for j < len(runes) && jptext.Class(runes[j]) == c {
		j++
	}
	return j
}

// edgePreferred breaks exact score ties deterministically: the longer edge
// wins, then the cheaper record, then the lower pos id.
func edgePreferred(a, b Edge) bool {
	al, bl := a.End-a.Start, b.End-b.Start
	if al != bl {
		return al > bl
	}
	if a.Entry.Cost != b.Entry.Cost {
		return a.Entry.Cost < b.Entry.Cost
	}
	return a.Entry.PosID < b.Entry.PosID
}

var negInf = math.Inf(-1)

// bestPath runs the forward DP and reconstructs the optimal edge sequence.
// The single-rune unknown fallback guarantees node N is reachable for any
// non-empty input.
func (l *lattice) bestPath() ([]Edge, float64) {
	n := len(l.runes)
	best := make([]float64, n+1)
	back := make([]Edge, n+1)
	has := make([]bool, n+1)
	for i := 1; i <= n; i++ {
		best[i] = negInf
	}
	for i := 0; i < n; i++ {
		if best[i] == negInf {
			continue
		}
		for _, e := range l.edges[i] {
			cand := best[i] + e.Score
			if cand > best[e.End] || (cand == best[e.End] && has[e.End] && edgePreferred(e, back[e.End])) {
				best[e.End] = cand
				back[e.End] = e
				has[e.End] = true
			}
		}
	}

	var path []Edge
	for j := n; j > 0; j = back[j].Start {
		path = append(path, back[j])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, best[n]
}
