/*
Package segment turns Japanese text into morphemes against a dictionary
artifact.

Candidates per position come from prefix lookups (artifact plus optional user
overlay), a guaranteed single-rune unknown edge, and one coalesced edge over
homogeneous katakana/digit/latin runs. A forward Viterbi pass picks the
best-scoring path; an A* pass enumerates the top K alternatives. Scoring is
pure and documented in score.go.

Segmenters are stateless beyond their configuration and safe for concurrent
use once the dictionary is open.
*/
package segment

import (
	"errors"

	"github.com/msr2903/himotoki-split/pkg/dictionary"
)

// ErrBadLimit is returned by Analyze when limit < 1.
var ErrBadLimit = errors.New("segment: limit must be >= 1")

// DefaultMaxWordLen caps candidate length in runes; no stored key is longer
// in practice.
const DefaultMaxWordLen = 30

// Segmenter runs lattice construction and path search over one dictionary.
type Segmenter struct {
	dict       *dictionary.Dict
	user       *dictionary.UserDict
	maxWordLen int
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithUserDict layers a runtime overlay into candidate enumeration.
func WithUserDict(u *dictionary.UserDict) Option {
	return func(s *Segmenter) { s.user = u }
}

// WithMaxWordLen overrides the candidate length cap.
func WithMaxWordLen(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.maxWordLen = n
		}
	}
}

// New returns a Segmenter over d.
func New(d *dictionary.Dict, opts ...Option) *Segmenter {
	s := &Segmenter{dict: d, maxWordLen: DefaultMaxWordLen}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tokenize returns the best-path segmentation. Empty input yields no tokens.
// Segmentation cannot fail on valid input: characters the dictionary does
// not cover surface as "unk" tokens.
func (s *Segmenter) Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	l := buildLattice(text, s.dict, s.user, s.maxWordLen)
	path, _ := l.bestPath()
	return l.materializePath(path, s.dict)
}

// Analyze returns up to limit segmentations in non-increasing score order.
// The first result carries the same total score as the best path.
func (s *Segmenter) Analyze(text string, limit int) ([]Analysis, error) {
	if limit < 1 {
		return nil, ErrBadLimit
	}
	if text == "" {
		return nil, nil
	}
	l := buildLattice(text, s.dict, s.user, s.maxWordLen)
	paths := l.kBest(limit)
	out := make([]Analysis, len(paths))
	for i, p := range paths {
		out[i] = Analysis{Tokens: l.materializePath(p.edges, s.dict), Score: p.score}
	}
	return out, nil
}
