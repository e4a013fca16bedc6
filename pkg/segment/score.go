package segment

import (
	"unicode/utf8"

	"github.com/msr2903/himotoki-split/pkg/dictionary"
	"github.com/msr2903/himotoki-split/pkg/jptext"
)

// Scoring constants. Length dominates so the search prefers fewer, longer
// segments; cost is a secondary disambiguator; the particle penalty pushes
// trailing particles into their own tokens. These values are load-bearing:
// changing any of them changes observable segmentations.
const (
	perCharBonus    = 50
	costClamp       = 100
	particlePenalty = 60
	unknownPenalty  = 200
)

// Score rates a dictionary candidate for a surface.
//
// The particle penalty applies when the surface is at least two runes, ends
// in a single-character particle, and the part before that particle is not
// entirely kana. The kana exemption keeps greetings and compound particles
// (こんにちは, では) whole while detaching particles from content words
// (今日は, 天気が).
func Score(surface string, e dictionary.WordEntry) float64 {
	n := utf8.RuneCountInString(surface)
	cost := int(e.Cost)
	if cost > costClamp {
		cost = costClamp
	}
	s := float64(n*perCharBonus - cost)
	if n >= 2 {
		last, size := lastRune(surface)
		if jptext.IsParticle(last) && !jptext.AllKana(surface[:len(surface)-size]) {
			s -= particlePenalty
		}
	}
	return s
}

// ScoreUnknown rates a synthesized edge; the flat penalty makes any real
// match of equal length preferable.
func ScoreUnknown(surface string) float64 {
	return float64(utf8.RuneCountInString(surface)*perCharBonus - unknownPenalty)
}

func lastRune(s string) (rune, int) {
	return utf8.DecodeLastRuneInString(s)
}
