package segment

import (
	"github.com/msr2903/himotoki-split/pkg/dictionary"
	"github.com/msr2903/himotoki-split/pkg/jptext"
)

// Token is one morpheme of the winning segmentation. Start and End are rune
// offsets into the analyzed text, half-open.
type Token struct {
	Surface    string `json:"surface"`
	Reading    string `json:"reading"`
	Pos        string `json:"pos"`
	BaseForm   string `json:"base_form"`
	BaseFormID int32  `json:"base_form_id"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

// Analysis is one complete segmentation with its total path score.
type Analysis struct {
	Tokens []Token
	Score  float64
}

// materialize turns a winning edge into a Token. Unknown punctuation-only
// edges are tagged "punc" rather than "unk" so sentence delimiters come out
// labeled. Readings resolve through the kana side table when the artifact
// ships one; kana surfaces read as their hiragana form either way.
func (l *lattice) materialize(e Edge, dict *dictionary.Dict) Token {
	surface := l.surface(e)
	t := Token{
		Surface:  surface,
		Reading:  surface,
		BaseForm: surface,
		Start:    e.Start,
		End:      e.End,
	}
	if jptext.AllKana(surface) {
		t.Reading = jptext.AsHiragana(surface)
	}
	if e.Unknown {
		if jptext.AllPunct(surface) {
			t.Pos = "punc"
		} else {
			t.Pos = "unk"
		}
		return t
	}

	t.Pos = dict.PosName(e.Entry.PosID)
	t.BaseFormID = e.Entry.BaseFormID()
	if base, ok := dict.BaseForm(t.BaseFormID); ok {
		t.BaseForm = base
	}
	if !jptext.AllKana(surface) {
		if r, ok := dict.KanaReading(e.Entry.Seq); ok {
			t.Reading = r
		}
	}
	return t
}

func (l *lattice) materializePath(edges []Edge, dict *dictionary.Dict) []Token {
	tokens := make([]Token, len(edges))
	for i, e := range edges {
		tokens[i] = l.materialize(e, dict)
	}
	return tokens
}
