package segment

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/msr2903/himotoki-split/pkg/dictionary"
)

type fixtureEntry struct {
	surface string
	seq     int32
	cost    int16
	pos     string
	conj    uint8
	baseSeq int32
}

var fixtureEntries = []fixtureEntry{
	{"今日", 1001, 10, "n", 0, 1001},
	{"は", 1002, 3, "prt", 0, 1002},
	{"天気", 1003, 10, "n", 0, 1003},
	{"が", 1004, 3, "prt", 0, 1004},
	{"いい", 1005, 8, "adj-ix", 0, 1005},
	{"です", 1006, 5, "cop", 0, 1006},
	{"ね", 1007, 6, "int", 0, 1007},
	{"今日は", 1008, 5, "exp", 0, 1008},
	{"俺", 1010, 10, "n", 0, 1010},
	{"の", 1011, 2, "prt", 0, 1011},
	{"力", 1012, 10, "n", 0, 1012},
	{"を", 1013, 2, "prt", 0, 1013},
	{"見せて", 1014, 20, "v1", 2, 1015},
	{"やる", 1016, 15, "v5r", 0, 1016},
	{"絶対", 1017, 10, "n", 0, 1017},
	{"絶対に", 1018, 5, "adv", 0, 1018},
	{"に", 1019, 2, "prt", 0, 1019},
	{"負け", 1020, 15, "v1", 2, 1021},
	{"ない", 1022, 5, "aux-adj", 0, 1022},
	{"天気が", 1023, 5, "exp", 0, 1023},
}

func buildFixture(t testing.TB, withSideTables bool) *dictionary.Dict {
	t.Helper()
	dir := t.TempDir()
	b := dictionary.NewBuilder()
	for _, e := range fixtureEntries {
		b.Add(e.surface, dictionary.WordEntry{
			Seq:      e.seq,
			Cost:     e.cost,
			PosID:    dictionary.PosID(e.pos),
			ConjType: e.conj,
			BaseSeq:  e.baseSeq,
		})
	}
	path := filepath.Join(dir, "fixture.dic")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if withSideTables {
		readings := map[int32]string{1014: "みせて", 1020: "まけ"}
		baseForms := map[int32]string{1015: "見せる", 1021: "負ける"}
		if err := dictionary.WriteSeqTextTable(filepath.Join(dir, "kana_readings.bin"), readings); err != nil {
			t.Fatal(err)
		}
		if err := dictionary.WriteSeqTextTable(filepath.Join(dir, "base_forms.bin"), baseForms); err != nil {
			t.Fatal(err)
		}
	}
	d, err := dictionary.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func surfaces(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tk := range tokens {
		out[i] = tk.Surface
	}
	return out
}

func posNames(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tk := range tokens {
		out[i] = tk.Pos
	}
	return out
}

func TestTokenizeSeedSentences(t *testing.T) {
	seg := New(buildFixture(t, false))

	cases := []struct {
		name     string
		text     string
		want     []string
		wantPos  []string
	}{
		{
			name:    "particle detachment with punctuation",
			text:    "今日は天気がいいですね。",
			want:    []string{"今日", "は", "天気", "が", "いい", "です", "ね", "。"},
			wantPos: []string{"n", "prt", "n", "prt", "adj-ix", "cop", "int", "punc"},
		},
		{
			name: "conjugated verb with auxiliary",
			text: "俺の力を見せてやる",
			want: []string{"俺", "の", "力", "を", "見せて", "やる"},
		},
		{
			name: "adverb splits from particle",
			text: "絶対に負けない",
			want: []string{"絶対", "に", "負け", "ない"},
		},
		{
			name: "homogeneous latin and digit runs",
			text: "XYZ123",
			want: []string{"XYZ", "123"},
			wantPos: []string{"unk", "unk"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := seg.Tokenize(tc.text)
			if got := surfaces(tokens); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("surfaces = %v, want %v", got, tc.want)
			}
			if tc.wantPos != nil {
				if got := posNames(tokens); !reflect.DeepEqual(got, tc.wantPos) {
					t.Errorf("pos = %v, want %v", got, tc.wantPos)
				}
			}
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	seg := New(buildFixture(t, false))
	if got := seg.Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
	analyses, err := seg.Analyze("", 3)
	if err != nil || len(analyses) != 0 {
		t.Errorf("Analyze(\"\", 3) = %v, %v, want empty, nil", analyses, err)
	}
}

func TestCoverageInvariants(t *testing.T) {
	seg := New(buildFixture(t, false))
	texts := []string{
		"今日は天気がいいですね。",
		"俺の力を見せてやる",
		"絶対に負けない",
		"XYZ123",
		"鰯ABC今日は",
		"ア",
		"、、、",
		"ＡＢＣ０１２の天気",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			tokens := seg.Tokenize(text)
			if strings.Join(surfaces(tokens), "") != text {
				t.Errorf("concatenated surfaces do not reproduce input: %v", surfaces(tokens))
			}
			runes := []rune(text)
			pos := 0
			for i, tk := range tokens {
				if tk.Start != pos {
					t.Errorf("token %d starts at %d, want %d", i, tk.Start, pos)
				}
				if tk.End <= tk.Start {
					t.Errorf("token %d has empty span", i)
				}
				if got := string(runes[tk.Start:tk.End]); got != tk.Surface {
					t.Errorf("token %d offsets select %q, surface is %q", i, got, tk.Surface)
				}
				pos = tk.End
			}
			if pos != len(runes) {
				t.Errorf("last token ends at %d, want %d", pos, len(runes))
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	seg := New(buildFixture(t, false))
	text := "今日は天気がいいですね。"
	first := seg.Tokenize(text)
	for i := 0; i < 10; i++ {
		if got := seg.Tokenize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestUnknownFloor(t *testing.T) {
	seg := New(buildFixture(t, false))
	tokens := seg.Tokenize("鰯鱈鮭")
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(tokens), surfaces(tokens))
	}
	for _, tk := range tokens {
		if tk.Pos != "unk" {
			t.Errorf("token %q pos = %q, want unk", tk.Surface, tk.Pos)
		}
		if tk.BaseFormID != 0 {
			t.Errorf("token %q base_form_id = %d, want 0", tk.Surface, tk.BaseFormID)
		}
	}
}

func TestUnknownKatakanaRun(t *testing.T) {
	seg := New(buildFixture(t, false))
	tokens := seg.Tokenize("テレビ")
	if len(tokens) != 1 {
		t.Fatalf("got %v, want one coalesced token", surfaces(tokens))
	}
	if tokens[0].Pos != "unk" {
		t.Errorf("pos = %q, want unk", tokens[0].Pos)
	}
	if tokens[0].Reading != "てれび" {
		t.Errorf("reading = %q, want てれび", tokens[0].Reading)
	}
}

func TestKanjiRunsNotCoalesced(t *testing.T) {
	seg := New(buildFixture(t, false))
	// unknown kanji stay single-character; only katakana/digit/latin coalesce
	tokens := seg.Tokenize("鰯鱈")
	if len(tokens) != 2 {
		t.Errorf("got %v, want two single-kanji tokens", surfaces(tokens))
	}
}

func TestAnalyzeKBest(t *testing.T) {
	seg := New(buildFixture(t, false))

	analyses, err := seg.Analyze("今日は", 3)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analyses) < 2 {
		t.Fatalf("got %d analyses, want >= 2", len(analyses))
	}

	for i := 1; i < len(analyses); i++ {
		if analyses[i].Score > analyses[i-1].Score {
			t.Errorf("scores not non-increasing: %v then %v", analyses[i-1].Score, analyses[i].Score)
		}
	}

	if got := surfaces(analyses[0].Tokens); !reflect.DeepEqual(got, []string{"今日", "は"}) {
		t.Errorf("best analysis = %v, want [今日 は]", got)
	}

	// analyses come best first, so keep the first hit of each shape; a later
	// [今日 は] with an unknown は is a distinct, lower-scoring analysis
	var singleScore, splitScore float64
	var foundSingle, foundSplit bool
	for _, a := range analyses {
		switch {
		case !foundSingle && reflect.DeepEqual(surfaces(a.Tokens), []string{"今日は"}):
			singleScore = a.Score
			foundSingle = true
		case !foundSplit && reflect.DeepEqual(surfaces(a.Tokens), []string{"今日", "は"}):
			splitScore = a.Score
			foundSplit = true
		}
	}
	if !foundSingle {
		t.Fatal("single-token alternative 今日は missing from top-3")
	}
	if splitScore < singleScore {
		t.Errorf("particle split (%v) should not score below the merged token (%v)", splitScore, singleScore)
	}
}

func TestAnalyzeFirstMatchesTokenize(t *testing.T) {
	seg := New(buildFixture(t, false))
	for _, text := range []string{"今日は天気がいいですね。", "絶対に負けない", "俺の力を見せてやる"} {
		analyses, err := seg.Analyze(text, 1)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if len(analyses) != 1 {
			t.Fatalf("got %d analyses, want 1", len(analyses))
		}
		if !reflect.DeepEqual(analyses[0].Tokens, seg.Tokenize(text)) {
			t.Errorf("Analyze(%q, 1) differs from Tokenize", text)
		}
	}
}

func TestAnalyzeDistinctResults(t *testing.T) {
	seg := New(buildFixture(t, false))
	analyses, err := seg.Analyze("今日は天気", 8)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, a := range analyses {
		// a dictionary は and an unknown は over the same span are distinct
		// analyses, so the signature carries pos as well as surface
		parts := make([]string, len(a.Tokens))
		for i, tk := range a.Tokens {
			parts[i] = tk.Surface + "/" + tk.Pos
		}
		sig := strings.Join(parts, "|")
		if seen[sig] {
			t.Errorf("duplicate analysis %s", sig)
		}
		seen[sig] = true
	}
}

func TestAnalyzeBadLimit(t *testing.T) {
	seg := New(buildFixture(t, false))
	if _, err := seg.Analyze("今日は", 0); !errors.Is(err, ErrBadLimit) {
		t.Errorf("got %v, want ErrBadLimit", err)
	}
	if _, err := seg.Analyze("今日は", -2); !errors.Is(err, ErrBadLimit) {
		t.Errorf("got %v, want ErrBadLimit", err)
	}
}

func TestParticleSplitLaw(t *testing.T) {
	seg := New(buildFixture(t, false))
	// 天気が is stored whole, yet the split must win
	tokens := seg.Tokenize("天気が")
	if got := surfaces(tokens); !reflect.DeepEqual(got, []string{"天気", "が"}) {
		t.Errorf("Tokenize(天気が) = %v, want [天気 が]", got)
	}
}

func TestSideTableResolution(t *testing.T) {
	seg := New(buildFixture(t, true))
	tokens := seg.Tokenize("俺の力を見せてやる")
	var found bool
	for _, tk := range tokens {
		if tk.Surface != "見せて" {
			continue
		}
		found = true
		if tk.Reading != "みせて" {
			t.Errorf("reading = %q, want みせて", tk.Reading)
		}
		if tk.BaseForm != "見せる" {
			t.Errorf("base form = %q, want 見せる", tk.BaseForm)
		}
		if tk.BaseFormID != 1015 {
			t.Errorf("base form id = %d, want 1015", tk.BaseFormID)
		}
	}
	if !found {
		t.Fatalf("見せて missing from %v", surfaces(tokens))
	}
}

func TestWithoutSideTablesSurfacesStand(t *testing.T) {
	seg := New(buildFixture(t, false))
	for _, tk := range seg.Tokenize("俺の力を見せてやる") {
		if tk.Surface == "見せて" {
			if tk.BaseForm != "見せて" || tk.Reading != "見せて" {
				t.Errorf("without side tables base=%q reading=%q, want surface", tk.BaseForm, tk.Reading)
			}
		}
	}
}

func TestUserDictOverlay(t *testing.T) {
	d := buildFixture(t, false)
	u := dictionary.NewUserDict()
	u.Add("ヒモトキ", dictionary.WordEntry{Seq: 9001, Cost: 5, PosID: dictionary.PosID("n"), BaseSeq: 9001})
	seg := New(d, WithUserDict(u))

	tokens := seg.Tokenize("ヒモトキの天気")
	if got := surfaces(tokens); !reflect.DeepEqual(got, []string{"ヒモトキ", "の", "天気"}) {
		t.Fatalf("surfaces = %v", got)
	}
	if tokens[0].Pos != "n" {
		t.Errorf("overlay token pos = %q, want n", tokens[0].Pos)
	}
}

func TestMaxWordLen(t *testing.T) {
	d := buildFixture(t, false)
	seg := New(d, WithMaxWordLen(2))
	// 絶対に (3 runes) is now too long to be a candidate
	tokens := seg.Tokenize("絶対に")
	if got := surfaces(tokens); !reflect.DeepEqual(got, []string{"絶対", "に"}) {
		t.Errorf("surfaces = %v, want [絶対 に]", got)
	}
}

func BenchmarkTokenize(b *testing.B) {
	seg := New(buildFixture(b, false))
	text := "今日は天気がいいですね。絶対に負けない。俺の力を見せてやる"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seg.Tokenize(text)
	}
}

func BenchmarkAnalyze5(b *testing.B) {
	seg := New(buildFixture(b, false))
	text := "今日は天気がいいですね。"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := seg.Analyze(text, 5); err != nil {
			b.Fatal(err)
		}
	}
}
