package server

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/msr2903/himotoki-split/pkg/analyzer"
	"github.com/msr2903/himotoki-split/pkg/config"
	"github.com/msr2903/himotoki-split/pkg/dictionary"
)

func testAnalyzer(t *testing.T) (*analyzer.Analyzer, *config.Config) {
	t.Helper()
	b := dictionary.NewBuilder()
	add := func(surface string, seq int32, cost int16, pos string) {
		b.Add(surface, dictionary.WordEntry{Seq: seq, Cost: cost, PosID: dictionary.PosID(pos), BaseSeq: seq})
	}
	add("今日", 1001, 10, "n")
	add("は", 1002, 3, "prt")
	add("今日は", 1008, 5, "exp")

	path := filepath.Join(t.TempDir(), "fixture.dic")
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.Dict.Path = path

	a, err := analyzer.New(cfg)
	if err != nil {
		t.Fatalf("analyzer.New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, cfg
}

func runServer(t *testing.T, a *analyzer.Analyzer, cfg *config.Config, requests ...TokenizeRequest) *msgpack.Decoder {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	var out bytes.Buffer
	srv := NewServerIO(a, cfg, &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return msgpack.NewDecoder(&out)
}

func TestTokenizeRequest(t *testing.T) {
	a, cfg := testAnalyzer(t)
	dec := runServer(t, a, cfg, TokenizeRequest{ID: "req_001", Text: "今日は"})

	var resp TokenizeResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ID != "req_001" {
		t.Errorf("id = %q", resp.ID)
	}
	if resp.Count != 1 || len(resp.Analyses) != 1 {
		t.Fatalf("count = %d, analyses = %d", resp.Count, len(resp.Analyses))
	}
	tokens := resp.Analyses[0].Tokens
	if len(tokens) != 2 || tokens[0].Surface != "今日" || tokens[1].Surface != "は" {
		t.Errorf("tokens = %+v", tokens)
	}
	if tokens[1].Pos != "prt" {
		t.Errorf("pos = %q, want prt", tokens[1].Pos)
	}
	if tokens[0].Start != 0 || tokens[0].End != 2 || tokens[1].Start != 2 || tokens[1].End != 3 {
		t.Errorf("offsets wrong: %+v", tokens)
	}
}

func TestKBestRequest(t *testing.T) {
	a, cfg := testAnalyzer(t)
	dec := runServer(t, a, cfg, TokenizeRequest{ID: "req_002", Text: "今日は", Limit: 3})

	var resp TokenizeResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count < 2 {
		t.Fatalf("count = %d, want >= 2", resp.Count)
	}
	for i := 1; i < len(resp.Analyses); i++ {
		if resp.Analyses[i].Score > resp.Analyses[i-1].Score {
			t.Errorf("scores not non-increasing")
		}
	}
}

func TestLimitCappedByConfig(t *testing.T) {
	a, cfg := testAnalyzer(t)
	cfg.Server.MaxLimit = 2
	dec := runServer(t, a, cfg, TokenizeRequest{ID: "req_003", Text: "今日は", Limit: 50})

	var resp TokenizeResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count > 2 {
		t.Errorf("count = %d exceeds configured cap", resp.Count)
	}
}

func TestEmptyTextError(t *testing.T) {
	a, cfg := testAnalyzer(t)
	dec := runServer(t, a, cfg, TokenizeRequest{ID: "req_004", Text: ""})

	var errResp RequestError
	if err := dec.Decode(&errResp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if errResp.ID != "req_004" || errResp.Code != 2 || errResp.Error == "" {
		t.Errorf("error response = %+v", errResp)
	}
}

func TestTextTooLongError(t *testing.T) {
	a, cfg := testAnalyzer(t)
	cfg.Server.MaxTextLen = 2
	dec := runServer(t, a, cfg, TokenizeRequest{ID: "req_005", Text: "今日は"})

	var errResp RequestError
	if err := dec.Decode(&errResp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if errResp.Code != 2 {
		t.Errorf("code = %d, want 2", errResp.Code)
	}
}

func TestMultipleRequests(t *testing.T) {
	a, cfg := testAnalyzer(t)
	dec := runServer(t, a, cfg,
		TokenizeRequest{ID: "a", Text: "今日は"},
		TokenizeRequest{ID: "b", Text: "今日"},
	)

	var first, second TokenizeResponse
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.ID != "a" || second.ID != "b" {
		t.Errorf("ids = %q, %q", first.ID, second.ID)
	}
}
