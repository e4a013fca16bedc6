package server

import (
	"errors"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/msr2903/himotoki-split/pkg/analyzer"
	"github.com/msr2903/himotoki-split/pkg/config"
	"github.com/msr2903/himotoki-split/pkg/segment"
)

// Server handles the IPC for tokenize requests.
type Server struct {
	analyzer *analyzer.Analyzer
	cfg      *config.Config
	dec      *msgpack.Decoder
	enc      *msgpack.Encoder
}

// NewServer creates a tokenize server using stdin/stdout for IPC.
func NewServer(a *analyzer.Analyzer, cfg *config.Config) *Server {
	return NewServerIO(a, cfg, os.Stdin, os.Stdout)
}

// NewServerIO wires explicit streams; tests drive the server through
// in-memory pipes.
func NewServerIO(a *analyzer.Analyzer, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	return &Server{
		analyzer: a,
		cfg:      cfg,
		dec:      msgpack.NewDecoder(r),
		enc:      msgpack.NewEncoder(w),
	}
}

// Start processes requests until the input stream closes.
func (s *Server) Start() error {
	log.Debug("Starting tokenize server")
	for {
		var req TokenizeRequest
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handle(req)
	}
}

func (s *Server) handle(req TokenizeRequest) {
	if req.Text == "" {
		s.sendError(req.ID, "empty text", 2)
		return
	}
	if max := s.cfg.Server.MaxTextLen; max > 0 && utf8.RuneCountInString(req.Text) > max {
		s.sendError(req.ID, "text exceeds maximum length", 2)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = 1
	}
	if max := s.cfg.Server.MaxLimit; max > 0 && limit > max {
		limit = max
	}

	start := time.Now()
	analyses, err := s.analyzer.Analyze(req.Text, limit)
	elapsed := time.Since(start)
	if err != nil {
		s.sendError(req.ID, err.Error(), 1)
		return
	}
	log.Debugf("Took [ %v ] for %d rune(s)", elapsed, utf8.RuneCountInString(req.Text))

	resp := TokenizeResponse{
		ID:       req.ID,
		Analyses: make([]WireAnalysis, len(analyses)),
		Count:    len(analyses),
		TimeUs:   elapsed.Microseconds(),
	}
	for i, a := range analyses {
		resp.Analyses[i] = toWire(a)
	}
	s.send(resp)
}

func toWire(a segment.Analysis) WireAnalysis {
	w := WireAnalysis{
		Tokens: make([]WireToken, len(a.Tokens)),
		Score:  a.Score,
	}
	for i, t := range a.Tokens {
		w.Tokens[i] = WireToken{
			Surface:    t.Surface,
			Reading:    t.Reading,
			Pos:        t.Pos,
			BaseForm:   t.BaseForm,
			BaseFormID: t.BaseFormID,
			Start:      t.Start,
			End:        t.End,
		}
	}
	return w
}

func (s *Server) send(resp any) {
	if err := s.enc.Encode(resp); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(RequestError{ID: id, Error: message, Code: code})
}
