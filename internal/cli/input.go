// Package cli handles interactive input for testing the tokenizer from a
// terminal before wiring clients to the IPC server.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/msr2903/himotoki-split/internal/logger"
	"github.com/msr2903/himotoki-split/pkg/analyzer"
)

// InputHandler reads lines from stdin and prints their analyses. It accepts
// a result limit and a max text length to keep pathological pastes bounded.
type InputHandler struct {
	analyzer   *analyzer.Analyzer
	out        *log.Logger
	limit      int
	maxTextLen int
}

// NewInputHandler handles initialization of the InputHandler
func NewInputHandler(a *analyzer.Analyzer, limit, maxTextLen int) *InputHandler {
	if limit < 1 {
		limit = 1
	}
	return &InputHandler{
		analyzer:   a,
		out:        logger.Default("cli"),
		limit:      limit,
		maxTextLen: maxTextLen,
	}
}

// Start begins the interface loop. It continuously prompts for input, reads
// a line from stdin, and analyzes it. Terminates when stdin closes.
func (h *InputHandler) Start() error {
	log.Print("himotoki CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type Japanese text and press Enter to see the segmentation (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput analyzes a single line and pretty-prints the results.
func (h *InputHandler) handleInput(text string) {
	if h.maxTextLen > 0 && utf8.RuneCountInString(text) > h.maxTextLen {
		log.Errorf("Text too long: %d runes", utf8.RuneCountInString(text))
		return
	}

	start := time.Now()
	analyses, err := h.analyzer.Analyze(text, h.limit)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Analysis failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for '%s'", elapsed, text)

	if len(analyses) == 0 {
		log.Warnf("No analysis for: '%s'", text)
		return
	}

	for i, a := range analyses {
		surfaces := make([]string, len(a.Tokens))
		for j, t := range a.Tokens {
			surfaces[j] = t.Surface
		}
		h.out.Printf("%2d. %-40s (score: %8.1f)", i+1, strings.Join(surfaces, " | "), a.Score)
		if i == 0 {
			for _, t := range a.Tokens {
				clSurface := fmt.Sprintf("\033[38;5;75m%s\033[0m", t.Surface)
				h.out.Printf("    %-24s %-8s %-12s %s", clSurface, t.Pos, t.Reading, t.BaseForm)
			}
		}
	}
}
