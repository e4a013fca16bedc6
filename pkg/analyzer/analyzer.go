/*
Package analyzer is the process-wide façade over the dictionary and the
segmenter.

The dictionary handle is opened lazily behind a one-shot initializer, so
concurrent first calls race safely: exactly one mapping wins and later calls
see it. After initialization everything on the read path is immutable and
Tokenize/Analyze may be called from any number of goroutines. Input is
NFC-normalized before segmentation.
*/
package analyzer

import (
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"

	"github.com/msr2903/himotoki-split/pkg/config"
	"github.com/msr2903/himotoki-split/pkg/dictionary"
	"github.com/msr2903/himotoki-split/pkg/segment"
)

// Version is the library version string.
const Version = "0.1.0"

// Analyzer binds one open dictionary to a segmenter.
type Analyzer struct {
	dict *dictionary.Dict
	seg  *segment.Segmenter
	user *dictionary.UserDict
}

// New opens the artifact at cfg.Dict.Path and returns a ready Analyzer.
func New(cfg *config.Config) (*Analyzer, error) {
	d, err := dictionary.Open(cfg.Dict.Path)
	if err != nil {
		return nil, err
	}
	u := dictionary.NewUserDict()
	return &Analyzer{
		dict: d,
		user: u,
		seg: segment.New(d,
			segment.WithUserDict(u),
			segment.WithMaxWordLen(cfg.Dict.MaxWordLen),
		),
	}, nil
}

// Tokenize returns the best-path segmentation of text.
func (a *Analyzer) Tokenize(text string) []segment.Token {
	return a.seg.Tokenize(norm.NFC.String(text))
}

// Analyze returns up to limit segmentations in non-increasing score order.
func (a *Analyzer) Analyze(text string, limit int) ([]segment.Analysis, error) {
	return a.seg.Analyze(norm.NFC.String(text), limit)
}

// AddUserEntry registers a runtime dictionary entry for surface.
func (a *Analyzer) AddUserEntry(surface string, e dictionary.WordEntry) {
	a.user.Add(surface, e)
}

// Dict exposes the underlying dictionary for pos/reading resolution.
func (a *Analyzer) Dict() *dictionary.Dict {
	return a.dict
}

// Close releases the dictionary mapping.
func (a *Analyzer) Close() error {
	return a.dict.Close()
}

// Process-wide default instance. Init is idempotent: the first caller's
// configuration wins and every later call returns the same result.
var (
	defaultMu   sync.Mutex
	defaultOnce sync.Once
	defaultA    *Analyzer
	defaultErr  error
)

// Init sets up the default analyzer from cfg (nil means built-in defaults).
func Init(cfg *config.Config) error {
	defaultOnce.Do(func() {
		if cfg == nil {
			cfg = config.DefaultConfig()
		}
		defaultA, defaultErr = New(cfg)
		if defaultErr != nil {
			log.Errorf("Analyzer init failed: %v", defaultErr)
		}
	})
	return defaultErr
}

// Default returns the process-wide analyzer, initializing with defaults on
// first use.
func Default() (*Analyzer, error) {
	if err := Init(nil); err != nil {
		return nil, err
	}
	return defaultA, nil
}

// Tokenize segments text with the default analyzer.
func Tokenize(text string) ([]segment.Token, error) {
	a, err := Default()
	if err != nil {
		return nil, err
	}
	return a.Tokenize(text), nil
}

// Analyze returns up to limit analyses from the default analyzer.
func Analyze(text string, limit int) ([]segment.Analysis, error) {
	a, err := Default()
	if err != nil {
		return nil, err
	}
	return a.Analyze(text, limit)
}

// WarmUp forces the default dictionary open so the first tokenize call does
// no I/O. Idempotent.
func WarmUp() error {
	_, err := Default()
	return err
}

// GetVersion returns the library version.
func GetVersion() string {
	return Version
}

// CloseDefault releases the default analyzer; mainly for tests. A new Init
// after CloseDefault starts a fresh instance.
func CloseDefault() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultA == nil {
		defaultErr = nil
		defaultOnce = sync.Once{}
		return nil
	}
	err := defaultA.Close()
	defaultA = nil
	defaultErr = nil
	defaultOnce = sync.Once{}
	return err
}
