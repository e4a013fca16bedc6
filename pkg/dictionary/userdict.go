package dictionary

import (
	"sync"
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"
)

// UserDict is a runtime overlay of custom entries layered on top of the
// artifact. Entries live in a patricia trie and are never persisted. Adds
// and lookups may race, so the trie is guarded; the artifact itself needs
// no locking.
type UserDict struct {
	mu   sync.RWMutex
	trie *patricia.Trie
}

// NewUserDict returns an empty overlay.
func NewUserDict() *UserDict {
	return &UserDict{trie: patricia.NewTrie()}
}

// Add registers a custom record for surface. Multiple records per surface
// keep insertion order, matching artifact semantics.
func (u *UserDict) Add(surface string, e WordEntry) {
	if surface == "" {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	key := patricia.Prefix(surface)
	if item := u.trie.Get(key); item != nil {
		u.trie.Set(key, append(item.([]WordEntry), e))
		return
	}
	u.trie.Insert(key, []WordEntry{e})
}

// Len returns the number of distinct surfaces in the overlay.
func (u *UserDict) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	n := 0
	u.trie.Visit(func(patricia.Prefix, patricia.Item) error {
		n++
		return nil
	})
	return n
}

// PrefixLookup returns overlay keys that are prefixes of s, shortest first.
func (u *UserDict) PrefixLookup(s string) []Match {
	if s == "" {
		return nil
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	var out []Match
	u.trie.VisitPrefixes(patricia.Prefix(s), func(p patricia.Prefix, item patricia.Item) error {
		n := utf8.RuneCount(p)
		for _, e := range item.([]WordEntry) {
			out = append(out, Match{Len: n, Entry: e})
		}
		return nil
	})
	return out
}
