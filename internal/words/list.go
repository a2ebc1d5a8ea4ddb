// Package words maintains the practice word list: an ordered sequence of
// unique words, persisted on every change.
package words

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"
)

// Word list errors, surfaced to the UI as transient inline messages.
var (
	ErrEmptyWord = errors.New("word is empty")
	ErrDuplicate = errors.New("word is already in the list")
)

// Persister saves the word list. Satisfied by *store.Store via a thin
// adapter; tests use an in-memory stub.
type Persister interface {
	Get(key string, v any) bool
	Put(key string, v any) error
}

// List is an ordered, duplicate-free word list. Duplicate checking is
// case-sensitive: "Apple" and "apple" are distinct entries. Display order is
// insertion order.
type List struct {
	key     string
	store   Persister
	entries []string
}

// Load reads the persisted list. An absent or malformed entry yields an
// empty list.
func Load(store Persister, key string) *List {
	l := &List{key: key, store: store}
	var saved []string
	if store.Get(key, &saved) {
		l.entries = saved
	}
	return l
}

// Replace overwrites the list wholesale and persists the result. Used for
// share-link imports. Entries are trimmed and deduplicated, keeping first
// occurrences.
func (l *List) Replace(words []string) {
	l.entries = nil
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		l.entries = append(l.entries, w)
	}
	l.persist()
}

// Add appends a word after trimming. Empty and duplicate words are
// rejected with a sentinel error.
func (l *List) Add(word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}
	for _, w := range l.entries {
		if w == word {
			return ErrDuplicate
		}
	}
	l.entries = append(l.entries, word)
	l.persist()
	return nil
}

// Remove deletes the entry at index. Out-of-range indexes are a no-op.
func (l *List) Remove(index int) {
	if index < 0 || index >= len(l.entries) {
		return
	}
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	l.persist()
}

// Words returns a copy of the list in display order.
func (l *List) Words() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of words.
func (l *List) Len() int { return len(l.entries) }

// Reload re-reads the persisted list, for external-change pickup.
func (l *List) Reload() {
	var saved []string
	if l.store.Get(l.key, &saved) {
		l.entries = saved
	}
}

func (l *List) persist() {
	if err := l.store.Put(l.key, l.entries); err != nil {
		log.Error("could not save word list", "error", err)
	}
}
