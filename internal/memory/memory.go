// Package memory remembers restored translations so later extractions can
// suggest them for identical source text.
package memory

import (
	"context"
	"sync"

	"modtrans/internal/record"
	"modtrans/internal/textutil"
)

// Entry is one remembered translation and where it was last seen.
type Entry struct {
	Source     string
	Translated string
	File       string
	Key        string
}

// Store looks up and remembers translations by source text.
type Store interface {
	Lookup(ctx context.Context, source string) (string, bool)
	Remember(ctx context.Context, entries []Entry) error
	Close()
}

// ContextPrefix starts the line Annotate appends to a record context.
const ContextPrefix = "Translation memory: "

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	memory map[string]string // hash → translated text
}

// New creates an empty in-process store.
func New() *Memory {
	return &Memory{memory: make(map[string]string)}
}

// Lookup returns the remembered translation of source.
func (m *Memory) Lookup(_ context.Context, source string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.memory[textutil.Hash(source)]
	return v, ok
}

// Remember stores entries, replacing earlier translations of the same source.
func (m *Memory) Remember(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.memory[textutil.Hash(e.Source)] = e.Translated
	}
	return nil
}

// Len reports the number of remembered sources.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.memory)
}

// Close is a no-op.
func (m *Memory) Close() {}

// Entries converts restored records of file into memory entries. Only
// records carrying a translation different from a real original qualify.
func Entries(file string, recs []record.Record) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		if r.IsExtra() || r.Original == "" || r.Translation == "" || r.Translation == r.Original {
			continue
		}
		out = append(out, Entry{Source: r.Original, Translated: r.Translation, File: file, Key: r.Key})
	}
	return out
}

// Annotate appends a memory suggestion to the context of every untranslated
// record whose original is remembered. It returns the number annotated.
func Annotate(ctx context.Context, s Store, recs []record.Record) int {
	n := 0
	for i := range recs {
		r := &recs[i]
		if r.Translation != "" || r.IsExtra() || r.Original == "" {
			continue
		}
		v, ok := s.Lookup(ctx, r.Original)
		if !ok {
			continue
		}
		if r.Context != "" {
			r.Context += "\n"
		}
		r.Context += ContextPrefix + v
		n++
	}
	return n
}
