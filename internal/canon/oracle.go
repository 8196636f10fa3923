// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package canon is the reference-oracle boundary: canonical book metadata,
// chapter/verse counts, verse text, and free-text reference parsing. The
// rest of the pipeline treats its answers as authoritative and read-only.
package canon

import (
	"sync"

	"github.com/pdiddy/scripture-engine/pkg/types"
)

// Book is one canon book as reported by the oracle.
type Book struct {
	ID      types.BookID
	Name    string   // canonical display name, e.g. "1 Corinthians"
	Aliases []string // alternate spellings accepted by the parser, e.g. "1 Cor"
}

// Oracle answers canon lookups. Implementations must be deterministic:
// the same query always returns the same answer for a given corpus.
type Oracle interface {
	// Books returns all books in canonical order.
	Books() []Book

	// ChapterCount returns the number of chapters in a book, 0 if the book
	// is unknown.
	ChapterCount(book types.BookID) int

	// VerseCount returns the number of verses in a chapter, 0 if the
	// chapter does not exist.
	VerseCount(book types.BookID, chapter int) int

	// VerseText returns the text of one verse. ok is false when the verse
	// is missing from the corpus.
	VerseText(book types.BookID, chapter, verse int) (text string, ok bool)
}

// BookName returns the canonical display name for a book, or "" if unknown.
func BookName(o Oracle, id types.BookID) string {
	for _, b := range o.Books() {
		if b.ID == id {
			return b.Name
		}
	}
	return ""
}

// StaticBook describes one book for a StaticOracle. Chapters[i] holds the
// verse texts of chapter i+1; an empty string marks a verse missing from
// the corpus.
type StaticBook struct {
	Name     string
	Aliases  []string
	Chapters [][]string
}

// StaticOracle is an in-memory Oracle built from literal data. Used by
// tests and small fixtures; IDs are assigned sequentially from 1 in the
// order the books are given.
type StaticOracle struct {
	books    []Book
	chapters map[types.BookID][][]string
}

// NewStaticOracle builds a StaticOracle from the given books.
func NewStaticOracle(books ...StaticBook) *StaticOracle {
	o := &StaticOracle{chapters: make(map[types.BookID][][]string, len(books))}
	for i, b := range books {
		id := types.BookID(i + 1)
		o.books = append(o.books, Book{ID: id, Name: b.Name, Aliases: b.Aliases})
		o.chapters[id] = b.Chapters
	}
	return o
}

func (o *StaticOracle) Books() []Book { return o.books }

func (o *StaticOracle) ChapterCount(book types.BookID) int {
	return len(o.chapters[book])
}

func (o *StaticOracle) VerseCount(book types.BookID, chapter int) int {
	chs := o.chapters[book]
	if chapter < 1 || chapter > len(chs) {
		return 0
	}
	return len(chs[chapter-1])
}

func (o *StaticOracle) VerseText(book types.BookID, chapter, verse int) (string, bool) {
	chs := o.chapters[book]
	if chapter < 1 || chapter > len(chs) {
		return "", false
	}
	vs := chs[chapter-1]
	if verse < 1 || verse > len(vs) || vs[verse-1] == "" {
		return "", false
	}
	return vs[verse-1], true
}

// CachedOracle is an explicit read-through memo over another Oracle.
// Overlapping context windows and whole-book scans hit the same verses
// repeatedly; because the inner oracle is deterministic and read-only the
// cache only ever adds entries. Safe for concurrent use.
type CachedOracle struct {
	inner Oracle

	mu            sync.RWMutex
	chapterCounts map[types.BookID]int
	verseCounts   map[coordKey]int
	verseTexts    map[coordKey]verseEntry
}

type coordKey struct {
	book    types.BookID
	chapter int
	verse   int
}

type verseEntry struct {
	text string
	ok   bool
}

// Cached wraps an Oracle in a CachedOracle.
func Cached(inner Oracle) *CachedOracle {
	c := &CachedOracle{inner: inner}
	c.reset()
	return c
}

// Reset discards all memoized entries. Tests use this to restore a known
// state between cases.
func (c *CachedOracle) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *CachedOracle) reset() {
	c.chapterCounts = make(map[types.BookID]int)
	c.verseCounts = make(map[coordKey]int)
	c.verseTexts = make(map[coordKey]verseEntry)
}

func (c *CachedOracle) Books() []Book { return c.inner.Books() }

func (c *CachedOracle) ChapterCount(book types.BookID) int {
	c.mu.RLock()
	n, hit := c.chapterCounts[book]
	c.mu.RUnlock()
	if hit {
		return n
	}
	n = c.inner.ChapterCount(book)
	c.mu.Lock()
	c.chapterCounts[book] = n
	c.mu.Unlock()
	return n
}

func (c *CachedOracle) VerseCount(book types.BookID, chapter int) int {
	key := coordKey{book: book, chapter: chapter}
	c.mu.RLock()
	n, hit := c.verseCounts[key]
	c.mu.RUnlock()
	if hit {
		return n
	}
	n = c.inner.VerseCount(book, chapter)
	c.mu.Lock()
	c.verseCounts[key] = n
	c.mu.Unlock()
	return n
}

func (c *CachedOracle) VerseText(book types.BookID, chapter, verse int) (string, bool) {
	key := coordKey{book: book, chapter: chapter, verse: verse}
	c.mu.RLock()
	e, hit := c.verseTexts[key]
	c.mu.RUnlock()
	if hit {
		return e.text, e.ok
	}
	text, ok := c.inner.VerseText(book, chapter, verse)
	c.mu.Lock()
	c.verseTexts[key] = verseEntry{text: text, ok: ok}
	c.mu.Unlock()
	return text, ok
}
