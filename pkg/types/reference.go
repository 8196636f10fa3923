// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the value objects shared across pipeline stages:
// references, retrieved passages, book segments, and the structured result
// variants returned by the generation service.
package types

import "fmt"

// BookID identifies a book within the canon. Values are assigned by the
// oracle and are stable for a given corpus database.
type BookID int

// Coordinate is a (chapter, verse) position within a book. Both components
// are 1-based.
type Coordinate struct {
	Chapter int `json:"chapter" yaml:"chapter"`
	Verse   int `json:"verse" yaml:"verse"`
}

// Before reports whether c precedes o in lexicographic (chapter, verse) order.
func (c Coordinate) Before(o Coordinate) bool {
	if c.Chapter != o.Chapter {
		return c.Chapter < o.Chapter
	}
	return c.Verse < o.Verse
}

// After reports whether c follows o in lexicographic (chapter, verse) order.
func (c Coordinate) After(o Coordinate) bool { return o.Before(c) }

func (c Coordinate) String() string { return fmt.Sprintf("%d:%d", c.Chapter, c.Verse) }

// Granularity classifies a parsed reference by scope.
type Granularity string

const (
	GranularityPassage Granularity = "passage" // explicit verse range, e.g. "John 3:16-21"
	GranularityChapter Granularity = "chapter" // chapter reference, e.g. "John 3"
	GranularityBook    Granularity = "book"    // whole book, e.g. "1 Corinthians"
)

// Reference is a parsed request: a book plus optional start/end coordinates.
// Zero chapter/verse fields mean "absent"; callers must check them against
// the derived granularity before use.
type Reference struct {
	Book     BookID
	BookName string

	StartChapter int
	StartVerse   int
	EndChapter   int
	EndVerse     int
}

// Granularity derives the scope of the reference from which fields are set.
func (r Reference) Granularity() Granularity {
	if r.StartVerse > 0 && r.EndVerse > 0 {
		return GranularityPassage
	}
	if r.StartChapter > 0 {
		return GranularityChapter
	}
	return GranularityBook
}

// Passage is a retrieved source text: the labelled body plus optional
// context windows. Immutable once built; owned by the pipeline invocation
// that retrieved it.
type Passage struct {
	Reference string
	Book      BookID
	BookName  string
	Start     Coordinate
	End       Coordinate

	// Text holds one "[chapter:verse] text" line per verse, newline-joined.
	Text string

	// ContextBefore and ContextAfter hold up to three labelled verses on
	// either side of the passage, clamped at book boundaries. Empty string
	// means no context is available on that side.
	ContextBefore string
	ContextAfter  string
}

// Segment is one deterministic slice of a book for the two-stage book
// pipeline. Typically one chapter; a verse window when the chapter exceeds
// the per-segment cap.
type Segment struct {
	Book       BookID
	Index      int // 0-based, stable across runs for the same book and cap
	Start      Coordinate
	End        Coordinate
	VerseCount int
	Text       string // labelled passage text ("[chapter:verse] …")
	Reference  string // human-readable, e.g. "Ruth 1:1-22"
}

// SegmentFailure records one segment the book pipeline could not analyze.
type SegmentFailure struct {
	Index        int
	ChapterStart int
	ChapterEnd   int
	Err          string
}
