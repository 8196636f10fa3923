// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve resolves reference strings to canonical coordinates and
// builds labelled passage text with bounded context windows. All text comes
// from the canon oracle; retrieval itself makes no generation calls.
package retrieve

import (
	"fmt"
	"strings"

	"github.com/pdiddy/scripture-engine/internal/canon"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

const (
	// ContextVerses is the window size on each side of a passage. Clamped
	// at book boundaries.
	ContextVerses = 3

	// MaxPassageVerses is the ceiling on verses in one retrieved passage.
	MaxPassageVerses = 30
)

// Retriever resolves references against a canon oracle.
type Retriever struct {
	oracle canon.Oracle
}

// New returns a Retriever backed by the given oracle. Wrap the oracle with
// canon.Cached when the caller will issue overlapping lookups.
func New(oracle canon.Oracle) *Retriever {
	return &Retriever{oracle: oracle}
}

// Oracle exposes the retriever's oracle for collaborators that need raw
// canon lookups (the citation verifier, the parallels scorer).
func (r *Retriever) Oracle() canon.Oracle { return r.oracle }

// ParseReference parses a reference string strictly: the result must carry
// an explicit verse range. Chapter-only and book-only strings fail with
// InvalidReference even though DetectGranularity accepts them.
func (r *Retriever) ParseReference(reference string) (types.Reference, error) {
	ref, err := r.parse(reference)
	if err != nil {
		return types.Reference{}, err
	}
	if ref.StartVerse == 0 || ref.EndVerse == 0 {
		return types.Reference{}, types.InvalidReferencef(
			"reference %q requires a verse range (e.g. 'John 3:16-21' or 'Psalm 23:1-6')",
			reference,
		)
	}
	return ref, nil
}

// DetectGranularity parses a reference permissively and classifies its
// scope without failing on chapter-only or book-only input. The returned
// reference may have zero verse fields for chapter and book granularities.
func (r *Retriever) DetectGranularity(reference string) (types.Reference, types.Granularity, error) {
	ref, err := r.parse(reference)
	if err != nil {
		return types.Reference{}, "", err
	}
	return ref, ref.Granularity(), nil
}

func (r *Retriever) parse(reference string) (types.Reference, error) {
	if strings.TrimSpace(reference) == "" {
		return types.Reference{}, types.InvalidReferencef("reference cannot be empty")
	}
	refs := canon.ParseReferences(r.oracle, reference)
	if len(refs) == 0 {
		return types.Reference{}, types.InvalidReferencef("no Bible reference found in %q", reference)
	}
	return refs[0], nil
}

// RetrievePassage retrieves a passage by reference string: strict parse,
// verse-count ceiling, labelled text, and context windows.
func (r *Retriever) RetrievePassage(reference string) (types.Passage, error) {
	ref, err := r.ParseReference(reference)
	if err != nil {
		return types.Passage{}, err
	}

	total := r.countPassageVerses(ref)
	if total > MaxPassageVerses {
		return types.Passage{}, types.InvalidReferencef(
			"passage %q spans %d verses (maximum %d); use a shorter range",
			reference, total, MaxPassageVerses,
		)
	}

	start := types.Coordinate{Chapter: ref.StartChapter, Verse: ref.StartVerse}
	end := types.Coordinate{Chapter: ref.EndChapter, Verse: ref.EndVerse}

	return types.Passage{
		Reference:     reference,
		Book:          ref.Book,
		BookName:      ref.BookName,
		Start:         start,
		End:           end,
		Text:          r.buildRangeText(ref.Book, start, end),
		ContextBefore: r.coordsText(ref.Book, r.walkBack(ref.Book, start, ContextVerses)),
		ContextAfter:  r.coordsText(ref.Book, r.walkForward(ref.Book, end, ContextVerses)),
	}, nil
}

// RetrieveChapter retrieves one whole chapter as a passage. Fails with
// InvalidReference when the chapter has no verses, which also covers
// chapters past the end of the book.
func (r *Retriever) RetrieveChapter(book types.BookID, chapter int) (types.Passage, error) {
	verses := r.oracle.VerseCount(book, chapter)
	bookName := canon.BookName(r.oracle, book)
	if verses == 0 {
		return types.Passage{}, types.InvalidReferencef(
			"chapter %d of %s has no verses", chapter, bookName,
		)
	}

	start := types.Coordinate{Chapter: chapter, Verse: 1}
	end := types.Coordinate{Chapter: chapter, Verse: verses}

	return types.Passage{
		Reference:     fmt.Sprintf("%s %d:1-%d", bookName, chapter, verses),
		Book:          book,
		BookName:      bookName,
		Start:         start,
		End:           end,
		Text:          r.buildRangeText(book, start, end),
		ContextBefore: r.coordsText(book, r.walkBack(book, start, ContextVerses)),
		ContextAfter:  r.coordsText(book, r.walkForward(book, end, ContextVerses)),
	}, nil
}

// countPassageVerses sums the verse count of a potentially multi-chapter
// range: exact arithmetic for a single chapter, partial first/last counts
// plus full middle chapters otherwise.
func (r *Retriever) countPassageVerses(ref types.Reference) int {
	total := 0
	for ch := ref.StartChapter; ch <= ref.EndChapter; ch++ {
		switch {
		case ch == ref.StartChapter && ch == ref.EndChapter:
			total += ref.EndVerse - ref.StartVerse + 1
		case ch == ref.StartChapter:
			total += r.oracle.VerseCount(ref.Book, ch) - ref.StartVerse + 1
		case ch == ref.EndChapter:
			total += ref.EndVerse
		default:
			total += r.oracle.VerseCount(ref.Book, ch)
		}
	}
	return total
}

// buildRangeText builds "[chapter:verse] text" lines for a verse range.
// Verses the oracle reports missing are skipped, not errors.
func (r *Retriever) buildRangeText(book types.BookID, start, end types.Coordinate) string {
	var lines []string
	for ch := start.Chapter; ch <= end.Chapter; ch++ {
		sv := 1
		if ch == start.Chapter {
			sv = start.Verse
		}
		ev := r.oracle.VerseCount(book, ch)
		if ch == end.Chapter {
			ev = end.Verse
		}
		for v := sv; v <= ev; v++ {
			if text, ok := r.oracle.VerseText(book, ch, v); ok {
				lines = append(lines, fmt.Sprintf("[%d:%d] %s", ch, v, text))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// walkBack walks backward n verses from start, exclusive, crossing chapter
// boundaries and stopping at the book start. Results are chronological.
func (r *Retriever) walkBack(book types.BookID, start types.Coordinate, n int) []types.Coordinate {
	var coords []types.Coordinate
	ch, v := start.Chapter, start.Verse-1
	for len(coords) < n {
		if v < 1 {
			ch--
			if ch < 1 {
				break
			}
			v = r.oracle.VerseCount(book, ch)
			if v == 0 {
				break
			}
		}
		coords = append(coords, types.Coordinate{Chapter: ch, Verse: v})
		v--
	}
	for i, j := 0, len(coords)-1; i < j; i, j = i+1, j-1 {
		coords[i], coords[j] = coords[j], coords[i]
	}
	return coords
}

// walkForward walks forward n verses from end, exclusive, crossing chapter
// boundaries and stopping at the book end.
func (r *Retriever) walkForward(book types.BookID, end types.Coordinate, n int) []types.Coordinate {
	maxChapters := r.oracle.ChapterCount(book)
	var coords []types.Coordinate
	ch, v := end.Chapter, end.Verse+1
	for len(coords) < n {
		if v > r.oracle.VerseCount(book, ch) {
			ch++
			if ch > maxChapters {
				break
			}
			v = 1
		}
		coords = append(coords, types.Coordinate{Chapter: ch, Verse: v})
		v++
	}
	return coords
}

// coordsText renders coordinates as labelled lines, or "" when none have
// text in the corpus.
func (r *Retriever) coordsText(book types.BookID, coords []types.Coordinate) string {
	var lines []string
	for _, c := range coords {
		if text, ok := r.oracle.VerseText(book, c.Chapter, c.Verse); ok {
			lines = append(lines, fmt.Sprintf("[%d:%d] %s", c.Chapter, c.Verse, text))
		}
	}
	return strings.Join(lines, "\n")
}
