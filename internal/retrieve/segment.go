// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"fmt"

	"github.com/pdiddy/scripture-engine/internal/canon"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

const (
	// MaxSegmentVerses is the default per-segment verse cap.
	MaxSegmentVerses = 30

	// MaxBookSegments is the ceiling on segments per book. Books that
	// partition into more than this are refused.
	MaxBookSegments = 60
)

// SegmentBook partitions a book into segments with the default cap.
func (r *Retriever) SegmentBook(book types.BookID) ([]types.Segment, error) {
	return r.SegmentBookWithCap(book, MaxSegmentVerses)
}

// SegmentBookWithCap deterministically partitions a book: each chapter is
// one segment when it fits the cap, otherwise consecutive fixed-size verse
// windows (the last may be shorter). Chapters with no verses are skipped.
// Indices are sequential from 0 across the book. The same book and cap
// always yield the same segment list; downstream synthesis references
// segments by index.
func (r *Retriever) SegmentBookWithCap(book types.BookID, maxVerses int) ([]types.Segment, error) {
	bookName := canon.BookName(r.oracle, book)
	chapters := r.oracle.ChapterCount(book)

	var segments []types.Segment
	for ch := 1; ch <= chapters; ch++ {
		verses := r.oracle.VerseCount(book, ch)
		if verses == 0 {
			continue
		}

		for startV := 1; startV <= verses; startV += maxVerses {
			endV := startV + maxVerses - 1
			if endV > verses {
				endV = verses
			}
			start := types.Coordinate{Chapter: ch, Verse: startV}
			end := types.Coordinate{Chapter: ch, Verse: endV}
			segments = append(segments, types.Segment{
				Book:       book,
				Index:      len(segments),
				Start:      start,
				End:        end,
				VerseCount: endV - startV + 1,
				Text:       r.buildRangeText(book, start, end),
				Reference:  fmt.Sprintf("%s %d:%d-%d", bookName, ch, startV, endV),
			})
		}
	}

	if len(segments) > MaxBookSegments {
		return nil, types.InvalidReferencef(
			"%s produces %d segments (maximum %d); use a chapter range instead",
			bookName, len(segments), MaxBookSegments,
		)
	}
	return segments, nil
}
