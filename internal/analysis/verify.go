// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"fmt"
	"sort"

	"github.com/pdiddy/scripture-engine/internal/canon"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

// CitationMode controls how VerifyCitations validates cited references.
type CitationMode int

const (
	// SingleVerse checks each citation against the passage's start/end
	// range. Used for passage, chapter, and study-guide results.
	SingleVerse CitationMode = iota

	// Synthesis checks each citation for exact-string membership in the
	// union of validated segment citations. Stricter than the range check
	// on purpose: segment outputs are pre-validated, and synthesis may
	// only reuse them verbatim. Both stages cite through the same
	// "chapter:verse" labels, which keeps formatting variance between
	// stages from producing false negatives.
	Synthesis
)

// VerifyCitations checks every citation the result exposes. In SingleVerse
// mode citations are parsed via the oracle and range-checked against the
// passage; in Synthesis mode validRefs must hold the allowed citation
// strings. Any violation is a CitationOutOfRangeError.
func VerifyCitations(
	o canon.Oracle,
	result types.Result,
	passage types.Passage,
	mode CitationMode,
	validRefs map[string]struct{},
) error {
	refs := result.VerseRefs()

	if mode == Synthesis {
		if validRefs == nil {
			return fmt.Errorf("validRefs must be provided for synthesis mode")
		}
		for _, ref := range refs {
			if _, ok := validRefs[ref]; !ok {
				return types.CitationOutOfRangef(
					"synthesis cited %q which was not present in any validated segment output",
					ref,
				)
			}
		}
		return nil
	}

	for _, ref := range refs {
		if err := checkSingleVerse(o, ref, passage); err != nil {
			return err
		}
	}
	return nil
}

// checkSingleVerse parses one citation string and verifies its start
// coordinate lies within the passage range.
func checkSingleVerse(o canon.Oracle, ref string, passage types.Passage) error {
	full := ref
	if isShortForm(ref) {
		full = fmt.Sprintf("%s %s", passage.BookName, ref)
	}

	parsed := canon.ParseReferences(o, full)
	if len(parsed) == 0 {
		return types.CitationOutOfRangef("cited reference %q could not be parsed", ref)
	}
	cited := parsed[0]

	if cited.Book != passage.Book {
		return types.CitationOutOfRangef(
			"cited verse %q is in a different book than the passage", ref,
		)
	}

	start := types.Coordinate{Chapter: cited.StartChapter, Verse: cited.StartVerse}
	if start.Before(passage.Start) || start.After(passage.End) {
		return types.CitationOutOfRangef(
			"cited verse %q (%s) is outside the passage range %s-%s",
			ref, start, passage.Start, passage.End,
		)
	}
	return nil
}

// isShortForm reports whether ref is a bare "chapter:verse" citation that
// needs the passage's book name prefixed before parsing.
func isShortForm(ref string) bool {
	if ref == "" {
		return false
	}
	colons := 0
	for _, r := range ref {
		if r == ':' {
			colons++
		}
	}
	first := rune(ref[0])
	return colons == 1 && first >= '0' && first <= '9'
}

// SegmentCitationSet builds the union of citation strings across validated
// segment outputs, for Synthesis-mode verification.
func SegmentCitationSet(segments []types.SegmentAnalysis) map[string]struct{} {
	set := make(map[string]struct{})
	for _, seg := range segments {
		for _, ref := range seg.VerseRefs() {
			set[ref] = struct{}{}
		}
	}
	return set
}

// VerifySynthesisGrounding checks that every outline section declares a
// non-empty source-segment list and that every declared index corresponds
// to a validated (non-failed) segment.
func VerifySynthesisGrounding(book types.BookSynthesis, segments []types.SegmentAnalysis) error {
	valid := make(map[int]struct{}, len(segments))
	for _, s := range segments {
		valid[s.SegmentIndex] = struct{}{}
	}

	for i, section := range book.Outline {
		if len(section.SourceSegments) == 0 {
			return types.CitationOutOfRangef(
				"outline section %d (%q) has empty source_segments; "+
					"every outline section must declare its source segment indices",
				i, section.Title,
			)
		}
		for _, idx := range section.SourceSegments {
			if _, ok := valid[idx]; !ok {
				return types.CitationOutOfRangef(
					"outline section %d (%q) references segment index %d which does "+
						"not exist in the validated segment outputs; valid indices: %v",
					i, section.Title, idx, sortedIndices(valid),
				)
			}
		}
	}
	return nil
}

func sortedIndices(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
