// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/scripture-engine/internal/canon"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

func verifyOracle() *canon.StaticOracle {
	john := canon.StaticBook{Name: "John"}
	for ci, n := range []int{10, 12, 36, 20} {
		var ch []string
		for v := 1; v <= n; v++ {
			ch = append(ch, fmt.Sprintf("John %d:%d text", ci+1, v))
		}
		john.Chapters = append(john.Chapters, ch)
	}
	mark := canon.StaticBook{Name: "Mark", Chapters: [][]string{{"Mark 1:1 text"}}}
	return canon.NewStaticOracle(john, mark)
}

func johnPassage() types.Passage {
	return types.Passage{
		Reference: "John 3:16-21",
		Book:      1,
		BookName:  "John",
		Start:     types.Coordinate{Chapter: 3, Verse: 16},
		End:       types.Coordinate{Chapter: 3, Verse: 21},
	}
}

func passageWithCitations(refs ...string) types.PassageAnalysis {
	pa := types.PassageAnalysis{Summary: []string{"a", "b", "c"}}
	for _, r := range refs {
		pa.Citations = append(pa.Citations, types.Citation{VerseReference: r})
	}
	return pa
}

func TestVerifyCitationsSingleVerse(t *testing.T) {
	o := verifyOracle()
	passage := johnPassage()

	tests := []struct {
		name     string
		citation string
		wantErr  string
	}{
		{name: "start of range", citation: "3:16"},
		{name: "end of range", citation: "3:21"},
		{name: "full form within range", citation: "John 3:18"},
		{name: "one past the end", citation: "3:22", wantErr: "outside the passage range"},
		{name: "one before the start", citation: "3:15", wantErr: "outside the passage range"},
		{name: "different chapter", citation: "4:1", wantErr: "outside the passage range"},
		{name: "different book", citation: "Mark 1:1", wantErr: "different book"},
		{name: "unparseable", citation: "the verse about love", wantErr: "could not be parsed"},
		{name: "short form garbage", citation: "99:99", wantErr: "outside the passage range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyCitations(o, passageWithCitations(tt.citation), passage, SingleVerse, nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("VerifyCitations(%q) failed: %v", tt.citation, err)
				}
				return
			}
			var oor *types.CitationOutOfRangeError
			if !errors.As(err, &oor) {
				t.Fatalf("VerifyCitations(%q) error = %v, want CitationOutOfRangeError", tt.citation, err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestVerifyCitationsFirstViolationWins(t *testing.T) {
	o := verifyOracle()

	err := VerifyCitations(o, passageWithCitations("3:16", "3:22", "3:17"), johnPassage(), SingleVerse, nil)
	var oor *types.CitationOutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("error = %v, want CitationOutOfRangeError", err)
	}
	if !strings.Contains(err.Error(), `"3:22"`) {
		t.Errorf("error = %q, want it to name the violating citation", err.Error())
	}
}

func TestVerifyCitationsNoCitations(t *testing.T) {
	o := verifyOracle()
	if err := VerifyCitations(o, passageWithCitations(), johnPassage(), SingleVerse, nil); err != nil {
		t.Errorf("result with no citations failed verification: %v", err)
	}
}

func TestVerifyCitationsSynthesisMembership(t *testing.T) {
	o := verifyOracle()
	valid := map[string]struct{}{"1:1": {}, "2:4": {}}

	result := types.BookSynthesis{
		Outline: []types.OutlineSection{{Title: "Opening", StartVerse: "1:1", EndVerse: "2:4"}},
		Summary: []string{"a", "b", "c"},
	}
	if err := VerifyCitations(o, result, types.Passage{}, Synthesis, valid); err != nil {
		t.Fatalf("member citations rejected: %v", err)
	}

	// "1:2" is a real verse but no validated segment cited it.
	bad := types.BookSynthesis{
		Outline: []types.OutlineSection{{Title: "Opening", StartVerse: "1:2"}},
		Summary: []string{"a", "b", "c"},
	}
	err := VerifyCitations(o, bad, types.Passage{}, Synthesis, valid)
	var oor *types.CitationOutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("error = %v, want CitationOutOfRangeError", err)
	}
	if !strings.Contains(err.Error(), "not present in any validated segment output") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestVerifyCitationsSynthesisRequiresValidRefs(t *testing.T) {
	o := verifyOracle()
	result := types.BookSynthesis{Summary: []string{"a", "b", "c"}}

	err := VerifyCitations(o, result, types.Passage{}, Synthesis, nil)
	if err == nil {
		t.Fatal("nil validRefs accepted in synthesis mode")
	}
	var oor *types.CitationOutOfRangeError
	if errors.As(err, &oor) {
		t.Error("missing validRefs reported as a citation violation; want a plain error")
	}
}

func TestSegmentCitationSet(t *testing.T) {
	segments := []types.SegmentAnalysis{
		{Citations: []types.Citation{{VerseReference: "1:1"}, {VerseReference: "1:5"}}},
		{Citations: []types.Citation{{VerseReference: "1:5"}, {VerseReference: "2:3"}}},
	}

	set := SegmentCitationSet(segments)
	if len(set) != 3 {
		t.Fatalf("set has %d entries, want 3", len(set))
	}
	for _, ref := range []string{"1:1", "1:5", "2:3"} {
		if _, ok := set[ref]; !ok {
			t.Errorf("set missing %q", ref)
		}
	}
}

func TestVerifySynthesisGrounding(t *testing.T) {
	segments := []types.SegmentAnalysis{
		{SegmentIndex: 0}, {SegmentIndex: 1}, {SegmentIndex: 3},
	}

	tests := []struct {
		name    string
		outline []types.OutlineSection
		wantErr string
	}{
		{
			name: "all sections grounded",
			outline: []types.OutlineSection{
				{Title: "Opening", SourceSegments: []int{0, 1}},
				{Title: "Closing", SourceSegments: []int{3}},
			},
		},
		{
			name: "empty source segments",
			outline: []types.OutlineSection{
				{Title: "Opening", SourceSegments: []int{}},
			},
			wantErr: "empty source_segments",
		},
		{
			name: "failed segment referenced",
			outline: []types.OutlineSection{
				{Title: "Opening", SourceSegments: []int{0, 2}},
			},
			wantErr: "segment index 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := types.BookSynthesis{Outline: tt.outline, Summary: []string{"a", "b", "c"}}
			err := VerifySynthesisGrounding(book, segments)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("VerifySynthesisGrounding failed: %v", err)
				}
				return
			}
			var oor *types.CitationOutOfRangeError
			if !errors.As(err, &oor) {
				t.Fatalf("error = %v, want CitationOutOfRangeError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}
