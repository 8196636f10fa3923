// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"testing"
)

func TestCoordinateOrdering(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Coordinate
		wantBefore bool
	}{
		{"earlier chapter", Coordinate{2, 9}, Coordinate{3, 1}, true},
		{"same chapter earlier verse", Coordinate{3, 1}, Coordinate{3, 2}, true},
		{"equal", Coordinate{3, 16}, Coordinate{3, 16}, false},
		{"later chapter", Coordinate{4, 1}, Coordinate{3, 36}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(tt.b); got != tt.wantBefore {
				t.Errorf("%v.Before(%v) = %v, want %v", tt.a, tt.b, got, tt.wantBefore)
			}
			// After is the strict inverse except at equality.
			wantAfter := !tt.wantBefore && tt.a != tt.b
			if got := tt.a.After(tt.b); got != wantAfter {
				t.Errorf("%v.After(%v) = %v, want %v", tt.a, tt.b, got, wantAfter)
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	if got := (Coordinate{Chapter: 3, Verse: 16}).String(); got != "3:16" {
		t.Errorf("String() = %q, want \"3:16\"", got)
	}
}

func TestReferenceGranularity(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want Granularity
	}{
		{
			name: "verse range",
			ref:  Reference{StartChapter: 3, StartVerse: 16, EndChapter: 3, EndVerse: 21},
			want: GranularityPassage,
		},
		{
			name: "single verse",
			ref:  Reference{StartChapter: 3, StartVerse: 16, EndChapter: 3, EndVerse: 16},
			want: GranularityPassage,
		},
		{
			name: "chapter",
			ref:  Reference{StartChapter: 3, EndChapter: 3},
			want: GranularityChapter,
		},
		{
			name: "book",
			ref:  Reference{Book: 1, BookName: "John"},
			want: GranularityBook,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Granularity(); got != tt.want {
				t.Errorf("Granularity() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target any
		msg    string
	}{
		{"invalid reference", InvalidReferencef("bad %s", "ref"), new(*InvalidReferenceError), "bad ref"},
		{"empty passage", EmptyPassagef("too short: %d", 5), new(*EmptyPassageError), "too short: 5"},
		{"citation out of range", CitationOutOfRangef("cited %q", "4:1"), new(*CitationOutOfRangeError), `cited "4:1"`},
		{"analysis failed", AnalysisFailedf("no valid output"), new(*AnalysisFailedError), "no valid output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.msg)
			}
			if !errors.As(tt.err, tt.target) {
				t.Errorf("errors.As failed for %T", tt.err)
			}
		})
	}
}

func TestAnalysisFailedErrorPreservesRawResponse(t *testing.T) {
	err := &AnalysisFailedError{Message: "invalid after retry", RawResponse: `{"broken":`}

	var afe *AnalysisFailedError
	if !errors.As(error(err), &afe) {
		t.Fatal("errors.As failed")
	}
	if afe.RawResponse != `{"broken":` {
		t.Errorf("RawResponse = %q, want preserved raw output", afe.RawResponse)
	}
}
