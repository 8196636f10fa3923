// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Result is the closed set of structured outputs the generation service can
// produce. Every variant exposes its cited verse references uniformly so the
// citation verifier needs no runtime introspection.
type Result interface {
	// VerseRefs returns every citable verse-reference string present on the
	// result, in field order. Entries are "chapter:verse" or full
	// "Book chapter:verse" strings exactly as the model produced them.
	VerseRefs() []string
}

// Citation is one cited verse reference into the source text.
type Citation struct {
	VerseReference string `json:"verse_reference" yaml:"verse_reference" validate:"required"`
}

// PassageAnalysis is the result of the passage-level and chapter-level
// pipelines: a fixed three-point summary, up to five themes, and verse
// citations drawn only from the supplied passage.
type PassageAnalysis struct {
	Summary             []string   `json:"summary" yaml:"summary" validate:"len=3,dive,required"`
	KeyThemes           []string   `json:"key_themes" yaml:"key_themes" validate:"max=5"`
	Citations           []Citation `json:"citations" yaml:"citations" validate:"dive"`
	LowConfidenceFields []string   `json:"low_confidence_fields" yaml:"low_confidence_fields"`
}

func (r PassageAnalysis) VerseRefs() []string {
	var refs []string
	for _, c := range r.Citations {
		if c.VerseReference != "" {
			refs = append(refs, c.VerseReference)
		}
	}
	return refs
}

// SegmentAnalysis is the stage-1 result for one book segment. Field caps
// are tighter than PassageAnalysis because dozens of these feed a single
// synthesis prompt.
type SegmentAnalysis struct {
	SegmentIndex        int        `json:"segment_index" yaml:"segment_index"`
	OutlineLabel        string     `json:"outline_label" yaml:"outline_label" validate:"required"`
	Summary             []string   `json:"summary" yaml:"summary" validate:"len=3,dive,required"`
	KeyThemes           []string   `json:"key_themes" yaml:"key_themes" validate:"max=3"`
	Citations           []Citation `json:"citations" yaml:"citations" validate:"max=5,dive"`
	LowConfidenceFields []string   `json:"low_confidence_fields" yaml:"low_confidence_fields"`
}

func (r SegmentAnalysis) VerseRefs() []string {
	var refs []string
	for _, c := range r.Citations {
		if c.VerseReference != "" {
			refs = append(refs, c.VerseReference)
		}
	}
	return refs
}

// WithSegmentIndex returns a copy of the result with the segment index
// stamped. The pipeline overrides whatever index the model returned, since
// models routinely echo 0 for every segment.
func (r SegmentAnalysis) WithSegmentIndex(idx int) SegmentAnalysis {
	r.SegmentIndex = idx
	return r
}

// OutlineSection is one section of a book outline. SourceSegments declares
// which validated segment indices ground the section; an empty list is a
// grounding violation.
type OutlineSection struct {
	Title          string `json:"title" yaml:"title" validate:"required"`
	StartVerse     string `json:"start_verse" yaml:"start_verse"`
	EndVerse       string `json:"end_verse" yaml:"end_verse"`
	SourceSegments []int  `json:"source_segments" yaml:"source_segments"`
}

// BookSynthesis is the stage-2 result for a whole book: an outline over the
// validated segment analyses plus book-level summary and themes.
type BookSynthesis struct {
	Outline             []OutlineSection `json:"outline" yaml:"outline" validate:"min=1,dive"`
	Summary             []string         `json:"summary" yaml:"summary" validate:"len=3,dive,required"`
	KeyThemes           []string         `json:"key_themes" yaml:"key_themes" validate:"max=5"`
	FailedSegments      []int            `json:"failed_segments" yaml:"failed_segments"`
	LowConfidenceFields []string         `json:"low_confidence_fields" yaml:"low_confidence_fields"`
}

func (r BookSynthesis) VerseRefs() []string {
	var refs []string
	for _, s := range r.Outline {
		if s.StartVerse != "" {
			refs = append(refs, s.StartVerse)
		}
		if s.EndVerse != "" {
			refs = append(refs, s.EndVerse)
		}
	}
	return refs
}

// WithFailedSegments returns a copy with the failed-segment indices stamped.
func (r BookSynthesis) WithFailedSegments(indices []int) BookSynthesis {
	r.FailedSegments = indices
	return r
}

// QuestionType classifies a study-guide question.
type QuestionType string

const (
	QuestionComprehension QuestionType = "comprehension"
	QuestionReflection    QuestionType = "reflection"
	QuestionApplication   QuestionType = "application"
)

// Question is one study-guide question anchored to an optional verse.
type Question struct {
	Type           QuestionType `json:"type" yaml:"type" validate:"required,oneof=comprehension reflection application"`
	Text           string       `json:"text" yaml:"text" validate:"required"`
	VerseReference string       `json:"verse_reference" yaml:"verse_reference"`
}

// Entity is a named person, place, or group mentioned in the passage.
type Entity struct {
	Name           string `json:"name" yaml:"name" validate:"required"`
	Type           string `json:"type" yaml:"type" validate:"required"`
	VerseReference string `json:"verse_reference" yaml:"verse_reference"`
	Description    string `json:"description" yaml:"description"`
}

// StudyGuide is the legacy passage result: summary, themes, named entities,
// and exactly five questions in a fixed type distribution (two
// comprehension, two reflection, one application). The distribution is
// enforced by a struct-level validation registered alongside the tag rules.
type StudyGuide struct {
	Summary             []string   `json:"summary" yaml:"summary" validate:"len=3,dive,required"`
	KeyThemes           []string   `json:"key_themes" yaml:"key_themes"`
	NamedEntities       []Entity   `json:"named_entities" yaml:"named_entities" validate:"dive"`
	Questions           []Question `json:"questions" yaml:"questions" validate:"len=5,dive"`
	LowConfidenceFields []string   `json:"low_confidence_fields" yaml:"low_confidence_fields"`
}

func (r StudyGuide) VerseRefs() []string {
	var refs []string
	for _, q := range r.Questions {
		if q.VerseReference != "" {
			refs = append(refs, q.VerseReference)
		}
	}
	for _, e := range r.NamedEntities {
		if e.VerseReference != "" {
			refs = append(refs, e.VerseReference)
		}
	}
	return refs
}

// SimilarityMatch is one verbatim-quote explanation for a candidate
// parallel passage.
type SimilarityMatch struct {
	Reference              string `json:"reference" yaml:"reference" validate:"required"`
	VerbatimSeedQuote      string `json:"verbatim_seed_quote" yaml:"verbatim_seed_quote" validate:"required"`
	VerbatimCandidateQuote string `json:"verbatim_candidate_quote" yaml:"verbatim_candidate_quote" validate:"required"`
}

// SimilarityExplanation is the model's explanation of why candidate
// passages parallel the seed, grounded in verbatim shared text.
type SimilarityExplanation struct {
	Matches             []SimilarityMatch `json:"matches" yaml:"matches" validate:"dive"`
	LowConfidenceFields []string          `json:"low_confidence_fields" yaml:"low_confidence_fields"`
}

func (r SimilarityExplanation) VerseRefs() []string {
	var refs []string
	for _, m := range r.Matches {
		if m.Reference != "" {
			refs = append(refs, m.Reference)
		}
	}
	return refs
}
