// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt assembles grounding-constrained prompts for every pipeline
// stage. Pure string assembly: no state, no side effects, no oracle access.
//
// Every system prompt is composed from the same shared clause blocks
// (grounding, citation format, refusal rules, structured output), so the
// constraints stay identical across stages.
package prompt

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/pdiddy/scripture-engine/pkg/types"
)

// Shared clause blocks, included in every system prompt.

const groundingClause = `GROUNDING RULES:
- Analyse ONLY the text provided in the marked sections below.
- Never introduce information from outside the provided text — no outside commentary,
  theological tradition, or cross-references not present in the given text.
- If you cannot determine a value from the provided text alone, return null for that
  field and add the field name to low_confidence_fields.`

const citationClause = `CITATION RULES:
- Every verse_reference you provide must be a verse that appears in the PASSAGE section.
- Do not cite verses from CONTEXT sections or from segments not provided to you.
- Use the format "chapter:verse" (e.g., "3:16") matching the [chapter:verse] labels in the text.`

const refusalClause = `REFUSAL RULES:
- If a field cannot be grounded in the provided text, return null for that field.
- Add any null field name to the low_confidence_fields list.
- Do not speculate, infer, or fill gaps with general theological knowledge.`

const toolClause = "Use the provided tool to return your structured response. " +
	"Do not return plain text."

// joinClauses assembles a system prompt from clause blocks.
func joinClauses(clauses ...string) string {
	return strings.Join(clauses, "\n\n")
}

// PassageSystem is the system prompt for passage-level and chapter-level
// analysis.
func PassageSystem() string {
	return joinClauses(
		"You are a Bible passage analysis engine with strict grounding requirements.",
		groundingClause,
		citationClause,
		refusalClause,
		`OUTPUT RULES:
- Provide exactly 3 summary bullet points — no more, no fewer.
- Each summary point must be grounded in a specific statement from the passage.
- Provide up to 5 key themes drawn only from the passage text.
- Provide verse-level citations only for verses that appear in the PASSAGE section.`,
		toolClause,
	)
}

// passageUserTmpl labels context sections explicitly as non-citable and
// wraps the analyzable text in a delimited PASSAGE section.
var passageUserTmpl = template.Must(template.New("passage").Parse(
	`{{if .ContextBefore}}CONTEXT (preceding verses — do not analyse or cite these):
{{.ContextBefore}}

{{end}}PASSAGE ({{.Reference}}):
{{.Text}}{{if .ContextAfter}}

CONTEXT (following verses — do not analyse or cite these):
{{.ContextAfter}}{{end}}`))

// PassageUser builds the user prompt for a retrieved passage.
func PassageUser(p types.Passage) string {
	var buf bytes.Buffer
	if err := passageUserTmpl.Execute(&buf, p); err != nil {
		panic(err) // static template over a plain struct
	}
	return buf.String()
}

// SegmentSystem is the system prompt for one book segment.
func SegmentSystem() string {
	return joinClauses(
		"You are a Bible book analysis engine processing one segment of a larger book.",
		groundingClause,
		citationClause,
		refusalClause,
		`OUTPUT RULES:
- Provide exactly 3 summary bullet points for this segment only.
- Provide an outline_label: a short title for this segment (8 words or fewer).
- Provide up to 3 key themes from this segment's text only.
- Provide up to 5 verse citations from this segment only.
- Do not reference content from other chapters or the book as a whole.`,
		toolClause,
	)
}

// SegmentUser builds the user prompt for one book segment.
func SegmentUser(text, reference string, index int) string {
	return fmt.Sprintf("SEGMENT %d (%s):\n%s", index, reference, text)
}

// SynthesisSystem is the system prompt for book-level synthesis. It limits
// the model to reorganising and labelling validated segment outputs.
func SynthesisSystem() string {
	return joinClauses(
		"You are a Bible book synthesis engine. Your input is a set of validated "+
			"segment analyses produced in an earlier stage.",
		`SYNTHESIS GROUNDING RULES:
- You may ONLY reorganize, combine, and label information from the numbered segment summaries and themes below.
- Do NOT add interpretations, connections, or conclusions not explicitly stated in the segment summaries or themes.
- Do NOT speculate about segments marked as FAILED.
- Every outline section must declare the source_segments it draws from (use the segment index numbers provided).
- An outline section with no valid source_segments is not permitted.`,
		refusalClause,
		`OUTPUT RULES:
- Produce a book outline: each section has a title, start_verse, end_verse, and source_segments list.
- Produce exactly 3 book-level summary bullet points drawn only from segment summaries.
- Produce up to 5 book-level themes drawn only from segment themes.
- Use the verse anchor format "chapter:verse" (e.g. "1:1").`,
		toolClause,
	)
}

// SynthesisUser builds the synthesis input from validated segment outputs,
// interleaved with explicit gap markers for failed segments in index order
// so the model cannot infer or fill in their content.
func SynthesisUser(results []types.SegmentAnalysis, failures []types.SegmentFailure) string {
	failedByIndex := make(map[int]types.SegmentFailure, len(failures))
	byIndex := make(map[int]types.SegmentAnalysis, len(results))
	var indices []int
	for _, f := range failures {
		failedByIndex[f.Index] = f
		indices = append(indices, f.Index)
	}
	for _, s := range results {
		byIndex[s.SegmentIndex] = s
		indices = append(indices, s.SegmentIndex)
	}
	sort.Ints(indices)

	parts := []string{"SEGMENT ANALYSES (use only this information for synthesis):"}
	for _, idx := range indices {
		if f, failed := failedByIndex[idx]; failed {
			parts = append(parts, fmt.Sprintf(
				"\n[Segment %d: Chapters %d-%d — ANALYSIS FAILED, content unavailable. "+
					"Do not speculate about or fill in this segment.]",
				idx, f.ChapterStart, f.ChapterEnd,
			))
			continue
		}
		seg := byIndex[idx]
		parts = append(parts, formatSegment(idx, seg))
	}
	return strings.Join(parts, "\n")
}

func formatSegment(idx int, seg types.SegmentAnalysis) string {
	themes := "(none)"
	if len(seg.KeyThemes) > 0 {
		themes = strings.Join(seg.KeyThemes, ", ")
	}
	citations := "(none)"
	if len(seg.Citations) > 0 {
		var refs []string
		for _, c := range seg.Citations {
			refs = append(refs, c.VerseReference)
		}
		citations = strings.Join(refs, ", ")
	}
	var summary []string
	for _, s := range seg.Summary {
		summary = append(summary, "- "+s)
	}
	return fmt.Sprintf(
		"\n[Segment %d: %s]\nSummary:\n  %s\nThemes: %s\nCitations: %s",
		idx, seg.OutlineLabel, strings.Join(summary, "\n  "), themes, citations,
	)
}

// StudyGuideSystem is the system prompt for the legacy study-guide
// pipeline: passage rules plus entity and question output requirements.
func StudyGuideSystem() string {
	return joinClauses(
		"You are a Bible study guide engine with strict grounding requirements.",
		groundingClause,
		citationClause,
		refusalClause,
		`OUTPUT RULES:
- Provide exactly 3 summary bullet points — no more, no fewer.
- List named entities (people, places, groups) that appear in the passage text.
- Provide exactly 5 questions: 2 comprehension, 2 reflection, 1 application.
- Anchor questions and entities to verses from the PASSAGE section where possible.`,
		toolClause,
	)
}

// StudyGuideUser builds the legacy study-guide user prompt. Same sectioned
// layout as the passage prompt.
func StudyGuideUser(p types.Passage) string {
	return PassageUser(p)
}

// Candidate is one similarity candidate for the similarity prompt: the
// scorer's reference, labelled text, and matched terms.
type Candidate struct {
	Reference string
	Text      string
	Terms     []string
}

// SimilaritySystem is the system prompt for the parallels explanation
// stage. The model must quote shared text verbatim from both sides.
func SimilaritySystem() string {
	return joinClauses(
		"You are a Bible passage similarity engine. "+
			"You have been given a seed passage and a list of candidate similar passages.",
		`SIMILARITY GROUNDING RULES:
- For each candidate, you must quote the EXACT text from the seed passage that overlaps with the candidate (verbatim_seed_quote).
- You must quote the EXACT text from the candidate passage that overlaps with the seed (verbatim_candidate_quote).
- Both quotes must appear word-for-word in the texts provided to you.
- Do NOT assert theological parallels, interpretive connections, or thematic similarities that are not evidenced by shared vocabulary in the provided texts.
- Do NOT invent passages or references not in the candidate list.`,
		refusalClause,
		toolClause,
	)
}

// SimilarityUser builds the similarity user prompt from the seed passage
// and the scorer's ranked candidates.
func SimilarityUser(seedText, seedRef string, candidates []Candidate) string {
	parts := []string{
		fmt.Sprintf("SEED PASSAGE (%s):", seedRef),
		seedText,
		"",
		"CANDIDATE PASSAGES (ranked by vocabulary overlap):",
	}
	for i, c := range candidates {
		terms := c.Terms
		if len(terms) > 10 {
			terms = terms[:10]
		}
		var quoted []string
		for _, t := range terms {
			quoted = append(quoted, fmt.Sprintf("%q", t))
		}
		parts = append(parts,
			fmt.Sprintf("\n[Candidate %d: %s]", i+1, c.Reference),
			"Matched terms: "+strings.Join(quoted, ", "),
			c.Text,
		)
	}
	parts = append(parts,
		"\nFor each candidate, extract the verbatim overlapping text from both "+
			"the seed and the candidate. Return results using the provided tool.")
	return strings.Join(parts, "\n")
}
