// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis drives the grounded-generation pipelines and verifies
// that every citation the generator produces falls within the source text
// it was given. Routing is by reference granularity: passages and chapters
// run a single-shot pipeline; books run the two-stage segment/synthesis
// pipeline.
package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/scripture-engine/internal/canon"
	"github.com/pdiddy/scripture-engine/internal/llm"
	"github.com/pdiddy/scripture-engine/internal/prompt"
	"github.com/pdiddy/scripture-engine/internal/repair"
	"github.com/pdiddy/scripture-engine/internal/retrieve"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

const (
	// MinPassageChars is the floor on retrieved text length. Checked
	// before any generation call so empty retrievals cost nothing.
	MinPassageChars = 20

	// SegmentFailureThreshold aborts the book pipeline when exceeded.
	SegmentFailureThreshold = 0.3

	// MaxBookCalls is the hard ceiling on generation calls for one book,
	// covering both stages. Stage 1 calls, repair retries, and synthesis
	// all count against it.
	MaxBookCalls = 130

	// SynthesisMaxTokens is the output budget for the synthesis call,
	// larger than the per-segment default.
	SynthesisMaxTokens = 4096
)

// Engine is the analysis orchestrator: one request at a time, synchronous.
type Engine struct {
	retr     *retrieve.Retriever
	provider llm.Provider
	log      *zap.Logger
}

// New returns an Engine. A nil logger disables logging.
func New(retr *retrieve.Retriever, provider llm.Provider, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{retr: retr, provider: provider, log: log}
}

// Analyze routes a reference by detected granularity:
//
//	passage ("John 3:16-21")  → PassageAnalysis
//	chapter ("John 3")        → PassageAnalysis
//	book    ("1 Corinthians") → BookSynthesis
func (e *Engine) Analyze(ctx context.Context, reference string) (types.Result, error) {
	ref, granularity, err := e.retr.DetectGranularity(reference)
	if err != nil {
		return nil, err
	}

	switch granularity {
	case types.GranularityBook:
		return e.AnalyzeBook(ctx, reference)
	case types.GranularityChapter:
		passage, err := e.retr.RetrieveChapter(ref.Book, ref.StartChapter)
		if err != nil {
			return nil, err
		}
		return e.AnalyzePassage(ctx, passage)
	default:
		passage, err := e.retr.RetrievePassage(reference)
		if err != nil {
			return nil, err
		}
		return e.AnalyzePassage(ctx, passage)
	}
}

// AnalyzePassage runs the single-shot pipeline on a retrieved passage:
// length floor, prompt, generation, repair, citation verification.
func (e *Engine) AnalyzePassage(ctx context.Context, passage types.Passage) (types.PassageAnalysis, error) {
	if err := checkPassageLength(passage); err != nil {
		return types.PassageAnalysis{}, err
	}

	system := prompt.PassageSystem()
	user := prompt.PassageUser(passage)

	raw, err := e.provider.Complete(ctx, llm.Request{
		System: system,
		Prompt: user,
		Schema: types.SchemaPassageAnalysis,
	})
	if err != nil {
		return types.PassageAnalysis{}, err
	}

	result, err := repair.AndValidate[types.PassageAnalysis](
		ctx, raw, types.SchemaPassageAnalysis, e.provider, system, user, 0, e.log,
	)
	if err != nil {
		return types.PassageAnalysis{}, err
	}

	if err := VerifyCitations(e.retr.Oracle(), result, passage, SingleVerse, nil); err != nil {
		return types.PassageAnalysis{}, err
	}
	return result, nil
}

// AnalyzeStudyGuide runs the legacy study-guide pipeline on a passage
// reference: summary, themes, named entities, and five typed questions.
func (e *Engine) AnalyzeStudyGuide(ctx context.Context, reference string) (types.StudyGuide, error) {
	passage, err := e.retr.RetrievePassage(reference)
	if err != nil {
		return types.StudyGuide{}, err
	}
	if err := checkPassageLength(passage); err != nil {
		return types.StudyGuide{}, err
	}

	system := prompt.StudyGuideSystem()
	user := prompt.StudyGuideUser(passage)

	raw, err := e.provider.Complete(ctx, llm.Request{
		System: system,
		Prompt: user,
		Schema: types.SchemaStudyGuide,
	})
	if err != nil {
		return types.StudyGuide{}, err
	}

	result, err := repair.AndValidate[types.StudyGuide](
		ctx, raw, types.SchemaStudyGuide, e.provider, system, user, 0, e.log,
	)
	if err != nil {
		return types.StudyGuide{}, err
	}

	if err := VerifyCitations(e.retr.Oracle(), result, passage, SingleVerse, nil); err != nil {
		return types.StudyGuide{}, err
	}
	return result, nil
}

// AnalyzeBook runs the two-stage book pipeline.
//
// Stage 1 segments the book deterministically and produces one
// SegmentAnalysis or SegmentFailure per segment. A failed segment never
// aborts the loop; failures are recorded and synthesis sees them as gap
// markers. Stage 2 synthesizes the validated segment outputs into a
// BookSynthesis, then verifies its grounding.
func (e *Engine) AnalyzeBook(ctx context.Context, bookName string) (types.BookSynthesis, error) {
	oracle := e.retr.Oracle()
	refs := canon.ParseReferences(oracle, bookName)
	if len(refs) == 0 {
		return types.BookSynthesis{}, types.InvalidReferencef("could not find book: %q", bookName)
	}
	book := refs[0].Book

	segments, err := e.retr.SegmentBook(book)
	if err != nil {
		return types.BookSynthesis{}, err
	}
	total := len(segments)
	if total == 0 {
		return types.BookSynthesis{}, types.InvalidReferencef(
			"%s has no verses in the corpus", canon.BookName(oracle, book),
		)
	}

	e.log.Info("analyzing book",
		zap.String("book", canon.BookName(oracle, book)),
		zap.Int("segments", total),
		zap.Int("call_ceiling", MaxBookCalls),
	)

	// One counter for both stages: the ceiling has a single accounting
	// rule, and repair retries count because they go through it too.
	counter := llm.NewCounter(e.provider)
	segSystem := prompt.SegmentSystem()

	var (
		results  []types.SegmentAnalysis
		failures []types.SegmentFailure
	)

	for i, seg := range segments {
		if counter.Calls() >= MaxBookCalls {
			e.log.Warn("generation call ceiling reached, stopping segment processing",
				zap.Int("ceiling", MaxBookCalls),
				zap.Int("remaining_segments", total-i),
			)
			for _, rem := range segments[i:] {
				failures = append(failures, types.SegmentFailure{
					Index:        rem.Index,
					ChapterStart: rem.Start.Chapter,
					ChapterEnd:   rem.End.Chapter,
					Err:          "generation call ceiling reached",
				})
			}
			break
		}

		if len(strings.TrimSpace(seg.Text)) < MinPassageChars {
			failures = append(failures, types.SegmentFailure{
				Index:        seg.Index,
				ChapterStart: seg.Start.Chapter,
				ChapterEnd:   seg.End.Chapter,
				Err:          "segment text too short",
			})
			continue
		}

		result, err := e.analyzeSegment(ctx, counter, segSystem, seg)
		if err != nil {
			failures = append(failures, types.SegmentFailure{
				Index:        seg.Index,
				ChapterStart: seg.Start.Chapter,
				ChapterEnd:   seg.End.Chapter,
				Err:          err.Error(),
			})
			continue
		}
		results = append(results, result)
	}

	failureRate := float64(len(failures)) / float64(total)
	if failureRate > SegmentFailureThreshold {
		return types.BookSynthesis{}, types.AnalysisFailedf(
			"too many segment failures: %d/%d (%.0f%% > %.0f%% threshold); "+
				"check the book reference or reduce scope",
			len(failures), total, failureRate*100, SegmentFailureThreshold*100,
		)
	}

	if len(failures) > 0 {
		e.log.Warn("segments failed, synthesis will include gap markers",
			zap.Int("failed", len(failures)),
			zap.Ints("indices", failureIndices(failures)),
		)
	}

	synSystem := prompt.SynthesisSystem()
	synUser := prompt.SynthesisUser(results, failures)

	rawSynthesis, err := counter.Complete(ctx, llm.Request{
		System:    synSystem,
		Prompt:    synUser,
		Schema:    types.SchemaBookSynthesis,
		MaxTokens: SynthesisMaxTokens,
	})
	if err != nil {
		return types.BookSynthesis{}, err
	}

	bookResult, err := repair.AndValidate[types.BookSynthesis](
		ctx, rawSynthesis, types.SchemaBookSynthesis, counter,
		synSystem, synUser, SynthesisMaxTokens, e.log,
	)
	if err != nil {
		return types.BookSynthesis{}, err
	}

	if len(failures) > 0 {
		bookResult = bookResult.WithFailedSegments(failureIndices(failures))
	}

	if err := VerifySynthesisGrounding(bookResult, results); err != nil {
		return types.BookSynthesis{}, err
	}
	return bookResult, nil
}

// analyzeSegment runs generation and repair for one segment and stamps its
// index onto the result, overriding whatever the model returned.
func (e *Engine) analyzeSegment(
	ctx context.Context,
	counter *llm.Counter,
	system string,
	seg types.Segment,
) (types.SegmentAnalysis, error) {
	user := prompt.SegmentUser(seg.Text, seg.Reference, seg.Index)

	raw, err := counter.Complete(ctx, llm.Request{
		System: system,
		Prompt: user,
		Schema: types.SchemaSegmentAnalysis,
	})
	if err != nil {
		return types.SegmentAnalysis{}, err
	}

	result, err := repair.AndValidate[types.SegmentAnalysis](
		ctx, raw, types.SchemaSegmentAnalysis, counter, system, user, 0, e.log,
	)
	if err != nil {
		return types.SegmentAnalysis{}, err
	}
	return result.WithSegmentIndex(seg.Index), nil
}

func checkPassageLength(passage types.Passage) error {
	if len(strings.TrimSpace(passage.Text)) < MinPassageChars {
		return types.EmptyPassagef(
			"retrieved text for %q is too short (%d chars); check the reference",
			passage.Reference, len(passage.Text),
		)
	}
	return nil
}

func failureIndices(failures []types.SegmentFailure) []int {
	out := make([]int, 0, len(failures))
	for _, f := range failures {
		out = append(out, f.Index)
	}
	return out
}
