// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package repair implements the bounded structured-output acceptance
// protocol: direct decode, heuristic JSON repair, then exactly one model
// retry. Local repair is exhausted before any network round-trip, and
// at most one retry call is made per item.
//
// The retry warning is always logged, not gated behind the debug flag:
// retry frequency is an operational signal, not a debug detail.
package repair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pdiddy/scripture-engine/internal/llm"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(studyGuideDistribution, types.StudyGuide{})
	return v
}

// studyGuideDistribution enforces the fixed question-type distribution:
// two comprehension, two reflection, one application. Tag rules cannot
// express cross-element counts.
func studyGuideDistribution(sl validator.StructLevel) {
	sg := sl.Current().Interface().(types.StudyGuide)

	counts := make(map[types.QuestionType]int, 3)
	for _, q := range sg.Questions {
		counts[q.Type]++
	}

	expected := map[types.QuestionType]int{
		types.QuestionComprehension: 2,
		types.QuestionReflection:    2,
		types.QuestionApplication:   1,
	}
	for qtype, want := range expected {
		if counts[qtype] != want {
			sl.ReportError(sg.Questions, "questions", "Questions",
				"question_distribution", string(qtype))
		}
	}
}

// Validate checks a decoded result against its count constraints. A result
// violating them is never considered valid anywhere in the pipeline.
func Validate(v any) error {
	return validate.Struct(v)
}

// AndValidate runs the acceptance protocol on a raw response string:
//
//  1. Decode and validate raw directly. Failures are swallowed.
//  2. Decode and validate FixJSON(raw). Failures are swallowed.
//  3. Exactly one retry: append the failure reason to the original user
//     prompt as a targeted correction and call the provider once more with
//     the same system prompt and schema.
//
// If the retry response also fails, the returned AnalysisFailedError
// carries it for diagnostics.
func AndValidate[T types.Result](
	ctx context.Context,
	raw string,
	schema json.RawMessage,
	provider llm.Provider,
	systemPrompt, userPrompt string,
	maxTokens int,
	log *zap.Logger,
) (T, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if result, ok := tryParse[T](raw); ok {
		return result, nil
	}

	if result, ok := tryParse[T](FixJSON(raw)); ok {
		return result, nil
	}

	var zero T
	reason := failureReason[T](raw)
	log.Warn("model retry triggered",
		zap.String("schema", fmt.Sprintf("%T", zero)),
		zap.String("reason", reason),
	)

	retryPrompt := fmt.Sprintf(
		"%s\n\nYour previous response failed validation. Reason: %s\n"+
			"Please call the tool again with a corrected response.",
		userPrompt, reason,
	)
	retryRaw, err := provider.Complete(ctx, llm.Request{
		System:    systemPrompt,
		Prompt:    retryPrompt,
		Schema:    schema,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return zero, &types.AnalysisFailedError{
			Message: fmt.Sprintf("retry call failed for %T: %v", zero, err),
		}
	}

	if result, ok := tryParse[T](retryRaw); ok {
		return result, nil
	}

	return zero, &types.AnalysisFailedError{
		Message:     fmt.Sprintf("analysis failed after all repair attempts for %T", zero),
		RawResponse: retryRaw,
	}
}

// tryParse decodes and validates raw against T. Returns ok=false on any
// failure; never returns an error.
func tryParse[T any](raw string) (T, bool) {
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false
	}
	if err := validate.Struct(out); err != nil {
		return out, false
	}
	return out, true
}

// failureReason describes why raw failed, for the retry correction prompt:
// the decode error message, or the first validation error's field path and
// rule.
func failureReason[T any](raw string) string {
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return fmt.Sprintf("invalid JSON: %v", err)
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Sprintf("decode error: %v", err)
	}

	err := validate.Struct(out)
	if err == nil {
		return "unknown validation error"
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Sprintf("validation error on '%s': failed rule %q (%s)",
			first.Namespace(), first.Tag(), first.Param())
	}
	return fmt.Sprintf("validation failed: %v", err)
}
