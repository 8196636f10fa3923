// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/scripture-engine/internal/llm"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

// stubProvider records generation calls and plays back a canned response.
type stubProvider struct {
	calls    int
	lastReq  llm.Request
	response string
	err      error
}

func (s *stubProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	s.calls++
	s.lastReq = req
	return s.response, s.err
}

const validPassageJSON = `{
	"summary": ["First point.", "Second point.", "Third point."],
	"key_themes": ["belief", "light"],
	"citations": [{"verse_reference": "3:16"}],
	"low_confidence_fields": []
}`

func TestAndValidateDirectParse(t *testing.T) {
	stub := &stubProvider{}

	got, err := AndValidate[types.PassageAnalysis](
		context.Background(), validPassageJSON, types.SchemaPassageAnalysis,
		stub, "sys", "user", 1024, nil,
	)
	if err != nil {
		t.Fatalf("AndValidate: %v", err)
	}
	if len(got.Summary) != 3 || got.Citations[0].VerseReference != "3:16" {
		t.Errorf("result = %+v", got)
	}
	if stub.calls != 0 {
		t.Errorf("provider saw %d calls, want 0 for a clean response", stub.calls)
	}
}

func TestAndValidateHeuristicRepairAvoidsRetry(t *testing.T) {
	// Fenced, trailing comma, and truncated: all local repairs at once.
	raw := "```json\n" + `{
	"summary": ["First point.", "Second point.", "Third point.",],
	"key_themes": ["belief"],
	"citations": [{"verse_reference": "3:16"`

	stub := &stubProvider{}
	got, err := AndValidate[types.PassageAnalysis](
		context.Background(), raw, types.SchemaPassageAnalysis,
		stub, "sys", "user", 1024, nil,
	)
	if err != nil {
		t.Fatalf("AndValidate: %v", err)
	}
	if got.Summary[2] != "Third point." {
		t.Errorf("summary = %v", got.Summary)
	}
	if stub.calls != 0 {
		t.Errorf("provider saw %d calls, want 0 when local repair suffices", stub.calls)
	}
}

func TestAndValidateRetrySucceeds(t *testing.T) {
	// Two summary points violate the three-point rule; local repair cannot
	// invent content, so one model retry is allowed.
	raw := `{"summary": ["One.", "Two."], "key_themes": [], "citations": []}`
	stub := &stubProvider{response: validPassageJSON}

	got, err := AndValidate[types.PassageAnalysis](
		context.Background(), raw, types.SchemaPassageAnalysis,
		stub, "system prompt", "user prompt", 1024, nil,
	)
	if err != nil {
		t.Fatalf("AndValidate: %v", err)
	}
	if len(got.Summary) != 3 {
		t.Errorf("summary = %v", got.Summary)
	}
	if stub.calls != 1 {
		t.Fatalf("provider saw %d calls, want exactly 1 retry", stub.calls)
	}
	if stub.lastReq.System != "system prompt" {
		t.Errorf("retry system prompt = %q", stub.lastReq.System)
	}
	if !strings.Contains(stub.lastReq.Prompt, "user prompt") ||
		!strings.Contains(stub.lastReq.Prompt, "failed validation") {
		t.Errorf("retry prompt = %q, want original prompt plus correction", stub.lastReq.Prompt)
	}
	if !strings.Contains(stub.lastReq.Prompt, "len") {
		t.Errorf("retry prompt = %q, want the violated rule named", stub.lastReq.Prompt)
	}
}

func TestAndValidateRetryFailsWithRawResponse(t *testing.T) {
	raw := `{"summary": ["only one"]}`
	stub := &stubProvider{response: `still not valid json {`}

	_, err := AndValidate[types.PassageAnalysis](
		context.Background(), raw, types.SchemaPassageAnalysis,
		stub, "sys", "user", 1024, nil,
	)

	var afe *types.AnalysisFailedError
	if !errors.As(err, &afe) {
		t.Fatalf("error = %v, want AnalysisFailedError", err)
	}
	if afe.RawResponse != `still not valid json {` {
		t.Errorf("RawResponse = %q, want the retry output preserved", afe.RawResponse)
	}
	if stub.calls != 1 {
		t.Errorf("provider saw %d calls, want exactly 1", stub.calls)
	}
}

func TestAndValidateRetryCallError(t *testing.T) {
	stub := &stubProvider{err: errors.New("api unreachable")}

	_, err := AndValidate[types.PassageAnalysis](
		context.Background(), `not json`, types.SchemaPassageAnalysis,
		stub, "sys", "user", 1024, nil,
	)

	var afe *types.AnalysisFailedError
	if !errors.As(err, &afe) {
		t.Fatalf("error = %v, want AnalysisFailedError", err)
	}
	if !strings.Contains(afe.Message, "api unreachable") {
		t.Errorf("message = %q, want underlying call error included", afe.Message)
	}
}

func studyGuideFixture(qtypes ...types.QuestionType) types.StudyGuide {
	sg := types.StudyGuide{
		Summary: []string{"One.", "Two.", "Three."},
	}
	for _, qt := range qtypes {
		sg.Questions = append(sg.Questions, types.Question{Type: qt, Text: "q"})
	}
	return sg
}

func TestValidateStudyGuideDistribution(t *testing.T) {
	valid := studyGuideFixture(
		types.QuestionComprehension, types.QuestionComprehension,
		types.QuestionReflection, types.QuestionReflection,
		types.QuestionApplication,
	)
	if err := Validate(valid); err != nil {
		t.Errorf("valid 2/2/1 distribution rejected: %v", err)
	}

	wrong := studyGuideFixture(
		types.QuestionComprehension, types.QuestionComprehension,
		types.QuestionComprehension, types.QuestionReflection,
		types.QuestionApplication,
	)
	if err := Validate(wrong); err == nil {
		t.Error("3/1/1 distribution accepted, want rejection")
	}

	short := studyGuideFixture(types.QuestionComprehension)
	if err := Validate(short); err == nil {
		t.Error("single question accepted, want five required")
	}
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		result  any
		wantErr bool
	}{
		{
			name: "passage analysis complete",
			result: types.PassageAnalysis{
				Summary: []string{"a", "b", "c"},
			},
		},
		{
			name:    "summary too short",
			result:  types.PassageAnalysis{Summary: []string{"a", "b"}},
			wantErr: true,
		},
		{
			name: "empty summary sentence",
			result: types.PassageAnalysis{
				Summary: []string{"a", "", "c"},
			},
			wantErr: true,
		},
		{
			name: "too many themes",
			result: types.PassageAnalysis{
				Summary:   []string{"a", "b", "c"},
				KeyThemes: []string{"1", "2", "3", "4", "5", "6"},
			},
			wantErr: true,
		},
		{
			name: "citation without reference",
			result: types.PassageAnalysis{
				Summary:   []string{"a", "b", "c"},
				Citations: []types.Citation{{}},
			},
			wantErr: true,
		},
		{
			name: "segment analysis needs outline label",
			result: types.SegmentAnalysis{
				Summary: []string{"a", "b", "c"},
			},
			wantErr: true,
		},
		{
			name: "segment analysis citation cap",
			result: types.SegmentAnalysis{
				OutlineLabel: "Prologue",
				Summary:      []string{"a", "b", "c"},
				Citations: []types.Citation{
					{VerseReference: "1:1"}, {VerseReference: "1:2"},
					{VerseReference: "1:3"}, {VerseReference: "1:4"},
					{VerseReference: "1:5"}, {VerseReference: "1:6"},
				},
			},
			wantErr: true,
		},
		{
			name: "book synthesis needs an outline",
			result: types.BookSynthesis{
				Summary: []string{"a", "b", "c"},
			},
			wantErr: true,
		},
		{
			name: "book synthesis complete",
			result: types.BookSynthesis{
				Outline: []types.OutlineSection{{Title: "Opening"}},
				Summary: []string{"a", "b", "c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.result)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
