// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parallels

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/scripture-engine/internal/llm"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

type cannedProvider struct {
	calls    int
	lastReq  llm.Request
	response string
	err      error
}

func (c *cannedProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	c.calls++
	c.lastReq = req
	return c.response, c.err
}

func explainCandidates() []Candidate {
	return []Candidate{
		{
			Reference:    "Psalm 2:1",
			Text:         "[2:1] A shepherd guardeth the flock through the valley",
			Score:        0.42,
			OverlapTerms: []string{"shepherd", "flock"},
		},
	}
}

func TestExplain(t *testing.T) {
	stub := &cannedProvider{response: `{
		"matches": [{
			"reference": "Psalm 2:1",
			"verbatim_seed_quote": "shepherd leadeth the flock",
			"verbatim_candidate_quote": "shepherd guardeth the flock"
		}],
		"low_confidence_fields": []
	}`}

	expl, err := Explain(context.Background(), stub, seedPassage(), explainCandidates(), nil)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if len(expl.Matches) != 1 || expl.Matches[0].Reference != "Psalm 2:1" {
		t.Errorf("explanation = %+v", expl)
	}
	if stub.calls != 1 {
		t.Errorf("provider saw %d calls, want 1", stub.calls)
	}
	if !strings.Contains(stub.lastReq.Prompt, "Psalm 2:1") ||
		!strings.Contains(stub.lastReq.Prompt, `"shepherd", "flock"`) {
		t.Errorf("prompt missing candidate material:\n%s", stub.lastReq.Prompt)
	}
}

func TestExplainRejectsFabricatedQuote(t *testing.T) {
	stub := &cannedProvider{response: `{
		"matches": [{
			"reference": "Psalm 2:1",
			"verbatim_seed_quote": "shepherd leadeth the flock",
			"verbatim_candidate_quote": "beside still waters"
		}],
		"low_confidence_fields": []
	}`}

	_, err := Explain(context.Background(), stub, seedPassage(), explainCandidates(), nil)
	var oor *types.CitationOutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("error = %v, want CitationOutOfRangeError", err)
	}
}

func TestExplainPropagatesProviderError(t *testing.T) {
	stub := &cannedProvider{err: errors.New("api unreachable")}

	_, err := Explain(context.Background(), stub, seedPassage(), explainCandidates(), nil)
	if err == nil || !strings.Contains(err.Error(), "api unreachable") {
		t.Errorf("error = %v, want provider failure", err)
	}
}
