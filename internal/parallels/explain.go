// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parallels

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/scripture-engine/internal/llm"
	"github.com/pdiddy/scripture-engine/internal/prompt"
	"github.com/pdiddy/scripture-engine/internal/repair"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

// Explain asks the generation service for verbatim-quote explanations of
// the scored candidates, runs the repair protocol on its output, and
// verifies every quote against the supplied texts.
func Explain(
	ctx context.Context,
	provider llm.Provider,
	seed types.Passage,
	candidates []Candidate,
	log *zap.Logger,
) (types.SimilarityExplanation, error) {
	promptCands := make([]prompt.Candidate, 0, len(candidates))
	for _, c := range candidates {
		promptCands = append(promptCands, prompt.Candidate{
			Reference: c.Reference,
			Text:      c.Text,
			Terms:     c.OverlapTerms,
		})
	}

	system := prompt.SimilaritySystem()
	user := prompt.SimilarityUser(seed.Text, seed.Reference, promptCands)

	raw, err := provider.Complete(ctx, llm.Request{
		System: system,
		Prompt: user,
		Schema: types.SchemaSimilarityExplanation,
	})
	if err != nil {
		return types.SimilarityExplanation{}, err
	}

	expl, err := repair.AndValidate[types.SimilarityExplanation](
		ctx, raw, types.SchemaSimilarityExplanation, provider, system, user, 0, log,
	)
	if err != nil {
		return types.SimilarityExplanation{}, err
	}

	if err := VerifyQuotes(expl, seed.Text, candidates); err != nil {
		return types.SimilarityExplanation{}, err
	}
	return expl, nil
}
