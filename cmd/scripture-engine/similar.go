// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scripture-engine/internal/parallels"
)

var similarCmd = &cobra.Command{
	Use:   "similar <reference>",
	Short: "Find passages lexically similar to a seed passage",
	Long: `Similar scores every verse window in a scope book against the seed
passage using TF-IDF cosine similarity and prints the top matches with
their overlapping terms. Scoring is deterministic and runs entirely
offline; --explain adds a generation call that explains each match with
verbatim quotes from both passages.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().String("scope", "", "book to search for matches (default: the seed's book)")
	similarCmd.Flags().Int("top", parallels.DefaultTopN, "number of matches to return")
	similarCmd.Flags().Bool("explain", false, "explain matches with verbatim quotes via the generation service")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	reference := args[0]
	scopeName, _ := cmd.Flags().GetString("scope")
	topN, _ := cmd.Flags().GetInt("top")
	explain, _ := cmd.Flags().GetBool("explain")

	_, retr, provider, log, closer, err := buildEngine()
	if err != nil {
		return err
	}
	defer closer()

	seed, err := retr.RetrievePassage(reference)
	if err != nil {
		return err
	}

	scope := seed.Book
	if scopeName != "" {
		scopeRef, _, err := retr.DetectGranularity(scopeName)
		if err != nil {
			return err
		}
		scope = scopeRef.Book
	}

	candidates := parallels.Score(retr.Oracle(), seed, scope, topN)
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No similar passages found.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Passages similar to %s:\n\n", reference)
	for i, c := range candidates {
		fmt.Fprintf(out, "%2d. %-22s %.4f  %v\n", i+1, c.Reference, c.Score, c.OverlapTerms)
	}

	if !explain {
		return nil
	}

	expl, err := parallels.Explain(cmd.Context(), provider, seed, candidates, log)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, m := range expl.Matches {
		fmt.Fprintf(out, "%s:\n  seed:      %q\n  candidate: %q\n", m.Reference, m.VerbatimSeedQuote, m.VerbatimCandidateQuote)
	}
	printLowConfidence(out, expl.LowConfidenceFields)
	return nil
}
