// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scripture-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <reference>",
	Short: "Analyze a passage, chapter, or book",
	Long: `Analyze retrieves the text for a Bible reference and produces a grounded
structured analysis. The pipeline is chosen by the reference's granularity:

  scripture-engine analyze "John 3:16-21"   verse-range passage
  scripture-engine analyze "John 3"         whole chapter
  scripture-engine analyze "John"           whole book (segmented)

With --study-guide the passage pipeline additionally produces named
entities and study questions (requires a verse range).`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("study-guide", false, "produce a study guide instead of a plain analysis")
	analyzeCmd.Flags().String("out", "", "write the result as YAML to this file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	reference := args[0]
	studyGuide, _ := cmd.Flags().GetBool("study-guide")
	outPath, _ := cmd.Flags().GetString("out")

	engine, _, _, _, closer, err := buildEngine()
	if err != nil {
		return err
	}
	defer closer()

	ctx := cmd.Context()

	var result types.Result
	if studyGuide {
		result, err = engine.AnalyzeStudyGuide(ctx, reference)
	} else {
		result, err = engine.Analyze(ctx, reference)
	}
	if err != nil {
		return err
	}

	printResult(cmd.OutOrStdout(), reference, result)

	if outPath != "" {
		if err := writeYAML(outPath, result); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", outPath)
	}
	return nil
}

// writeYAML marshals a result to a YAML file, creating or truncating it.
func writeYAML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printResult renders a human-readable view of any analysis variant.
func printResult(w io.Writer, reference string, result types.Result) {
	fmt.Fprintf(w, "== %s ==\n\n", reference)

	switch r := result.(type) {
	case types.PassageAnalysis:
		printSection(w, "Summary", r.Summary)
		printSection(w, "Key themes", r.KeyThemes)
		if len(r.Citations) > 0 {
			fmt.Fprintln(w, "Citations:")
			for _, c := range r.Citations {
				fmt.Fprintln(w, "  -", c.VerseReference)
			}
			fmt.Fprintln(w)
		}
		printLowConfidence(w, r.LowConfidenceFields)

	case types.BookSynthesis:
		fmt.Fprintln(w, "Outline:")
		for _, s := range r.Outline {
			fmt.Fprintf(w, "  %s (%s - %s)\n", s.Title, s.StartVerse, s.EndVerse)
		}
		fmt.Fprintln(w)
		printSection(w, "Summary", r.Summary)
		printSection(w, "Key themes", r.KeyThemes)
		if len(r.FailedSegments) > 0 {
			fmt.Fprintf(w, "Failed segments: %v\n\n", r.FailedSegments)
		}
		printLowConfidence(w, r.LowConfidenceFields)

	case types.StudyGuide:
		printSection(w, "Summary", r.Summary)
		printSection(w, "Key themes", r.KeyThemes)
		if len(r.NamedEntities) > 0 {
			fmt.Fprintln(w, "Named entities:")
			for _, e := range r.NamedEntities {
				line := fmt.Sprintf("  - %s (%s)", e.Name, e.Type)
				if e.VerseReference != "" {
					line += " [" + e.VerseReference + "]"
				}
				fmt.Fprintln(w, line)
			}
			fmt.Fprintln(w)
		}
		if len(r.Questions) > 0 {
			fmt.Fprintln(w, "Questions:")
			for _, q := range r.Questions {
				fmt.Fprintf(w, "  [%s] %s\n", q.Type, q.Text)
			}
			fmt.Fprintln(w)
		}
		printLowConfidence(w, r.LowConfidenceFields)

	default:
		// Fallback for new variants: dump YAML.
		data, err := yaml.Marshal(result)
		if err == nil {
			fmt.Fprintln(w, string(data))
		}
	}
}


func printSection(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintln(w, "  -", it)
	}
	fmt.Fprintln(w)
}

func printLowConfidence(w io.Writer, fields []string) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(w, "Low-confidence fields: %s\n", strings.Join(fields, ", "))
}

