// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Tool input schemas for each result variant. The generation backend
// forwards these to the API as the forced tool's input_schema, so the
// transport enforces JSON structure before the repair protocol ever runs.
// Count constraints (exact summary length, question distribution) are still
// enforced locally: the API only guarantees shape, not cardinality.

var citationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"verse_reference": map[string]any{"type": "string"},
	},
	"required": []string{"verse_reference"},
}

// SchemaPassageAnalysis is the tool schema for PassageAnalysis.
var SchemaPassageAnalysis = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary":               map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"key_themes":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"citations":             map[string]any{"type": "array", "items": citationSchema},
		"low_confidence_fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"summary", "key_themes", "citations"},
})

// SchemaSegmentAnalysis is the tool schema for SegmentAnalysis.
var SchemaSegmentAnalysis = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"segment_index":         map[string]any{"type": "integer"},
		"outline_label":         map[string]any{"type": "string"},
		"summary":               map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"key_themes":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"citations":             map[string]any{"type": "array", "items": citationSchema},
		"low_confidence_fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"segment_index", "outline_label", "summary"},
})

// SchemaBookSynthesis is the tool schema for BookSynthesis.
var SchemaBookSynthesis = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"outline": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":           map[string]any{"type": "string"},
					"start_verse":     map[string]any{"type": "string"},
					"end_verse":       map[string]any{"type": "string"},
					"source_segments": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
				},
				"required": []string{"title", "source_segments"},
			},
		},
		"summary":               map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"key_themes":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"failed_segments":       map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		"low_confidence_fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"outline", "summary"},
})

// SchemaStudyGuide is the tool schema for the legacy StudyGuide result.
var SchemaStudyGuide = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"key_themes": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"named_entities": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":            map[string]any{"type": "string"},
					"type":            map[string]any{"type": "string"},
					"verse_reference": map[string]any{"type": "string"},
					"description":     map[string]any{"type": "string"},
				},
				"required": []string{"name", "type"},
			},
		},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":            map[string]any{"type": "string", "enum": []string{"comprehension", "reflection", "application"}},
					"text":            map[string]any{"type": "string"},
					"verse_reference": map[string]any{"type": "string"},
				},
				"required": []string{"type", "text"},
			},
		},
		"low_confidence_fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"summary", "questions"},
})

// SchemaSimilarityExplanation is the tool schema for SimilarityExplanation.
var SchemaSimilarityExplanation = mustSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"matches": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reference":                map[string]any{"type": "string"},
					"verbatim_seed_quote":      map[string]any{"type": "string"},
					"verbatim_candidate_quote": map[string]any{"type": "string"},
				},
				"required": []string{"reference", "verbatim_seed_quote", "verbatim_candidate_quote"},
			},
		},
		"low_confidence_fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"matches"},
})

func mustSchema(v map[string]any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
