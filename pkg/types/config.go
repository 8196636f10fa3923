// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds settings for the generation-service boundary.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-haiku-4-5-20251001").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens is the per-call output token limit (default 2048).
	// Synthesis calls override this with a larger budget.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout is the HTTP request timeout for generation calls.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Debug enables per-call estimated token count logging. Retry warnings
	// are logged regardless of this flag.
	Debug bool `json:"debug" yaml:"debug"`
}

// CanonConfig holds settings for the reference-oracle boundary.
type CanonConfig struct {
	// DBPath is the path to the read-only corpus database
	// (default "data/asv.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// EngineConfig groups all stage configurations for one analysis run.
type EngineConfig struct {
	AI    AIConfig    `json:"ai" yaml:"ai"`
	Canon CanonConfig `json:"canon" yaml:"canon"`
}
