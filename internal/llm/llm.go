// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the generation-service boundary. Provider abstracts the
// API so tests can supply fixed-response doubles; Claude implements it
// against the Messages API with forced tool use, so the transport enforces
// JSON structure before local validation runs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/scripture-engine/internal/httputil"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

// DefaultMaxTokens is the per-call output token limit when the request
// does not override it.
const DefaultMaxTokens = 2048

// Request is one generation call.
type Request struct {
	System string
	Prompt string

	// Schema, when set, is forwarded as the forced tool's input_schema and
	// the response is the tool call's input serialized to JSON. When nil
	// the response is the concatenated text blocks.
	Schema json.RawMessage

	// MaxTokens overrides DefaultMaxTokens when positive.
	MaxTokens int
}

// Provider sends prompts to the generation service and returns the raw
// response string.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// Claude calls the Claude Messages API.
type Claude struct {
	APIKey string
	Model  string
	Client *http.Client
	Log    *zap.Logger

	// MaxTokens is the per-call output limit used when a request does not
	// set its own. Zero falls back to DefaultMaxTokens.
	MaxTokens int

	// Debug enables estimated token count logging per call. Operational
	// warnings elsewhere in the pipeline do not depend on this.
	Debug bool
}

// NewClaude builds a Claude backend from configuration.
func NewClaude(cfg types.AIConfig, log *zap.Logger) *Claude {
	c := &Claude{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Log:       log,
		Debug:     cfg.Debug,
	}
	if cfg.Timeout > 0 {
		c.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return c
}

type claudeRequest struct {
	Model      string          `json:"model"`
	MaxTokens  int             `json:"max_tokens"`
	System     string          `json:"system,omitempty"`
	Messages   []claudeMessage `json:"messages"`
	Tools      []claudeTool    `json:"tools,omitempty"`
	ToolChoice *toolChoice     `json:"tool_choice,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type  string          `json:"type"`
	Text  string          `json:"text"`
	Input json.RawMessage `json:"input"`
}

// Complete sends one request to the Messages API. With a schema it forces
// a submit_analysis tool call and returns the tool input as a JSON string;
// a response with no usable payload is an AnalysisFailed condition.
func (c *Claude) Complete(ctx context.Context, req Request) (string, error) {
	if c.Debug && c.Log != nil {
		totalChars := len(req.System) + len(req.Prompt)
		c.Log.Debug("generation call",
			zap.Int("prompt_chars", totalChars),
			zap.Int("estimated_tokens", totalChars/4),
		)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	body := claudeRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []claudeMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.Schema != nil {
		body.Tools = []claudeTool{{
			Name:        "submit_analysis",
			Description: "Submit the structured analysis result.",
			InputSchema: req.Schema,
		}}
		body.ToolChoice = &toolChoice{Type: "any"}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, 0)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	if req.Schema == nil {
		var text string
		for _, block := range cResp.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		return text, nil
	}

	for _, block := range cResp.Content {
		if block.Type == "tool_use" {
			return string(block.Input), nil
		}
	}

	// tool_choice "any" should guarantee a tool call.
	raw, _ := json.Marshal(cResp.Content)
	return "", &types.AnalysisFailedError{
		Message:     "generation response contained no tool call",
		RawResponse: string(raw),
	}
}

// Counter wraps a Provider and counts completed call attempts. The book
// pipeline routes every stage-1, retry, and synthesis call through one
// Counter so the per-book call ceiling has a single accounting rule.
type Counter struct {
	inner Provider

	mu    sync.Mutex
	calls int
}

// NewCounter wraps a Provider in a Counter.
func NewCounter(inner Provider) *Counter {
	return &Counter{inner: inner}
}

// Complete forwards to the inner provider, counting the call whether or
// not it succeeds.
func (c *Counter) Complete(ctx context.Context, req Request) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Complete(ctx, req)
}

// Calls returns the number of calls made so far.
func (c *Counter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
