package remote

import (
	"context"
	"net/http"

	"github.com/promptab/promptvar/internal/errors"
)

// Optimization techniques the backend understands.
const (
	TechniqueChainOfThought   = "chain_of_thought"
	TechniqueRolePlaying      = "role_playing"
	TechniqueFewShot          = "few_shot"
	TechniquePromptChaining   = "prompt_chaining"
	TechniqueStructuredOutput = "structured_output"
)

// OptimizeRequest is the optimization API request.
type OptimizeRequest struct {
	Prompt      string   `json:"prompt"`
	Techniques  []string `json:"techniques,omitempty"`
	UseRAG      bool     `json:"use_rag"`
	LLMProvider string   `json:"llm_provider,omitempty"`
	Language    string   `json:"language,omitempty"` // "auto", "ru", or "en"
}

// SuggestedVariable is a placeholder the optimizer detected in the prompt.
type SuggestedVariable struct {
	Text          string `json:"text"`
	SuggestedName string `json:"suggested_name"`
	Type          string `json:"type"` // "quoted", "entity", "number"
}

// RAGSource is a retrieval hit the optimizer consulted. Carried through for
// display; the engine never interprets it.
type RAGSource struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Category   string  `json:"category,omitempty"`
	Similarity float64 `json:"similarity"`
}

// OptimizeResponse is the optimization API response. Only Original,
// Optimized, and Variables are consumed downstream; the rest is opaque
// backend detail.
type OptimizeResponse struct {
	Original       string              `json:"original"`
	Optimized      string              `json:"optimized"`
	TechniquesUsed []string            `json:"techniques_used"`
	RAGSources     []RAGSource         `json:"rag_sources"`
	Structure      map[string]any      `json:"structure"`
	Variables      []SuggestedVariable `json:"variables"`
	Metadata       map[string]any      `json:"metadata"`
}

// Optimize sends a prompt to the backend optimizer. No retries: a failure
// surfaces to the caller as a REMOTE error.
func (c *Client) Optimize(ctx context.Context, req OptimizeRequest) (*OptimizeResponse, error) {
	if req.Prompt == "" {
		return nil, errors.NewInvalidRequest("prompt is required")
	}
	if req.Language == "" {
		req.Language = "auto"
	}

	var out OptimizeResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/prompts/optimize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
