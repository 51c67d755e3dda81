package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/promptab/promptvar/internal/config"
	"github.com/promptab/promptvar/internal/engine"
	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/history"
	"github.com/promptab/promptvar/internal/placeholder"
	"github.com/promptab/promptvar/internal/remote"
	"github.com/promptab/promptvar/internal/variable"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store  *variable.Store
	buffer *history.Buffer
	cfg    *config.Config
	client *remote.Client // nil when api_base_url is not configured
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *variable.Store, buffer *history.Buffer, cfg *config.Config, client *remote.Client) *Handlers {
	return &Handlers{store: store, buffer: buffer, cfg: cfg, client: client}
}

// Request types for each tool

// ScanRequest represents the arguments for prompt_scan.
type ScanRequest struct {
	Text   string `json:"text"`
	Syntax string `json:"syntax,omitempty"`
}

// PreviewRequest represents the arguments for prompt_preview.
type PreviewRequest struct {
	Text string `json:"text"`
}

// ReplaceRequest represents the arguments for prompt_replace.
type ReplaceRequest struct {
	Text  string  `json:"text"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Value *string `json:"value,omitempty"`
}

// InsertRequest represents the arguments for prompt_insert.
type InsertRequest struct {
	Text string `json:"text"`
	Name string `json:"name"`
}

// VariableUpsertRequest represents the arguments for variable_upsert.
type VariableUpsertRequest struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// VariableUpdateRequest represents the arguments for variable_update.
type VariableUpdateRequest struct {
	ID          string  `json:"id"`
	Value       *string `json:"value,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// VariableDeleteRequest represents the arguments for variable_delete.
type VariableDeleteRequest struct {
	ID string `json:"id"`
}

// HistoryAddRequest represents the arguments for history_add.
type HistoryAddRequest struct {
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
}

// OptimizeRequest represents the arguments for prompt_optimize.
type OptimizeRequest struct {
	Prompt     string `json:"prompt"`
	Techniques string `json:"techniques,omitempty"`
	CreateVars bool   `json:"create_vars,omitempty"`
}

// Handler implementations

// HandleScan handles the prompt_scan tool call.
func (h *Handlers) HandleScan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ScanRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var occs []placeholder.Occurrence
	switch input.Syntax {
	case "":
		occs = placeholder.ScanBoth(input.Text)
	case string(placeholder.SyntaxBracket), string(placeholder.SyntaxMustache):
		occs = placeholder.Scan(input.Text, placeholder.Syntax(input.Syntax))
	default:
		return errorResult(errors.NewInvalidRequest("syntax must be one of: bracket, mustache")), nil
	}

	return successResult(map[string]any{
		"occurrences": occs,
		"names":       placeholder.Names(occs),
	})
}

// HandlePreview handles the prompt_preview tool call.
func (h *Handlers) HandlePreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PreviewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	session := engine.NewSession(input.Text, h.store)
	view, err := session.View(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(view)
}

// HandleReplace handles the prompt_replace tool call. Each call is one full
// select-confirm interaction over a stateless transport: the occurrence is
// re-validated against the supplied text before anything is replaced.
func (h *Handlers) HandleReplace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReplaceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	session := engine.NewSession(input.Text, h.store)

	selected, ok := findOccurrence(input.Text, input.Start, input.End)
	if !ok {
		return errorResult(errors.NewInvalidState("no occurrence at the given offsets; re-scan the text")), nil
	}
	if err := session.Select(ctx, selected); err != nil {
		return errorResult(err), nil
	}

	if input.Value != nil {
		err = session.ConfirmValue(ctx, *input.Value)
	} else {
		err = session.ConfirmExisting(ctx)
	}
	if err != nil {
		return errorResult(err), nil
	}

	view, err := session.View(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(view)
}

// HandleInsert handles the prompt_insert tool call.
func (h *Handlers) HandleInsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InsertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	session := engine.NewSession(input.Text, h.store)
	if err := session.Insert(input.Name); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"text": session.Text()})
}

// HandleVariableList handles the variable_list tool call.
func (h *Handlers) HandleVariableList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vars, err := h.store.List(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	if vars == nil {
		vars = []variable.Variable{}
	}
	return successResult(map[string]any{"variables": vars})
}

// HandleVariableUpsert handles the variable_upsert tool call.
func (h *Handlers) HandleVariableUpsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VariableUpsertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	v, err := h.store.UpsertByName(ctx, input.Name, input.Value, input.Description, input.Category)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(v)
}

// HandleVariableUpdate handles the variable_update tool call.
func (h *Handlers) HandleVariableUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VariableUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	v, err := h.store.UpdateByID(ctx, input.ID, variable.Fields{
		Value:       input.Value,
		Description: input.Description,
		Category:    input.Category,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(v)
}

// HandleVariableDelete handles the variable_delete tool call.
func (h *Handlers) HandleVariableDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VariableDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.store.RemoveByID(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deleted": input.ID})
}

// HandleHistoryList handles the history_list tool call.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.buffer.List(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return successResult(map[string]any{"entries": entries})
}

// HandleHistoryAdd handles the history_add tool call.
func (h *Handlers) HandleHistoryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Original == "" || input.Optimized == "" {
		return errorResult(errors.NewInvalidRequest("original and optimized are required")), nil
	}

	entry, err := h.buffer.Add(ctx, input.Original, input.Optimized)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(entry)
}

// HandleHistoryClear handles the history_clear tool call.
func (h *Handlers) HandleHistoryClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.buffer.Clear(ctx); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"cleared": true})
}

// HandleOptimize handles the prompt_optimize tool call.
func (h *Handlers) HandleOptimize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[OptimizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if h.client == nil {
		return errorResult(errors.NewInvalidRequest("api_base_url is not configured")), nil
	}

	resp, err := h.client.Optimize(ctx, remote.OptimizeRequest{
		Prompt:      input.Prompt,
		Techniques:  splitTechniques(input.Techniques),
		UseRAG:      h.cfg.UseRAG,
		LLMProvider: h.cfg.LLMProvider,
		Language:    h.cfg.Language,
	})
	if err != nil {
		return errorResult(err), nil
	}

	if _, err := h.buffer.Add(ctx, resp.Original, resp.Optimized); err != nil {
		return errorResult(err), nil
	}

	created := []string{}
	if input.CreateVars {
		for _, sv := range resp.Variables {
			if sv.SuggestedName == "" {
				continue
			}
			if _, err := h.store.UpsertByName(ctx, sv.SuggestedName, sv.Text, "", ""); err != nil {
				return errorResult(err), nil
			}
			created = append(created, sv.SuggestedName)
		}
	}

	return successResult(map[string]any{
		"original":        resp.Original,
		"optimized":       resp.Optimized,
		"techniques_used": resp.TechniquesUsed,
		"variables":       resp.Variables,
		"created":         created,
	})
}

// HandlePull handles the variable_pull tool call.
func (h *Handlers) HandlePull(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.client == nil {
		return errorResult(errors.NewInvalidRequest("api_base_url is not configured")), nil
	}

	result, err := variable.Pull(ctx, h.store, h.client)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePush handles the variable_push tool call.
func (h *Handlers) HandlePush(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.client == nil {
		return errorResult(errors.NewInvalidRequest("api_base_url is not configured")), nil
	}

	result, err := variable.Push(ctx, h.store, h.client)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Helpers

// findOccurrence locates the occurrence of text spanning exactly [start,end).
func findOccurrence(text string, start, end int) (placeholder.Occurrence, bool) {
	for _, occ := range placeholder.ScanBoth(text) {
		if occ.Start == start && occ.End == end {
			return occ, true
		}
	}
	return placeholder.Occurrence{}, false
}

// splitTechniques parses a comma-separated technique list.
func splitTechniques(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// errorResult formats an error as a tool result payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var pErr *errors.Error
	if stderrors.As(err, &pErr) {
		// A wrapper adds context (e.g. "variables[2]: ..."); keep it.
		message := pErr.Message
		if err != error(pErr) {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": message,
			"status":  pErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult formats a successful tool result as JSON.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
