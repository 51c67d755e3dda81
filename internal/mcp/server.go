package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/promptab/promptvar/internal/config"
	"github.com/promptab/promptvar/internal/history"
	"github.com/promptab/promptvar/internal/remote"
	"github.com/promptab/promptvar/internal/variable"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"prompt_scan": {
		def:     scanToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScan },
	},
	"prompt_preview": {
		def:     previewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePreview },
	},
	"prompt_replace": {
		def:     replaceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReplace },
	},
	"prompt_insert": {
		def:     insertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInsert },
	},
	"prompt_optimize": {
		def:     optimizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleOptimize },
	},
	"variable_list": {
		def:     variableListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVariableList },
	},
	"variable_upsert": {
		def:     variableUpsertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVariableUpsert },
	},
	"variable_update": {
		def:     variableUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVariableUpdate },
	},
	"variable_delete": {
		def:     variableDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVariableDelete },
	},
	"variable_pull": {
		def:     variablePullToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePull },
	},
	"variable_push": {
		def:     variablePushToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePush },
	},
	"history_list": {
		def:     historyListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryList },
	},
	"history_add": {
		def:     historyAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryAdd },
	},
	"history_clear": {
		def:     historyClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryClear },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with promptvar tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(store *variable.Store, buffer *history.Buffer, cfg *config.Config, client *remote.Client, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"promptvar",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(store, buffer, cfg, client)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(store *variable.Store, buffer *history.Buffer, cfg *config.Config, client *remote.Client, version string) error {
	s := NewServer(store, buffer, cfg, client, version)
	return server.ServeStdio(s)
}
