package mcp

import "github.com/mark3labs/mcp-go/mcp"

var scanToolDef = mcp.NewTool("prompt_scan",
	mcp.WithDescription("Scan prompt text for [NAME] and {{name}} placeholders and return every occurrence with its offsets."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Prompt text to scan")),
	mcp.WithString("syntax", mcp.Description("Restrict scanning to one convention: bracket or mustache (default: both)")),
)

var previewToolDef = mcp.NewTool("prompt_preview",
	mcp.WithDescription("Classify placeholders against the variable library and return resolved/unresolved occurrences plus a substituted preview."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Prompt text to resolve")),
)

var replaceToolDef = mcp.NewTool("prompt_replace",
	mcp.WithDescription("Replace one placeholder occurrence, identified by its offsets in the given text, with a value. Other occurrences of the same name are untouched; re-scan the returned text before selecting again."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Prompt text the offsets were scanned from")),
	mcp.WithNumber("start", mcp.Required(), mcp.Description("Occurrence start offset (half-open)")),
	mcp.WithNumber("end", mcp.Required(), mcp.Description("Occurrence end offset (half-open)")),
	mcp.WithString("value", mcp.Description("Replacement value, saved as a variable under the occurrence name; omit to reuse the existing variable's value")),
)

var insertToolDef = mcp.NewTool("prompt_insert",
	mcp.WithDescription("Append a placeholder for a variable name to the end of the text, matching the document's delimiter convention."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Current prompt text")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Variable name to insert")),
)

var variableListToolDef = mcp.NewTool("variable_list",
	mcp.WithDescription("List all variables in the local library."),
)

var variableUpsertToolDef = mcp.NewTool("variable_upsert",
	mcp.WithDescription("Create or overwrite a variable by name. An existing variable keeps its id."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Variable name (natural key)")),
	mcp.WithString("value", mcp.Required(), mcp.Description("Value substituted into placeholders")),
	mcp.WithString("description", mcp.Description("Optional free text")),
	mcp.WithString("category", mcp.Description("Optional grouping label")),
)

var variableUpdateToolDef = mcp.NewTool("variable_update",
	mcp.WithDescription("Partially update a variable by id. A missing id is an error."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Variable id")),
	mcp.WithString("value", mcp.Description("New value")),
	mcp.WithString("description", mcp.Description("New description")),
	mcp.WithString("category", mcp.Description("New category")),
)

var variableDeleteToolDef = mcp.NewTool("variable_delete",
	mcp.WithDescription("Delete a variable by id. Deleting an absent id is not an error."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Variable id")),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List the recent prompt optimization outcomes, most recent first (at most 20)."),
)

var historyAddToolDef = mcp.NewTool("history_add",
	mcp.WithDescription("Record an optimization outcome in the recent-prompt history."),
	mcp.WithString("original", mcp.Required(), mcp.Description("Source prompt text")),
	mcp.WithString("optimized", mcp.Required(), mcp.Description("Optimized result text")),
)

var historyClearToolDef = mcp.NewTool("history_clear",
	mcp.WithDescription("Clear the recent-prompt history."),
)

var optimizeToolDef = mcp.NewTool("prompt_optimize",
	mcp.WithDescription("Send a prompt to the backend optimizer, record the outcome in history, and optionally create variables from the optimizer's suggestions."),
	mcp.WithString("prompt", mcp.Required(), mcp.Description("Prompt to optimize")),
	mcp.WithString("techniques", mcp.Description("Comma-separated technique names, e.g. chain_of_thought,few_shot")),
	mcp.WithBoolean("create_vars", mcp.Description("Create local variables from the optimizer's suggested placeholders")),
)

var variablePullToolDef = mcp.NewTool("variable_pull",
	mcp.WithDescription("Import variables from the backend into the local library (newer local copies win)."),
)

var variablePushToolDef = mcp.NewTool("variable_push",
	mcp.WithDescription("Push every local variable to the backend, overwriting remote copies by name."),
)
