package mesa

import (
	"context"
	"encoding/json"
)

// Tool is the schema sent to the model describing a tool's capabilities.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolExecutor runs tools. Execute returns error only for infrastructure
// failures. Domain failures (validation errors, store errors) are encoded
// in the result payload with success=false so the model can react to them
// conversationally.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// ToolResult is the structured outcome of a tool execution. Payload is a
// JSON object of the form {"success": bool, "record": ...} on success or
// {"success": false, "error": ...} on failure.
type ToolResult struct {
	Payload json.RawMessage
	IsError bool
}
