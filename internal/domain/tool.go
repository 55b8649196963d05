package domain

import "github.com/google/jsonschema-go/jsonschema"

// Classification is latency-budget metadata consumed by the external
// orchestrator. The server exposes it but attaches no scheduling
// semantics of its own.
type Classification string

const (
	ClassFastTurn    Classification = "fast_turn"
	ClassDeepContext Classification = "deep_context"
)

// ToolDefinition describes one invocable operation. Definitions are
// immutable once the catalog is constructed.
type ToolDefinition struct {
	Name           string
	Description    string
	InputSchema    *jsonschema.Schema
	Classification Classification
	// Mutating marks tools whose executors call SessionState.Apply.
	Mutating bool
}

// Failure is the structured error half of a tool result.
type Failure struct {
	Kind    ErrorCode `json:"kind"`
	Message string    `json:"message"`
}

// ToolResult carries either success data or a failure, never both.
type ToolResult struct {
	Data    map[string]any
	Failure *Failure
}

func Succeed(data map[string]any) ToolResult {
	return ToolResult{Data: data}
}

func Fail(kind ErrorCode, message string) ToolResult {
	return ToolResult{Failure: &Failure{Kind: kind, Message: message}}
}

func (r ToolResult) Failed() bool {
	return r.Failure != nil
}
