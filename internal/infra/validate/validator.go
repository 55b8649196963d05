// Package validate checks tool invocation payloads against the
// catalog's declared schemas. Validation is pure: it never touches
// session state.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"widgetd/internal/domain"
)

// Violation is one field-level schema rejection.
type Violation struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Validator holds the resolved form of every catalog schema. Resolution
// happens once at construction so a malformed schema fails startup, not
// a request.
type Validator struct {
	resolved map[string]*jsonschema.Resolved
}

func NewValidator(defs ...domain.ToolDefinition) (*Validator, error) {
	v := &Validator{resolved: make(map[string]*jsonschema.Resolved, len(defs))}
	for _, def := range defs {
		if def.InputSchema == nil {
			return nil, fmt.Errorf("tool %q has no input schema", def.Name)
		}
		resolved, err := def.InputSchema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolve schema for %q: %w", def.Name, err)
		}
		v.resolved[def.Name] = resolved
	}
	return v, nil
}

// Validate decodes and checks raw arguments for the named tool. A nil
// or empty payload is treated as an empty object. On success the typed
// arguments are returned; otherwise the violations describe what to
// correct.
func (v *Validator) Validate(def domain.ToolDefinition, raw json.RawMessage) (map[string]any, []Violation) {
	resolved, ok := v.resolved[def.Name]
	if !ok {
		return nil, []Violation{{Message: fmt.Sprintf("tool %q is not in the validator's catalog", def.Name)}}
	}

	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, []Violation{{Message: fmt.Sprintf("arguments are not valid JSON: %v", err)}}
	}
	args, ok := decoded.(map[string]any)
	if !ok {
		return nil, []Violation{{Message: "arguments must be a JSON object"}}
	}

	if err := resolved.Validate(decoded); err != nil {
		return nil, []Violation{{Message: err.Error()}}
	}
	return args, nil
}
