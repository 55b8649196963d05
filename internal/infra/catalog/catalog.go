package catalog

import (
	"fmt"

	"widgetd/internal/domain"
)

// Catalog is the fixed registry of invocable tools. It is append-only
// at construction: two definitions may not share a name, and nothing
// registers after New returns.
type Catalog struct {
	defs  map[string]domain.ToolDefinition
	order []string
}

func New(defs ...domain.ToolDefinition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]domain.ToolDefinition, len(defs))}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("tool definition with empty name")
		}
		if _, exists := c.defs[def.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", def.Name)
		}
		if def.InputSchema == nil {
			return nil, fmt.Errorf("tool %q has no input schema", def.Name)
		}
		switch def.Classification {
		case domain.ClassFastTurn, domain.ClassDeepContext:
		default:
			return nil, fmt.Errorf("tool %q has unknown classification %q", def.Name, def.Classification)
		}
		c.defs[def.Name] = def
		c.order = append(c.order, def.Name)
	}
	return c, nil
}

// MustNew panics on catalog construction errors. Catalog mistakes are
// programming errors and fatal at startup.
func MustNew(defs ...domain.ToolDefinition) *Catalog {
	c, err := New(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Lookup(name string) (domain.ToolDefinition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Names returns tool names in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Definitions returns all definitions in registration order.
func (c *Catalog) Definitions() []domain.ToolDefinition {
	out := make([]domain.ToolDefinition, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.defs[name])
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}
