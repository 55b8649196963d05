// Package artifact projects tool results onto the closed set of
// renderable artifact kinds.
package artifact

import (
	"fmt"

	"widgetd/internal/domain"
	"widgetd/internal/infra/catalog"
)

// bindings is the total mapping from tool name to artifact kind.
// Side-effect-only tools bind to ArtifactNone explicitly; there is no
// implicit fallthrough.
var bindings = map[string]domain.ArtifactKind{
	catalog.ToolGetProjectDraft:          domain.ArtifactProjectDraft,
	catalog.ToolUpdateProjectTitle:       domain.ArtifactProjectDraft,
	catalog.ToolUpdateProjectDescription: domain.ArtifactProjectDraft,
	catalog.ToolSetProjectTags:           domain.ArtifactProjectDraft,
	catalog.ToolSetProjectStatus:         domain.ArtifactProjectStatus,
	catalog.ToolAttachProjectMedia:       domain.ArtifactProjectMedia,
	catalog.ToolRemoveProjectMedia:       domain.ArtifactProjectMedia,
	catalog.ToolRecordEditNote:           domain.ArtifactNone,
	catalog.ToolListProjects:             domain.ArtifactProjectList,
}

type Mapper struct {
	kinds map[string]domain.ArtifactKind
}

// NewMapper checks the binding table against the catalog: every
// registered tool must have a binding, and every binding must use a
// known kind. Violations fail startup.
func NewMapper(cat *catalog.Catalog) (*Mapper, error) {
	kinds := make(map[string]domain.ArtifactKind, cat.Len())
	for _, name := range cat.Names() {
		kind, ok := bindings[name]
		if !ok {
			return nil, fmt.Errorf("tool %q has no artifact binding", name)
		}
		if !kind.Valid() {
			return nil, fmt.Errorf("tool %q is bound to unknown artifact kind %q", name, kind)
		}
		kinds[name] = kind
	}
	return &Mapper{kinds: kinds}, nil
}

// Map is a deterministic pure function over (toolName, result).
// Failures always map to no artifact: they render as protocol errors,
// not as widgets.
func (m *Mapper) Map(toolName string, result domain.ToolResult) domain.Artifact {
	if result.Failed() {
		return domain.NoArtifact()
	}
	kind, ok := m.kinds[toolName]
	if !ok || kind == domain.ArtifactNone {
		return domain.NoArtifact()
	}
	return domain.Artifact{Kind: kind, Data: result.Data}
}

// Kind exposes a tool's binding for startup checks and tests.
func (m *Mapper) Kind(toolName string) (domain.ArtifactKind, bool) {
	kind, ok := m.kinds[toolName]
	return kind, ok
}
