package domain

// ArtifactKind tags a renderable result. The set is closed: an unknown
// tag is a programming error caught at startup, never a runtime error
// surfaced to the host.
type ArtifactKind string

const (
	ArtifactProjectDraft  ArtifactKind = "project-draft"
	ArtifactProjectMedia  ArtifactKind = "project-media"
	ArtifactProjectStatus ArtifactKind = "project-status"
	ArtifactProjectList   ArtifactKind = "project-list"
	// ArtifactNone marks side-effect-only tools that render nothing.
	ArtifactNone ArtifactKind = "none"
)

func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactProjectDraft, ArtifactProjectMedia, ArtifactProjectStatus, ArtifactProjectList, ArtifactNone:
		return true
	}
	return false
}

// Renderable reports whether the kind produces a widget.
func (k ArtifactKind) Renderable() bool {
	return k.Valid() && k != ArtifactNone
}

// Artifact is the renderable projection of a tool result.
type Artifact struct {
	Kind ArtifactKind
	Data map[string]any
}

// NoArtifact is returned for failures and side-effect-only tools.
func NoArtifact() Artifact {
	return Artifact{Kind: ArtifactNone}
}
