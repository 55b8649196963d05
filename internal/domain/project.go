package domain

import "time"

// ProjectStatus is the publication state of a portfolio project.
type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusInReview  ProjectStatus = "in_review"
	StatusPublished ProjectStatus = "published"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusPublished:
		return true
	}
	return false
}

// MediaKind distinguishes the media types a project may reference.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

func (k MediaKind) Valid() bool {
	return k == MediaImage || k == MediaVideo
}

// MediaRef is a reference to an uploaded asset attached to a project.
type MediaRef struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Kind    MediaKind `json:"kind"`
	Caption string    `json:"caption,omitempty"`
}

// EditNote is a free-form annotation recorded during an editing session.
// Notes never surface in rendered widgets.
type EditNote struct {
	At   time.Time `json:"at"`
	Note string    `json:"note"`
}

// Project is the in-progress portfolio record edited over one session.
type Project struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	Tags        []string      `json:"tags,omitempty"`
	Media       []MediaRef    `json:"media,omitempty"`
	Notes       []EditNote    `json:"notes,omitempty"`
}

// NewProject returns an empty draft.
func NewProject() Project {
	return Project{Status: StatusDraft}
}

// Clone returns a deep copy so callers never alias session-owned slices.
func (p Project) Clone() Project {
	out := p
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.Media != nil {
		out.Media = append([]MediaRef(nil), p.Media...)
	}
	if p.Notes != nil {
		out.Notes = append([]EditNote(nil), p.Notes...)
	}
	return out
}

// MediaIndex returns the position of the media ref with the given id, or -1.
func (p Project) MediaIndex(id string) int {
	for i, m := range p.Media {
		if m.ID == id {
			return i
		}
	}
	return -1
}
