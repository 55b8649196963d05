package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"widgetd/internal/domain"
)

// Tool names. The executor handler table and the artifact mapping table
// are keyed by these and checked for completeness at startup.
const (
	ToolGetProjectDraft          = "get_project_draft"
	ToolUpdateProjectTitle       = "update_project_title"
	ToolUpdateProjectDescription = "update_project_description"
	ToolSetProjectTags           = "set_project_tags"
	ToolSetProjectStatus         = "set_project_status"
	ToolAttachProjectMedia       = "attach_project_media"
	ToolRemoveProjectMedia       = "remove_project_media"
	ToolRecordEditNote           = "record_edit_note"
	ToolListProjects             = "list_projects"
)

const getProjectDraftSchema = `{
  "type": "object",
  "properties": {},
  "additionalProperties": false
}`

const updateProjectTitleSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": { "type": "string", "minLength": 1, "maxLength": 120 }
  },
  "additionalProperties": false
}`

const updateProjectDescriptionSchema = `{
  "type": "object",
  "required": ["description"],
  "properties": {
    "description": { "type": "string", "minLength": 1, "maxLength": 4000 }
  },
  "additionalProperties": false
}`

const setProjectTagsSchema = `{
  "type": "object",
  "required": ["tags"],
  "properties": {
    "tags": {
      "type": "array",
      "maxItems": 12,
      "items": { "type": "string", "minLength": 1, "maxLength": 40 }
    }
  },
  "additionalProperties": false
}`

const setProjectStatusSchema = `{
  "type": "object",
  "required": ["status"],
  "properties": {
    "status": { "type": "string", "enum": ["draft", "in_review", "published"] }
  },
  "additionalProperties": false
}`

const attachProjectMediaSchema = `{
  "type": "object",
  "required": ["url", "kind"],
  "properties": {
    "url": { "type": "string", "minLength": 1 },
    "kind": { "type": "string", "enum": ["image", "video"] },
    "caption": { "type": "string", "maxLength": 240 }
  },
  "additionalProperties": false
}`

const removeProjectMediaSchema = `{
  "type": "object",
  "required": ["mediaId"],
  "properties": {
    "mediaId": { "type": "string", "minLength": 1 }
  },
  "additionalProperties": false
}`

// record_edit_note is the one tool that tolerates additive fields, so
// hosts can attach provenance without a schema rev.
const recordEditNoteSchema = `{
  "type": "object",
  "required": ["note"],
  "properties": {
    "note": { "type": "string", "minLength": 1, "maxLength": 2000 }
  },
  "additionalProperties": true
}`

const listProjectsSchema = `{
  "type": "object",
  "properties": {
    "status": { "type": "string", "enum": ["draft", "in_review", "published"] },
    "limit": { "type": "integer", "minimum": 1, "maximum": 50 }
  },
  "additionalProperties": false
}`

func mustSchema(raw string) *jsonschema.Schema {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		panic(fmt.Sprintf("invalid tool schema: %v", err))
	}
	return &schema
}

// Default constructs the full tool catalog. Construction panics on
// duplicate names or malformed schemas.
func Default() *Catalog {
	return MustNew(
		domain.ToolDefinition{
			Name:           ToolGetProjectDraft,
			Description:    "Read the current project draft for this editing session.",
			InputSchema:    mustSchema(getProjectDraftSchema),
			Classification: domain.ClassFastTurn,
		},
		domain.ToolDefinition{
			Name:           ToolUpdateProjectTitle,
			Description:    "Set the project title.",
			InputSchema:    mustSchema(updateProjectTitleSchema),
			Classification: domain.ClassFastTurn,
			Mutating:       true,
		},
		domain.ToolDefinition{
			Name:           ToolUpdateProjectDescription,
			Description:    "Set the project description shown on the portfolio page.",
			InputSchema:    mustSchema(updateProjectDescriptionSchema),
			Classification: domain.ClassFastTurn,
			Mutating:       true,
		},
		domain.ToolDefinition{
			Name:           ToolSetProjectTags,
			Description:    "Replace the project's tag list.",
			InputSchema:    mustSchema(setProjectTagsSchema),
			Classification: domain.ClassFastTurn,
			Mutating:       true,
		},
		domain.ToolDefinition{
			Name:           ToolSetProjectStatus,
			Description:    "Move the project between draft, in_review and published.",
			InputSchema:    mustSchema(setProjectStatusSchema),
			Classification: domain.ClassFastTurn,
			Mutating:       true,
		},
		domain.ToolDefinition{
			Name:           ToolAttachProjectMedia,
			Description:    "Attach an uploaded image or video to the project.",
			InputSchema:    mustSchema(attachProjectMediaSchema),
			Classification: domain.ClassFastTurn,
			Mutating:       true,
		},
		domain.ToolDefinition{
			Name:           ToolRemoveProjectMedia,
			Description:    "Detach a media item from the project by id.",
			InputSchema:    mustSchema(removeProjectMediaSchema),
			Classification: domain.ClassFastTurn,
			Mutating:       true,
		},
		domain.ToolDefinition{
			Name:           ToolRecordEditNote,
			Description:    "Record an internal note about this editing session. Not rendered.",
			InputSchema:    mustSchema(recordEditNoteSchema),
			Classification: domain.ClassFastTurn,
			Mutating:       true,
		},
		domain.ToolDefinition{
			Name:           ToolListProjects,
			Description:    "List saved portfolio projects, optionally filtered by status.",
			InputSchema:    mustSchema(listProjectsSchema),
			Classification: domain.ClassDeepContext,
		},
	)
}
