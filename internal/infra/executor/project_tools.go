package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"widgetd/internal/domain"
)

// Handlers return fragments of the snapshot relevant to the call, never
// the session object itself.

func draftFragment(snap domain.ProjectSnapshot) map[string]any {
	tags := snap.Project.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"sessionId":   snap.SessionID,
		"revision":    snap.Revision,
		"title":       snap.Project.Title,
		"description": snap.Project.Description,
		"status":      string(snap.Project.Status),
		"tags":        tags,
		"mediaCount":  len(snap.Project.Media),
	}
}

func mediaFragment(snap domain.ProjectSnapshot) map[string]any {
	media := make([]map[string]any, 0, len(snap.Project.Media))
	for _, m := range snap.Project.Media {
		media = append(media, map[string]any{
			"id":      m.ID,
			"url":     m.URL,
			"kind":    string(m.Kind),
			"caption": m.Caption,
		})
	}
	return map[string]any{
		"revision": snap.Revision,
		"media":    media,
	}
}

func (e *Executor) getProjectDraft(_ context.Context, _ map[string]any, sess *domain.SessionState) domain.ToolResult {
	return domain.Succeed(draftFragment(sess.Snapshot()))
}

func (e *Executor) updateProjectTitle(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	title := stringArg(args, "title")
	snap, failure := e.applyAndPersist(sess, func(p domain.Project) (domain.Project, error) {
		p.Title = title
		return p, nil
	})
	if failure != nil {
		return domain.ToolResult{Failure: failure}
	}
	return domain.Succeed(draftFragment(snap))
}

func (e *Executor) updateProjectDescription(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	description := stringArg(args, "description")
	snap, failure := e.applyAndPersist(sess, func(p domain.Project) (domain.Project, error) {
		p.Description = description
		return p, nil
	})
	if failure != nil {
		return domain.ToolResult{Failure: failure}
	}
	return domain.Succeed(draftFragment(snap))
}

func (e *Executor) setProjectTags(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	tags, err := stringSliceArg(args, "tags")
	if err != nil {
		return domain.Fail(domain.CodeInvalidArgument, err.Error())
	}
	snap, failure := e.applyAndPersist(sess, func(p domain.Project) (domain.Project, error) {
		p.Tags = tags
		return p, nil
	})
	if failure != nil {
		return domain.ToolResult{Failure: failure}
	}
	return domain.Succeed(draftFragment(snap))
}

func (e *Executor) setProjectStatus(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	status := domain.ProjectStatus(stringArg(args, "status"))
	snap, failure := e.applyAndPersist(sess, func(p domain.Project) (domain.Project, error) {
		if !status.Valid() {
			return p, domain.E(domain.CodeInvalidArgument, "executor.set_status", fmt.Sprintf("unknown status %q", status), nil)
		}
		p.Status = status
		return p, nil
	})
	if failure != nil {
		return domain.ToolResult{Failure: failure}
	}
	return domain.Succeed(map[string]any{
		"revision": snap.Revision,
		"status":   string(snap.Project.Status),
		"title":    snap.Project.Title,
	})
}

func (e *Executor) attachProjectMedia(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	ref := domain.MediaRef{
		ID:      uuid.NewString(),
		URL:     stringArg(args, "url"),
		Kind:    domain.MediaKind(stringArg(args, "kind")),
		Caption: stringArg(args, "caption"),
	}
	snap, failure := e.applyAndPersist(sess, func(p domain.Project) (domain.Project, error) {
		if !ref.Kind.Valid() {
			return p, domain.E(domain.CodeInvalidArgument, "executor.attach_media", fmt.Sprintf("unknown media kind %q", ref.Kind), nil)
		}
		p.Media = append(p.Media, ref)
		return p, nil
	})
	if failure != nil {
		return domain.ToolResult{Failure: failure}
	}
	data := mediaFragment(snap)
	data["attached"] = ref.ID
	return domain.Succeed(data)
}

func (e *Executor) removeProjectMedia(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	mediaID := stringArg(args, "mediaId")
	snap, failure := e.applyAndPersist(sess, func(p domain.Project) (domain.Project, error) {
		idx := p.MediaIndex(mediaID)
		if idx < 0 {
			return p, domain.E(domain.CodeFailedPrecond, "executor.remove_media",
				fmt.Sprintf("media %q is not attached to this project", mediaID), domain.ErrMediaNotFound)
		}
		p.Media = append(p.Media[:idx], p.Media[idx+1:]...)
		return p, nil
	})
	if failure != nil {
		return domain.ToolResult{Failure: failure}
	}
	data := mediaFragment(snap)
	data["removed"] = mediaID
	return domain.Succeed(data)
}

func (e *Executor) recordEditNote(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	note := domain.EditNote{At: time.Now().UTC(), Note: stringArg(args, "note")}
	snap, failure := e.applyAndPersist(sess, func(p domain.Project) (domain.Project, error) {
		p.Notes = append(p.Notes, note)
		return p, nil
	})
	if failure != nil {
		return domain.ToolResult{Failure: failure}
	}
	return domain.Succeed(map[string]any{
		"revision": snap.Revision,
		"recorded": true,
	})
}

func (e *Executor) listProjects(_ context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult {
	status := domain.ProjectStatus(stringArg(args, "status"))
	limit := intArg(args, "limit")

	projects := []map[string]any{}
	if e.store != nil {
		rows, err := e.store.ListProjects(status, limit)
		if err != nil {
			e.logger.Warn("list projects failed", zap.Error(err))
			return domain.Fail(domain.CodeUnavailable, "project store is unavailable")
		}
		for _, row := range rows {
			projects = append(projects, map[string]any{
				"sessionId":  row.SessionID,
				"title":      row.Title,
				"status":     string(row.Status),
				"tags":       row.Tags,
				"mediaCount": row.MediaCount,
				"updatedAt":  row.UpdatedAt,
			})
		}
	}
	return domain.Succeed(map[string]any{
		"revision": sess.Revision(),
		"projects": projects,
		"count":    len(projects),
	})
}
