// Package executor runs validated tool invocations against one editing
// session. Read-only tools see a snapshot; mutating tools go through
// SessionState.Apply, which is atomic per call.
package executor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"widgetd/internal/domain"
	"widgetd/internal/infra/catalog"
	"widgetd/internal/infra/store"
)

type handler func(ctx context.Context, args map[string]any, sess *domain.SessionState) domain.ToolResult

type Executor struct {
	logger   *zap.Logger
	store    *store.Store
	handlers map[string]handler
}

// NewExecutor builds the handler table. st may be nil, in which case
// drafts are not persisted and list_projects returns an empty list.
func NewExecutor(st *store.Store, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		logger: logger.Named("executor"),
		store:  st,
	}
	e.handlers = map[string]handler{
		catalog.ToolGetProjectDraft:          e.getProjectDraft,
		catalog.ToolUpdateProjectTitle:       e.updateProjectTitle,
		catalog.ToolUpdateProjectDescription: e.updateProjectDescription,
		catalog.ToolSetProjectTags:           e.setProjectTags,
		catalog.ToolSetProjectStatus:         e.setProjectStatus,
		catalog.ToolAttachProjectMedia:       e.attachProjectMedia,
		catalog.ToolRemoveProjectMedia:       e.removeProjectMedia,
		catalog.ToolRecordEditNote:           e.recordEditNote,
		catalog.ToolListProjects:             e.listProjects,
	}
	return e
}

// Covers reports whether a handler exists for the tool name. Used by
// startup completeness checks.
func (e *Executor) Covers(name string) bool {
	_, ok := e.handlers[name]
	return ok
}

// Execute dispatches to the tool's handler. Panics are contained and
// sanitized: the host sees a generic INTERNAL failure, never a partial
// mutation (Apply is all-or-nothing).
func (e *Executor) Execute(ctx context.Context, def domain.ToolDefinition, args map[string]any, sess *domain.SessionState) (result domain.ToolResult) {
	h, ok := e.handlers[def.Name]
	if !ok {
		// The catalog and handler table are completeness-checked at
		// startup, so this indicates a programming error.
		e.logger.Error("no handler for catalog tool", zap.String("tool", def.Name))
		return domain.Fail(domain.CodeInternal, "tool has no executor")
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool handler panicked",
				zap.String("tool", def.Name),
				zap.Any("panic", r),
			)
			result = domain.Fail(domain.CodeInternal, "internal error executing tool")
		}
	}()

	return h(ctx, args, sess)
}

// applyAndPersist runs the mutation and, on success, saves the new
// snapshot. Persistence failures are logged, not surfaced: the mutation
// already landed and the revision contract must hold.
func (e *Executor) applyAndPersist(sess *domain.SessionState, mutate domain.Mutation) (domain.ProjectSnapshot, *domain.Failure) {
	if _, err := sess.Apply(mutate); err != nil {
		return domain.ProjectSnapshot{}, failureFrom(err)
	}
	snap := sess.Snapshot()
	if e.store != nil {
		if err := e.store.SaveSnapshot(snap); err != nil {
			e.logger.Warn("persist draft failed",
				zap.String("session", snap.SessionID),
				zap.Error(err),
			)
		}
	}
	return snap, nil
}

func failureFrom(err error) *domain.Failure {
	code, ok := domain.CodeFrom(err)
	if !ok {
		code = domain.CodeInternal
	}
	message := err.Error()
	if code == domain.CodeInternal {
		message = "internal error executing tool"
	}
	return &domain.Failure{Kind: code, Message: message}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) int {
	// JSON numbers decode as float64.
	f, ok := args[key].(float64)
	if !ok {
		return 0
	}
	return int(f)
}

func stringSliceArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, errors.New("array elements must be strings")
		}
		out = append(out, s)
	}
	return out, nil
}
