package domain

import "sync"

// ProjectSnapshot is an immutable view of a session at one revision.
type ProjectSnapshot struct {
	SessionID string
	Revision  int64
	Project   Project
}

// Mutation computes the next project value from the current one.
// Returning an error aborts the mutation with no observable effect.
type Mutation func(Project) (Project, error)

// SessionState owns the single mutable project record for one editing
// session. Apply is the only path that changes the project or the
// revision; concurrent Apply calls are serialized.
type SessionState struct {
	mu        sync.RWMutex
	sessionID string
	project   Project
	revision  int64
}

func NewSessionState(sessionID string, seed Project) *SessionState {
	return &SessionState{
		sessionID: sessionID,
		project:   seed.Clone(),
	}
}

// NewSessionStateAt restores a session at a known revision, e.g. when
// resuming a persisted draft.
func NewSessionStateAt(sessionID string, seed Project, revision int64) *SessionState {
	return &SessionState{
		sessionID: sessionID,
		project:   seed.Clone(),
		revision:  revision,
	}
}

func (s *SessionState) SessionID() string {
	return s.sessionID
}

// Snapshot returns a consistent copy of the current state. Callers may
// mutate the returned project freely without affecting the session.
func (s *SessionState) Snapshot() ProjectSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProjectSnapshot{
		SessionID: s.sessionID,
		Revision:  s.revision,
		Project:   s.project.Clone(),
	}
}

// Revision returns the current revision without copying the project.
func (s *SessionState) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Apply runs the mutation against a copy of the current project and, on
// success, installs the result and increments the revision by exactly
// one. A failed mutation leaves both the project and the revision
// untouched.
func (s *SessionState) Apply(mutate Mutation) (int64, error) {
	if mutate == nil {
		return 0, E(CodeInternal, "session.apply", "nil mutation", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := mutate(s.project.Clone())
	if err != nil {
		return s.revision, err
	}
	s.project = next
	s.revision++
	return s.revision, nil
}
