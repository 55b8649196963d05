// Package store persists per-session project drafts in a local bbolt
// database. It is a durable cache feeding list_projects; the managed
// portfolio database proper lives behind an external service.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"widgetd/internal/domain"
)

var (
	ErrStoreClosed = errors.New("project store is closed")

	bucketProjects = []byte("projects")
)

// StoredProject is the listing row saved per session.
type StoredProject struct {
	SessionID   string               `json:"sessionId"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	Tags        []string             `json:"tags,omitempty"`
	MediaCount  int                  `json:"mediaCount"`
	Revision    int64                `json:"revision"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}
	options := &bolt.Options{Timeout: time.Second}
	db, err := bolt.Open(trimmed, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("open project store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketProjects)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db, path: trimmed}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// SaveSnapshot upserts the listing row for the snapshot's session.
func (s *Store) SaveSnapshot(snap domain.ProjectSnapshot) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	row := StoredProject{
		SessionID:   snap.SessionID,
		Title:       snap.Project.Title,
		Description: snap.Project.Description,
		Status:      snap.Project.Status,
		Tags:        snap.Project.Tags,
		MediaCount:  len(snap.Project.Media),
		Revision:    snap.Revision,
		UpdatedAt:   time.Now().UTC(),
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode project row: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProjects).Put([]byte(snap.SessionID), raw)
	})
}

// ListProjects returns saved rows, newest first, optionally filtered by
// status. A zero limit means no cap.
func (s *Store) ListProjects(status domain.ProjectStatus, limit int) ([]StoredProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	var rows []StoredProject
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProjects).ForEach(func(_, v []byte) error {
			var row StoredProject
			if err := json.Unmarshal(v, &row); err != nil {
				return fmt.Errorf("decode project row: %w", err)
			}
			if status != "" && row.Status != status {
				return nil
			}
			rows = append(rows, row)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
