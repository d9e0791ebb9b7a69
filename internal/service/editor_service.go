package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gurukit/gurukit-backend/internal/editor"
	"github.com/rs/zerolog"
)

type editorKey struct {
	owner uuid.UUID
	doc   uuid.UUID
}

type editorEntry struct {
	ed       *editor.Editor
	lastSeen time.Time
}

// EditorService keeps one working copy per (owner, document). Opening a
// document again replaces the copy and drops unsaved edits. Idle copies are
// evicted after the configured TTL.
type EditorService struct {
	docs    *DocumentService
	idleTTL time.Duration
	now     func() time.Time
	log     zerolog.Logger

	mu      sync.Mutex
	editors map[editorKey]*editorEntry
}

// NewEditorService creates a new EditorService.
func NewEditorService(docs *DocumentService, idleTTL time.Duration, log zerolog.Logger) *EditorService {
	return &EditorService{
		docs:    docs,
		idleTTL: idleTTL,
		now:     time.Now,
		log:     log.With().Str("component", "editor_service").Logger(),
		editors: make(map[editorKey]*editorEntry),
	}
}

// Open loads a fresh working copy of the document.
func (s *EditorService) Open(ctx context.Context, ownerID, id uuid.UUID) (*editor.Editor, error) {
	doc, err := s.docs.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	ed, err := editor.New(doc, s.docs)
	if err != nil {
		return nil, err
	}

	key := editorKey{owner: ownerID, doc: id}
	s.mu.Lock()
	if prev, ok := s.editors[key]; ok && prev.ed.State() != editor.StateClean {
		s.log.Info().Str("document_id", id.String()).Msg("Discarding unsaved edits on reopen")
	}
	s.editors[key] = &editorEntry{ed: ed, lastSeen: s.now()}
	s.mu.Unlock()
	return ed, nil
}

// Get returns the open working copy and refreshes its idle timer.
func (s *EditorService) Get(ownerID, id uuid.UUID) (*editor.Editor, error) {
	if ownerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.editors[editorKey{owner: ownerID, doc: id}]
	if !ok {
		return nil, ErrEditorNotOpen
	}
	entry.lastSeen = s.now()
	return entry.ed, nil
}

// Close drops the working copy. Unsaved edits are discarded.
func (s *EditorService) Close(ownerID, id uuid.UUID) {
	s.mu.Lock()
	delete(s.editors, editorKey{owner: ownerID, doc: id})
	s.mu.Unlock()
}

// Run evicts idle working copies until ctx is cancelled.
func (s *EditorService) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(); n > 0 {
				s.log.Debug().Int("evicted", n).Msg("Evicted idle editors")
			}
		}
	}
}

// evictIdle removes copies idle for longer than the TTL. A copy that is
// being saved is kept.
func (s *EditorService) evictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	cutoff := s.now().Add(-s.idleTTL)
	for key, entry := range s.editors {
		if entry.lastSeen.Before(cutoff) && entry.ed.State() != editor.StateSaving {
			delete(s.editors, key)
			n++
		}
	}
	return n
}

// OpenCount reports how many working copies are held.
func (s *EditorService) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.editors)
}
