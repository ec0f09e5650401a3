package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"trip-route-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one route view: a trip plan's stops under a Controller.
type Session struct {
	ID         string
	PlanID     string
	CreatedAt  time.Time
	Controller *Controller

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen returns the time of the last access.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// SessionStore keeps live sessions in memory and evicts idle ones.
// Sessions are never persisted.
type SessionStore struct {
	newController func() *Controller
	idleTTL       time.Duration
	log           *zap.Logger
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore(newController func() *Controller, idleTTL time.Duration, log *zap.Logger) *SessionStore {
	return &SessionStore{
		newController: newController,
		idleTTL:       idleTTL,
		log:           log,
		now:           time.Now,
		sessions:      make(map[string]*Session),
	}
}

// Create loads stops into a new session and registers it.
func (s *SessionStore) Create(ctx context.Context, planID string, stops []domain.Stop) (*Session, Snapshot, error) {
	ctrl := s.newController()
	snap, err := ctrl.Load(ctx, stops)
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("create session: %w", err)
	}

	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		PlanID:     planID,
		CreatedAt:  now,
		Controller: ctrl,
	}
	sess.touch(now)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("plan_id", planID),
		zap.Int("resolved", len(snap.Resolved)))

	return sess, snap, nil
}

func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get session %q: %w", id, ErrSessionNotFound)
	}
	sess.touch(s.now())
	return sess, nil
}

func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("delete session %q: %w", id, ErrSessionNotFound)
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed.
func (s *SessionStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions periodically until ctx is done.
func (s *SessionStore) Run(ctx context.Context) {
	if s.idleTTL <= 0 {
		return
	}
	interval := max(s.idleTTL/4, time.Second)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
