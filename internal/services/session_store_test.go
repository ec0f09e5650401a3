package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"trip-route-service/internal/adapters/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T, ttl time.Duration) *SessionStore {
	t.Helper()
	router := routing.NewMockRouter()
	return NewSessionStore(func() *Controller {
		return newTestController(t, router)
	}, ttl, zaptest.NewLogger(t))
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := newTestStore(t, time.Hour)

	sess, snap, err := store.Create(context.Background(), "plan-1", stopsAt(swissStops...))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "plan-1", sess.PlanID)
	assert.Len(t, snap.ActiveStopIDs, 4)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, store.Delete(sess.ID))
	_, err = store.Get(sess.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.True(t, errors.Is(store.Delete(sess.ID), ErrSessionNotFound))
}

func TestSessionStoreSweepEvictsIdleSessions(t *testing.T) {
	store := newTestStore(t, 10*time.Minute)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	idle, _, err := store.Create(ctx, "", stopsAt(swissStops[:2]...))
	require.NoError(t, err)
	busy, _, err := store.Create(ctx, "", stopsAt(swissStops[:2]...))
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	_, err = store.Get(busy.ID)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, store.Sweep())

	_, err = store.Get(idle.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	_, err = store.Get(busy.ID)
	assert.NoError(t, err)
}

func TestSessionStoreCreateFailsOnCancelledContext(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Create(ctx, "", stopsAt(swissStops[:1]...))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, store.Len())
}
