package service

import (
	"context"
	"testing"
	"time"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/pubsub"
	"github.com/LuanAssis01/sgi-maraba/internal/sequence"
	"github.com/LuanAssis01/sgi-maraba/internal/store"
	"github.com/LuanAssis01/sgi-maraba/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type wired struct {
	requests      *RequestService
	notifications *NotificationService
}

// newWired connects the lifecycle engine to the emitter through a real bus
func newWired(t *testing.T) wired {
	t.Helper()
	log := zap.NewNop()
	st := store.New(storage.NewMemoryBlobs(), nil, log)
	require.NoError(t, st.Load(context.Background()))

	bus := pubsub.New(log)
	notifications := NewNotificationService(st, log)
	notifications.Attach(bus)

	requests := NewRequestService(st, sequence.NewMemoryCounter(), bus, log)
	requests.SetClock(func() time.Time { return time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC) })
	require.NoError(t, requests.Init(context.Background()))
	return wired{requests: requests, notifications: notifications}
}

func TestNotificationService_LifecycleMessages(t *testing.T) {
	w := newWired(t)
	ctx := context.Background()
	seeded := len(w.notifications.List())

	req, err := w.requests.CreateRequest(ctx, "damaged pole", reporter, CreateOptions{})
	require.NoError(t, err)
	_, err = w.requests.Dispatch(ctx, req.ID, "Equipe Norte", "24h")
	require.NoError(t, err)
	_, err = w.requests.Complete(ctx, req.ID, "")
	require.NoError(t, err)

	list := w.notifications.List()
	require.Len(t, list, seeded+3)
	// most recent first
	assert.Equal(t, "request 2025-0006-LP completed", list[0].Message)
	assert.Equal(t, "request 2025-0006-LP dispatched to Equipe Norte", list[1].Message)
	assert.Equal(t, "new request: 2025-0006-LP", list[2].Message)
	for _, n := range list[:3] {
		assert.False(t, n.Read)
		assert.NotEmpty(t, n.ID)
	}
}

func TestNotificationService_RejectedTransitionEmitsNothing(t *testing.T) {
	w := newWired(t)
	before := len(w.notifications.List())

	_, err := w.requests.Complete(context.Background(), 1, "")
	require.ErrorIs(t, err, model.ErrIllegalTransition)
	assert.Len(t, w.notifications.List(), before)
}

func TestNotificationService_CancelMessage(t *testing.T) {
	w := newWired(t)

	_, err := w.requests.Cancel(context.Background(), admin, 5, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, "request 2024-0005-LP cancelled", w.notifications.List()[0].Message)
}

func TestNotificationService_ReadTracking(t *testing.T) {
	w := newWired(t)
	ctx := context.Background()

	// seeds: two unread, one read
	assert.Equal(t, 2, w.notifications.UnreadCount())

	n := w.notifications.Emit(ctx, "hello")
	assert.Equal(t, 3, w.notifications.UnreadCount())

	require.NoError(t, w.notifications.MarkRead(ctx, n.ID))
	assert.Equal(t, 2, w.notifications.UnreadCount())

	// marking twice is harmless
	require.NoError(t, w.notifications.MarkRead(ctx, n.ID))
	assert.Equal(t, 2, w.notifications.UnreadCount())

	assert.ErrorIs(t, w.notifications.MarkRead(ctx, "missing"), model.ErrNotificationNotFound)

	w.notifications.MarkAllRead(ctx)
	assert.Equal(t, 0, w.notifications.UnreadCount())
}
