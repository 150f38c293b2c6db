package service

import (
	"context"
	"fmt"
	"time"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/pubsub"
	"github.com/LuanAssis01/sgi-maraba/internal/store"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// NotificationService turns lifecycle events into notifications and tracks
// which of them have been read.
type NotificationService struct {
	store *store.Store
	log   *zap.Logger
	ctx   context.Context
	now   func() time.Time
}

func NewNotificationService(st *store.Store, log *zap.Logger) *NotificationService {
	return &NotificationService{
		store: st,
		log:   log,
		ctx:   context.Background(),
		now:   time.Now,
	}
}

// Attach subscribes the service to every lifecycle event on bus
func (s *NotificationService) Attach(bus *pubsub.Bus) {
	bus.SubscribeAll(s.handle)
}

func (s *NotificationService) handle(event pubsub.Event) {
	msg, ok := notificationMessage(event)
	if !ok {
		s.log.Debug("No notification for event", zap.String("type", event.Type))
		return
	}
	s.Emit(s.ctx, msg)
}

func notificationMessage(event pubsub.Event) (string, bool) {
	p := event.Request.Protocol
	switch event.Kind {
	case model.EventReceived:
		return "new request: " + p, true
	case model.EventDispatched:
		team := ""
		if event.Request.AssignedTeam != nil {
			team = *event.Request.AssignedTeam
		}
		return fmt.Sprintf("request %s dispatched to %s", p, team), true
	case model.EventCompleted:
		return fmt.Sprintf("request %s completed", p), true
	case model.EventCancelled:
		return fmt.Sprintf("request %s cancelled", p), true
	}
	return "", false
}

// Emit prepends an unread notification
func (s *NotificationService) Emit(ctx context.Context, message string) model.Notification {
	n := model.Notification{
		ID:        ulid.Make().String(),
		Message:   message,
		Timestamp: s.now(),
	}
	s.store.PrependNotification(ctx, n)
	s.log.Debug("Notification emitted", zap.String("id", n.ID), zap.String("message", message))
	return n
}

// List returns notifications most recent first
func (s *NotificationService) List() []model.Notification {
	return s.store.Notifications()
}

// UnreadCount is derived from the notification list on every call
func (s *NotificationService) UnreadCount() int {
	count := 0
	for _, n := range s.store.Notifications() {
		if !n.Read {
			count++
		}
	}
	return count
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.store.SetNotificationRead(ctx, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) {
	s.store.SetAllNotificationsRead(ctx)
}
