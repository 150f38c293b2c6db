package pubsub

import (
	"sync"

	"github.com/LuanAssis01/sgi-maraba/internal/model"

	"go.uber.org/zap"
)

// Event types published by the lifecycle engine
const (
	TypeRequestCreated    = "request.created"
	TypeRequestDispatched = "request.dispatched"
	TypeRequestCompleted  = "request.completed"
	TypeRequestCancelled  = "request.cancelled"
)

// Event describes a lifecycle change. Request is a snapshot taken after the change.
type Event struct {
	Type    string
	Kind    model.EventKind
	Request model.Request
}

// Handler reacts to an event. Handlers run synchronously in subscription order.
type Handler func(Event)

// Bus fans lifecycle events out to in-process subscribers
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
	log      *zap.Logger
}

func New(log *zap.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers h for one event type
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// SubscribeAll registers h for every event type
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers event to its subscribers before returning
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.all)+len(b.handlers[event.Type]))
	targets = append(targets, b.all...)
	targets = append(targets, b.handlers[event.Type]...)
	b.mu.RUnlock()

	for _, h := range targets {
		h(event)
	}

	b.log.Debug("Published event",
		zap.String("type", event.Type),
		zap.String("protocol", event.Request.Protocol),
		zap.Int("subscribers", len(targets)),
	)
	return nil
}
