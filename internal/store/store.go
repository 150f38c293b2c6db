// Package store holds the session's Requests, Users and Notifications and
// persists each collection as an independent blob after every mutation.
//
// Reads never fail: a missing, unreadable, corrupt or schema-invalid blob is
// replaced by its documented default and the failure is logged. Writes are
// fire-and-forget: a failed save is logged and the in-memory mutation stands.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/schema"
	"github.com/LuanAssis01/sgi-maraba/internal/storage"

	"go.uber.org/zap"
)

type Store struct {
	mu      sync.RWMutex
	blobs   storage.Blobs
	schemas *schema.Compiler
	log     *zap.Logger

	users         []model.User
	requests      []model.Request
	notifications []model.Notification
	currentUser   model.User
	currentView   model.View
}

// New creates a store holding the seed defaults. Call Load to read persisted state.
// schemas may be nil to skip blob validation.
func New(blobs storage.Blobs, schemas *schema.Compiler, log *zap.Logger) *Store {
	return &Store{
		blobs:         blobs,
		schemas:       schemas,
		log:           log,
		users:         DefaultUsers(),
		requests:      DefaultRequests(),
		notifications: DefaultNotifications(),
		currentUser:   model.Anonymous(),
		currentView:   model.ViewLogin,
	}
}

// Load reads every key, falling back to its default on failure. The returned
// error joins the per-key read failures; the store is usable either way.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	s.users, err = loadBlob(ctx, s, schema.KeyUsers, DefaultUsers(), checkUsers)
	collect(err)
	s.requests, err = loadBlob(ctx, s, schema.KeyRequests, DefaultRequests(), checkRequests)
	collect(err)
	s.notifications, err = loadBlob(ctx, s, schema.KeyNotifications, DefaultNotifications(), nil)
	collect(err)
	s.currentUser, err = loadBlob(ctx, s, schema.KeyCurrentUser, model.Anonymous(), nil)
	collect(err)
	s.currentView, err = loadBlob(ctx, s, schema.KeyCurrentView, model.ViewLogin, nil)
	collect(err)

	s.log.Info("Store loaded",
		zap.Int("users", len(s.users)),
		zap.Int("requests", len(s.requests)),
		zap.Int("notifications", len(s.notifications)),
		zap.String("view", string(s.currentView)),
	)
	return errors.Join(errs...)
}

func loadBlob[T any](ctx context.Context, s *Store, key string, def T, check func(T) error) (T, error) {
	raw, err := s.blobs.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return def, nil
	}

	fail := func(cause error) (T, error) {
		serr := &model.StorageError{Op: "read", Key: key, Err: cause}
		s.log.Warn("Falling back to default", zap.String("key", key), zap.Error(cause))
		return def, serr
	}

	if err != nil {
		return fail(err)
	}
	if s.schemas != nil && s.schemas.Has(key) {
		if err := s.schemas.Validate(ctx, key, raw); err != nil {
			return fail(err)
		}
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return fail(fmt.Errorf("failed to unmarshal blob: %w", err))
	}
	if check != nil {
		if err := check(value); err != nil {
			return fail(err)
		}
	}
	return value, nil
}

// persist saves one key. Caller holds s.mu.
func (s *Store) persist(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err == nil {
		err = s.blobs.Save(ctx, key, raw)
	}
	if err != nil {
		serr := &model.StorageError{Op: "write", Key: key, Err: err}
		s.log.Error("Failed to persist blob", zap.String("key", key), zap.Error(serr))
	}
}

// Save writes every key, e.g. to seed a fresh backend with defaults
func (s *Store) Save(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.persist(ctx, schema.KeyUsers, s.users)
	s.persist(ctx, schema.KeyRequests, s.requests)
	s.persist(ctx, schema.KeyNotifications, s.notifications)
	s.persist(ctx, schema.KeyCurrentUser, s.currentUser)
	s.persist(ctx, schema.KeyCurrentView, s.currentView)
}

// Requests

// Requests returns copies of all requests in insertion order
func (s *Store) Requests() []model.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Request, len(s.requests))
	for i, r := range s.requests {
		out[i] = r.Clone()
	}
	return out
}

func (s *Store) Request(id int64) (model.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.requests[i].Clone(), true
	}
	return model.Request{}, false
}

func (s *Store) RequestByProtocol(protocol string) (model.Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.Protocol == protocol {
			return r.Clone(), true
		}
	}
	return model.Request{}, false
}

func (s *Store) indexOf(id int64) int {
	for i := range s.requests {
		if s.requests[i].ID == id {
			return i
		}
	}
	return -1
}

// NextRequestID returns one past the highest id ever stored
func (s *Store) NextRequestID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max int64
	for _, r := range s.requests {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

// InsertRequest appends a new request. It is the lifecycle engine's creation
// primitive; nothing else constructs requests.
func (s *Store) InsertRequest(ctx context.Context, r model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.requests {
		if existing.ID >= r.ID {
			return fmt.Errorf("request id %d is not above existing id %d", r.ID, existing.ID)
		}
		if existing.Protocol == r.Protocol {
			return fmt.Errorf("%w: %s", model.ErrDuplicateProtocol, r.Protocol)
		}
	}
	if err := checkRequest(r); err != nil {
		return err
	}

	s.requests = append(s.requests, r.Clone())
	s.persist(ctx, schema.KeyRequests, s.requests)
	return nil
}

// UpdateRequest applies fn to a copy of the request and stores the copy only
// if fn succeeds and the result keeps the request's identity and timeline
// prefix intact.
func (s *Store) UpdateRequest(ctx context.Context, id int64, fn func(*model.Request) error) (model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Request{}, fmt.Errorf("%w: %d", model.ErrRequestNotFound, id)
	}

	before := s.requests[i]
	next := before.Clone()
	if err := fn(&next); err != nil {
		return before.Clone(), err
	}
	if err := checkUpdate(before, next); err != nil {
		return before.Clone(), err
	}

	s.requests[i] = next
	s.persist(ctx, schema.KeyRequests, s.requests)
	return next.Clone(), nil
}

// Users

// UserByEmail finds a user by case-insensitive email
func (s *Store) UserByEmail(email string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *Store) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.User(nil), s.users...)
}

// InsertUser adds a user unless the email is taken
func (s *Store) InsertUser(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: %s", model.ErrDuplicateEmail, u.Email)
		}
	}
	s.users = append(s.users, u)
	s.persist(ctx, schema.KeyUsers, s.users)
	return nil
}

// Notifications

// Notifications returns notifications most recent first
func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Notification(nil), s.notifications...)
}

// PrependNotification stores n as the most recent notification
func (s *Store) PrependNotification(ctx context.Context, n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]model.Notification{n}, s.notifications...)
	s.persist(ctx, schema.KeyNotifications, s.notifications)
}

// SetNotificationRead marks exactly one notification as read
func (s *Store) SetNotificationRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			s.persist(ctx, schema.KeyNotifications, s.notifications)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrNotificationNotFound, id)
}

// SetAllNotificationsRead marks every notification as read
func (s *Store) SetAllNotificationsRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.persist(ctx, schema.KeyNotifications, s.notifications)
}

// Session

func (s *Store) CurrentUser() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

func (s *Store) CurrentView() model.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentView
}

// SetSession replaces the current user and view, persisting both keys
func (s *Store) SetSession(ctx context.Context, u model.User, v model.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = u
	s.currentView = v
	s.persist(ctx, schema.KeyCurrentUser, s.currentUser)
	s.persist(ctx, schema.KeyCurrentView, s.currentView)
}
