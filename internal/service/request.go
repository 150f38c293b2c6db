package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/pubsub"
	"github.com/LuanAssis01/sgi-maraba/internal/sequence"
	"github.com/LuanAssis01/sgi-maraba/internal/store"

	"go.uber.org/zap"
)

// DefaultOrigin is the city centre of Marabá, used when a report has no location
var DefaultOrigin = model.Coordinates{Lat: -5.3686, Lng: -49.1178}

// DefaultAddress is stored when a report has no address
const DefaultAddress = "Address not provided"

// maxProtocolAttempts bounds retries when a sequence collides with a stored protocol
const maxProtocolAttempts = 16

type EventBus interface {
	Publish(event pubsub.Event) error
}

// PriorityTable maps a request type to its default priority. Types are matched
// case-insensitively; unknown types default to medium.
type PriorityTable map[string]model.Priority

// DefaultPriorityTable returns the built-in type -> priority defaults
func DefaultPriorityTable() PriorityTable {
	return PriorityTable{
		"damaged pole": model.PriorityCritical,
	}
}

// For returns the default priority for a request type
func (t PriorityTable) For(requestType string) model.Priority {
	if p, ok := t[strings.ToLower(strings.TrimSpace(requestType))]; ok {
		return p
	}
	return model.PriorityMedium
}

// transitions lists every allowed status change and the timeline event it records
var transitions = map[model.Status]map[model.Status]model.EventKind{
	model.StatusPending: {
		model.StatusProgress:  model.EventDispatched,
		model.StatusCancelled: model.EventCancelled,
	},
	model.StatusProgress: {
		model.StatusDone:      model.EventCompleted,
		model.StatusCancelled: model.EventCancelled,
	},
}

var eventTypes = map[model.EventKind]string{
	model.EventReceived:   pubsub.TypeRequestCreated,
	model.EventDispatched: pubsub.TypeRequestDispatched,
	model.EventCompleted:  pubsub.TypeRequestCompleted,
	model.EventCancelled:  pubsub.TypeRequestCancelled,
}

// RequestService is the request lifecycle engine. It is the only component
// that creates requests or appends timeline events.
type RequestService struct {
	mu         sync.Mutex
	store      *store.Store
	seq        sequence.Counter
	bus        EventBus
	priorities PriorityTable
	now        func() time.Time
	log        *zap.Logger
}

func NewRequestService(st *store.Store, seq sequence.Counter, bus EventBus, log *zap.Logger) *RequestService {
	return &RequestService{
		store:      st,
		seq:        seq,
		bus:        bus,
		priorities: DefaultPriorityTable(),
		now:        time.Now,
		log:        log,
	}
}

// SetPriorityTable replaces the type -> priority defaults
func (s *RequestService) SetPriorityTable(t PriorityTable) {
	lowered := make(PriorityTable, len(t))
	for k, v := range t {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}
	s.priorities = lowered
}

// SetClock replaces the time source used to stamp requests and events
func (s *RequestService) SetClock(now func() time.Time) {
	s.now = now
}

// Init moves the protocol sequence past every protocol already stored, so
// loaded requests never collide with new ones. Call after the store is loaded.
func (s *RequestService) Init(ctx context.Context) error {
	var max int64
	for _, r := range s.store.Requests() {
		if n, ok := ProtocolSequence(r.Protocol); ok && n > max {
			max = n
		}
	}
	if err := s.seq.Floor(ctx, max); err != nil {
		return fmt.Errorf("failed to seed protocol sequence: %w", err)
	}
	return nil
}

// FormatProtocol renders a protocol as {year}-{sequence:04d}-LP
func FormatProtocol(year int, seq int64) string {
	return fmt.Sprintf("%d-%04d-LP", year, seq)
}

// ProtocolSequence extracts the sequence part of a protocol
func ProtocolSequence(protocol string) (int64, bool) {
	parts := strings.Split(protocol, "-")
	if len(parts) != 3 || parts[2] != "LP" {
		return 0, false
	}
	n, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// CreateOptions holds the optional fields of a new request
type CreateOptions struct {
	// Address defaults to DefaultAddress
	Address string
	// Description defaults to empty
	Description string
	// Coordinates defaults to DefaultOrigin
	Coordinates *model.Coordinates
	// Priority defaults to the priority table entry for the request type
	Priority *model.Priority
}

// OptionsAt pre-fills a report started by clicking the map at a point
func OptionsAt(at model.Coordinates) CreateOptions {
	return CreateOptions{Coordinates: &at}
}

// CreateRequest files a new pending request with a fresh id and protocol
func (s *RequestService) CreateRequest(ctx context.Context, requestType string, reporter model.Reporter, opts CreateOptions) (*model.Request, error) {
	coords := DefaultOrigin
	if opts.Coordinates != nil {
		coords = *opts.Coordinates
	}
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	priority := s.priorities.For(requestType)
	if opts.Priority != nil {
		if !opts.Priority.Valid() {
			return nil, fmt.Errorf("unknown priority %q", *opts.Priority)
		}
		priority = *opts.Priority
	}

	address := strings.TrimSpace(opts.Address)
	if address == "" {
		address = DefaultAddress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	req := model.Request{
		ID:          s.store.NextRequestID(),
		Type:        requestType,
		Address:     address,
		Status:      model.StatusPending,
		Priority:    priority,
		Coordinates: coords,
		CreatedDate: now.Format(store.DateLayout),
		Reporter:    reporter,
		Description: opts.Description,
		Timeline: []model.TimelineEvent{
			newEvent(model.EventReceived, "Request received", "Request registered in the system", now),
		},
	}

	var err error
	for attempt := 0; attempt < maxProtocolAttempts; attempt++ {
		var seq int64
		seq, err = s.seq.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate protocol: %w", err)
		}
		req.Protocol = FormatProtocol(now.Year(), seq)

		err = s.store.InsertRequest(ctx, req)
		if !errors.Is(err, model.ErrDuplicateProtocol) {
			break
		}
		s.log.Warn("Protocol already taken, retrying", zap.String("protocol", req.Protocol))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.log.Info("Request created",
		zap.Int64("id", req.ID),
		zap.String("protocol", req.Protocol),
		zap.String("priority", string(req.Priority)),
	)
	s.publish(model.EventReceived, req)
	return &req, nil
}

// Dispatch assigns a team to a pending request and moves it to progress
func (s *RequestService) Dispatch(ctx context.Context, id int64, team, estimatedTime string) (*model.Request, error) {
	description := fmt.Sprintf("%s assigned, estimated %s", team, estimatedTime)
	return s.transition(ctx, id, model.StatusProgress, "Team dispatched", description, func(r *model.Request) {
		r.AssignedTeam = &team
		r.EstimatedTime = &estimatedTime
	})
}

// Complete closes a request that is in progress
func (s *RequestService) Complete(ctx context.Context, id int64, note string) (*model.Request, error) {
	if note == "" {
		note = "Service completed"
	}
	return s.transition(ctx, id, model.StatusDone, "Service completed", note, nil)
}

// Cancel cancels a pending or in-progress request. Only admins may cancel.
func (s *RequestService) Cancel(ctx context.Context, actor model.User, id int64, reason string) (*model.Request, error) {
	if actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: cancelling requires the admin role", model.ErrNotAuthorized)
	}
	if reason == "" {
		reason = "Cancelled by administrator"
	}
	return s.transition(ctx, id, model.StatusCancelled, "Request cancelled", reason, nil)
}

func (s *RequestService) transition(ctx context.Context, id int64, target model.Status, title, description string, mutate func(*model.Request)) (*model.Request, error) {
	var kind model.EventKind
	updated, err := s.store.UpdateRequest(ctx, id, func(r *model.Request) error {
		k, ok := transitions[r.Status][target]
		if !ok {
			return &model.IllegalTransitionError{RequestID: r.ID, Current: r.Status, Attempted: target}
		}
		kind = k

		at := s.now()
		if last, ok := r.LastEvent(); ok && at.Before(last.At) {
			return &model.OutOfOrderEventError{RequestID: r.ID, Last: last.At, Attempted: at}
		}

		r.Timeline = append(r.Timeline, newEvent(kind, title, description, at))
		r.Status = target
		if mutate != nil {
			mutate(r)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("Transition rejected",
			zap.Int64("id", id),
			zap.String("attempted", string(target)),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("Request transitioned",
		zap.Int64("id", updated.ID),
		zap.String("protocol", updated.Protocol),
		zap.String("status", string(updated.Status)),
	)
	s.publish(kind, updated)
	return &updated, nil
}

func (s *RequestService) publish(kind model.EventKind, r model.Request) {
	_ = s.bus.Publish(pubsub.Event{
		Type:    eventTypes[kind],
		Kind:    kind,
		Request: r.Clone(),
	})
}

func newEvent(kind model.EventKind, title, description string, at time.Time) model.TimelineEvent {
	return model.TimelineEvent{
		Date:        at.Format(store.DateLayout),
		Time:        at.Format(store.TimeLayout),
		Title:       title,
		Description: description,
		Kind:        kind,
		At:          at,
	}
}

// GetRequest looks a request up by id
func (s *RequestService) GetRequest(id int64) (*model.Request, error) {
	r, ok := s.store.Request(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", model.ErrRequestNotFound, id)
	}
	return &r, nil
}

// GetRequestByProtocol looks a request up by its protocol
func (s *RequestService) GetRequestByProtocol(protocol string) (*model.Request, error) {
	r, ok := s.store.RequestByProtocol(protocol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrRequestNotFound, protocol)
	}
	return &r, nil
}

// Filter narrows the admin request list. Empty fields match everything.
type Filter struct {
	Status   model.Status
	Priority model.Priority
	// ReporterEmail restricts to one citizen's requests
	ReporterEmail string
}

func (f Filter) matches(r model.Request) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Priority != "" && r.Priority != f.Priority {
		return false
	}
	if f.ReporterEmail != "" && !strings.EqualFold(r.Reporter.Email, f.ReporterEmail) {
		return false
	}
	return true
}

// ListRequests returns requests matching f in insertion order
func (s *RequestService) ListRequests(f Filter) []model.Request {
	all := s.store.Requests()
	out := make([]model.Request, 0, len(all))
	for _, r := range all {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Stats counts requests per status
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Progress  int `json:"progress"`
	Done      int `json:"done"`
	Cancelled int `json:"cancelled"`
	Critical  int `json:"critical"`
}

func (s *RequestService) Stats() Stats {
	var st Stats
	for _, r := range s.store.Requests() {
		st.Total++
		switch r.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusProgress:
			st.Progress++
		case model.StatusDone:
			st.Done++
		case model.StatusCancelled:
			st.Cancelled++
		}
		if r.Priority == model.PriorityCritical && !r.Status.Terminal() {
			st.Critical++
		}
	}
	return st
}
