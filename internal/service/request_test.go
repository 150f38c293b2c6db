package service

import (
	"context"
	"regexp"
	"sync"
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

// MockEventBus implements EventBus for testing
type MockEventBus struct {
	mu     sync.Mutex
	events []pubsub.Event
}

func (m *MockEventBus) Publish(event pubsub.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventBus) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var protocolPattern = regexp.MustCompile(`^\d{4}-\d{4}-LP$`)

var admin = model.User{ID: "a", Name: "Admin", Role: model.RoleAdmin}

var reporter = model.Reporter{Name: "Maria Silva", Email: "maria@email.com", Phone: "(94) 99999-1234"}

func newRequestService(t *testing.T) (*RequestService, *MockEventBus, *fakeClock) {
	t.Helper()
	st := store.New(storage.NewMemoryBlobs(), nil, zap.NewNop())
	require.NoError(t, st.Load(context.Background()))

	bus := &MockEventBus{}
	clock := &fakeClock{t: time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)}
	svc := NewRequestService(st, sequence.NewMemoryCounter(), bus, zap.NewNop())
	svc.SetClock(clock.now)
	require.NoError(t, svc.Init(context.Background()))
	return svc, bus, clock
}

func TestRequestService_CreateRequest(t *testing.T) {
	svc, bus, _ := newRequestService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "lamp out", reporter, CreateOptions{
		Address:     "Rua A, 10 - Nova Marabá",
		Description: "dark street",
	})
	require.NoError(t, err)

	// seeds hold ids 1..5 and sequences up to 0005
	assert.Equal(t, int64(6), req.ID)
	assert.Equal(t, "2025-0006-LP", req.Protocol)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, model.PriorityMedium, req.Priority)
	assert.Equal(t, "02/06/2025", req.CreatedDate)
	require.Len(t, req.Timeline, 1)
	assert.Equal(t, model.EventReceived, req.Timeline[0].Kind)
	assert.Equal(t, "09:00", req.Timeline[0].Time)
	assert.Nil(t, req.AssignedTeam)

	assert.Equal(t, []string{pubsub.TypeRequestCreated}, bus.types())

	stored, err := svc.GetRequestByProtocol("2025-0006-LP")
	require.NoError(t, err)
	assert.Equal(t, req.ID, stored.ID)
}

func TestRequestService_CreateRequestDefaults(t *testing.T) {
	svc, _, _ := newRequestService(t)

	req, err := svc.CreateRequest(context.Background(), "lamp out", reporter, CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOrigin, req.Coordinates)
	assert.Equal(t, DefaultAddress, req.Address)
	assert.Empty(t, req.Description)
}

func TestRequestService_CreateRequestPriority(t *testing.T) {
	svc, _, _ := newRequestService(t)
	ctx := context.Background()

	pole, err := svc.CreateRequest(ctx, "Damaged Pole", reporter, CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityCritical, pole.Priority)

	low := model.PriorityLow
	overridden, err := svc.CreateRequest(ctx, "damaged pole", reporter, CreateOptions{Priority: &low})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLow, overridden.Priority)

	svc.SetPriorityTable(PriorityTable{"Exposed Wiring": model.PriorityHigh})
	wiring, err := svc.CreateRequest(ctx, "exposed wiring", reporter, CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, wiring.Priority)

	bogus := model.Priority("urgent")
	_, err = svc.CreateRequest(ctx, "lamp out", reporter, CreateOptions{Priority: &bogus})
	assert.Error(t, err)
}

func TestRequestService_CreateRequestInvalidCoordinates(t *testing.T) {
	svc, bus, _ := newRequestService(t)

	_, err := svc.CreateRequest(context.Background(), "lamp out", reporter, CreateOptions{
		Coordinates: &model.Coordinates{Lat: 95, Lng: 0},
	})
	assert.ErrorIs(t, err, model.ErrInvalidCoordinates)
	assert.Len(t, svc.ListRequests(Filter{}), 5)
	assert.Empty(t, bus.types())
}

func TestRequestService_ProtocolsAreDistinct(t *testing.T) {
	svc, _, clock := newRequestService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		req, err := svc.CreateRequest(ctx, "lamp out", reporter, CreateOptions{})
		require.NoError(t, err)
		assert.Regexp(t, protocolPattern, req.Protocol)
		assert.False(t, seen[req.Protocol], req.Protocol)
		seen[req.Protocol] = true
		clock.advance(time.Minute)
	}
}

func TestRequestService_ConcurrentCreate(t *testing.T) {
	svc, _, _ := newRequestService(t)
	ctx := context.Background()

	const n = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		protocols = map[string]bool{}
		ids       = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := svc.CreateRequest(ctx, "lamp out", reporter, CreateOptions{})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			protocols[req.Protocol] = true
			ids[req.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, protocols, n)
	assert.Len(t, ids, n)
}

func TestRequestService_SkipsProtocolsAlreadyStored(t *testing.T) {
	svc, _, clock := newRequestService(t)
	clock.t = time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC)
	// a fresh counter would hand out 0001 again without Init
	svc.seq = sequence.NewMemoryCounter()

	req, err := svc.CreateRequest(context.Background(), "lamp out", reporter, CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "2024-0006-LP", req.Protocol)
}

func TestRequestService_DamagedPoleLifecycle(t *testing.T) {
	svc, bus, clock := newRequestService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "damaged pole", reporter, CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityCritical, req.Priority)
	assert.Equal(t, model.EventReceived, req.Timeline[0].Kind)

	clock.advance(time.Hour)
	req, err = svc.Dispatch(ctx, req.ID, "Equipe Norte", "24h")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProgress, req.Status)
	assert.Len(t, req.Timeline, 2)
	assert.Equal(t, model.EventDispatched, req.Timeline[1].Kind)
	require.NotNil(t, req.AssignedTeam)
	assert.Equal(t, "Equipe Norte", *req.AssignedTeam)
	require.NotNil(t, req.EstimatedTime)
	assert.Equal(t, "24h", *req.EstimatedTime)

	clock.advance(time.Hour)
	req, err = svc.Complete(ctx, req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, req.Status)
	assert.Len(t, req.Timeline, 3)
	assert.Equal(t, model.EventCompleted, req.Timeline[2].Kind)

	_, err = svc.Dispatch(ctx, req.ID, "Equipe Sul", "1h")
	assert.ErrorIs(t, err, model.ErrIllegalTransition)
	_, err = svc.Complete(ctx, req.ID, "")
	assert.ErrorIs(t, err, model.ErrIllegalTransition)

	var ite *model.IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, model.StatusDone, ite.Current)
	assert.Equal(t, model.StatusDone, ite.Attempted)

	final, err := svc.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Len(t, final.Timeline, 3)

	assert.Equal(t, []string{
		pubsub.TypeRequestCreated,
		pubsub.TypeRequestDispatched,
		pubsub.TypeRequestCompleted,
	}, bus.types())
}

type action struct {
	name   string
	target model.Status
	run    func(svc *RequestService, id int64) error
}

var actions = []action{
	{"dispatch", model.StatusProgress, func(svc *RequestService, id int64) error {
		_, err := svc.Dispatch(context.Background(), id, "Equipe", "1h")
		return err
	}},
	{"complete", model.StatusDone, func(svc *RequestService, id int64) error {
		_, err := svc.Complete(context.Background(), id, "")
		return err
	}},
	{"cancel", model.StatusCancelled, func(svc *RequestService, id int64) error {
		_, err := svc.Cancel(context.Background(), admin, id, "")
		return err
	}},
}

// requestIn creates a request and walks it to status
func requestIn(t *testing.T, svc *RequestService, status model.Status) int64 {
	ctx := context.Background()
	req, err := svc.CreateRequest(ctx, "lamp out", reporter, CreateOptions{})
	require.NoError(t, err)
	switch status {
	case model.StatusProgress:
		_, err = svc.Dispatch(ctx, req.ID, "Equipe", "1h")
	case model.StatusDone:
		_, err = svc.Dispatch(ctx, req.ID, "Equipe", "1h")
		require.NoError(t, err)
		_, err = svc.Complete(ctx, req.ID, "")
	case model.StatusCancelled:
		_, err = svc.Cancel(ctx, admin, req.ID, "")
	}
	require.NoError(t, err)
	return req.ID
}

func TestRequestService_TransitionTableClosure(t *testing.T) {
	allowed := map[model.Status]map[string]bool{
		model.StatusPending:  {"dispatch": true, "cancel": true},
		model.StatusProgress: {"complete": true, "cancel": true},
	}
	statuses := []model.Status{model.StatusPending, model.StatusProgress, model.StatusDone, model.StatusCancelled}

	for _, status := range statuses {
		for _, a := range actions {
			t.Run(string(status)+"/"+a.name, func(t *testing.T) {
				svc, _, _ := newRequestService(t)
				id := requestIn(t, svc, status)
				before, err := svc.GetRequest(id)
				require.NoError(t, err)

				err = a.run(svc, id)
				after, _ := svc.GetRequest(id)

				if allowed[status][a.name] {
					require.NoError(t, err)
					assert.Equal(t, a.target, after.Status)
					assert.Len(t, after.Timeline, len(before.Timeline)+1)
					return
				}
				assert.ErrorIs(t, err, model.ErrIllegalTransition)
				assert.Equal(t, before, after)
			})
		}
	}
}

func TestRequestService_CancelRequiresAdmin(t *testing.T) {
	svc, bus, _ := newRequestService(t)
	ctx := context.Background()
	id := requestIn(t, svc, model.StatusPending)
	before, _ := svc.GetRequest(id)
	published := len(bus.types())

	citizen := model.User{ID: "c", Role: model.RoleCitizen}
	_, err := svc.Cancel(ctx, citizen, id, "changed my mind")
	assert.ErrorIs(t, err, model.ErrNotAuthorized)

	after, _ := svc.GetRequest(id)
	assert.Equal(t, before, after)
	assert.Len(t, bus.types(), published)

	req, err := svc.Cancel(ctx, admin, id, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, req.Status)
	assert.Equal(t, model.EventCancelled, req.Timeline[1].Kind)
	assert.Equal(t, "duplicate", req.Timeline[1].Description)
}

func TestRequestService_RejectsOutOfOrderEvents(t *testing.T) {
	svc, _, clock := newRequestService(t)
	ctx := context.Background()
	id := requestIn(t, svc, model.StatusPending)
	before, _ := svc.GetRequest(id)

	clock.advance(-time.Minute)
	_, err := svc.Dispatch(ctx, id, "Equipe", "1h")
	assert.ErrorIs(t, err, model.ErrOutOfOrderEvent)

	var ooe *model.OutOfOrderEventError
	require.ErrorAs(t, err, &ooe)
	assert.Equal(t, id, ooe.RequestID)

	after, _ := svc.GetRequest(id)
	assert.Equal(t, before, after)

	// equal timestamps are accepted
	clock.advance(time.Minute)
	_, err = svc.Dispatch(ctx, id, "Equipe", "1h")
	assert.NoError(t, err)
}

func TestRequestService_UnknownRequest(t *testing.T) {
	svc, _, _ := newRequestService(t)

	_, err := svc.Dispatch(context.Background(), 999, "Equipe", "1h")
	assert.ErrorIs(t, err, model.ErrRequestNotFound)
	_, err = svc.GetRequest(999)
	assert.ErrorIs(t, err, model.ErrRequestNotFound)
}

func TestRequestService_ListAndStats(t *testing.T) {
	svc, _, _ := newRequestService(t)

	st := svc.Stats()
	assert.Equal(t, Stats{Total: 5, Pending: 2, Progress: 1, Done: 1, Cancelled: 1, Critical: 1}, st)

	pending := svc.ListRequests(Filter{Status: model.StatusPending})
	require.Len(t, pending, 2)
	assert.Equal(t, "2024-0001-LP", pending[0].Protocol)
	assert.Equal(t, "2024-0005-LP", pending[1].Protocol)

	mine := svc.ListRequests(Filter{ReporterEmail: "MARIA@email.com"})
	assert.Len(t, mine, 2)

	critical := svc.ListRequests(Filter{Priority: model.PriorityCritical})
	require.Len(t, critical, 1)
	assert.Equal(t, "damaged pole", critical[0].Type)
}

func TestProtocolSequence(t *testing.T) {
	n, ok := ProtocolSequence("2024-0042-LP")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	n, ok = ProtocolSequence(FormatProtocol(2025, 12345))
	assert.True(t, ok)
	assert.Equal(t, int64(12345), n)

	for _, bad := range []string{"", "2024-0042", "2024-abcd-LP", "2024-0042-XX"} {
		_, ok := ProtocolSequence(bad)
		assert.False(t, ok, bad)
	}
}

func TestRequestService_CreateFromMapClick(t *testing.T) {
	svc, _, _ := newRequestService(t)
	ctx := context.Background()

	clicked := model.Coordinates{Lat: -5.3612, Lng: -49.1121}
	r, err := svc.CreateRequest(ctx, "lamp out", reporter, OptionsAt(clicked))
	require.NoError(t, err)
	assert.Equal(t, clicked, r.Coordinates)
	assert.Equal(t, DefaultAddress, r.Address)

	_, err = svc.CreateRequest(ctx, "lamp out", reporter, OptionsAt(model.Coordinates{Lat: 91}))
	assert.ErrorIs(t, err, model.ErrInvalidCoordinates)
}
