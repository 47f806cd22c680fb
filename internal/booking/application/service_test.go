package application_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/application"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/infrastructure"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure"
)

var (
	alice = domain.User{UserID: "U1", Name: "Alice", AadharCard: "1234"}
	bob   = domain.User{UserID: "U2", Name: "Bob", AadharCard: "5678"}
	carol = domain.User{UserID: "U3", Name: "Carol", AadharCard: "9012"}

	fixedNow = time.Unix(1700000000, 0)
)

func fixedClock() time.Time { return fixedNow }

func train(id string, seats ...[]domain.User) domain.Train {
	return domain.Train{
		TrainID: id,
		Trip: domain.Trip{
			Name:        "Express",
			Source:      "A",
			Destination: "B",
			Time:        fixedNow.Unix(),
			Seats:       seats,
		},
	}
}

func newTrainService(seed ...domain.Train) (*application.BookingService[domain.Train], *infrastructure.InMemoryStore[domain.Train]) {
	store := infrastructure.NewInMemoryStore[domain.Train](domain.TrainKind{}, pkgApp.NopLogger{}, seed...)
	service := application.NewBookingService[domain.Train](domain.TrainKind{}, store, nil, pkgApp.NopLogger{},
		application.WithClock(fixedClock))
	return service, store
}

// recordingHandler collects every event it sees.
type recordingHandler struct {
	mu     sync.Mutex
	events []application.Event
}

func (h *recordingHandler) Handle(_ context.Context, event application.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) snapshot() []application.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]application.Event(nil), h.events...)
}

type failingHandler struct{}

func (failingHandler) Handle(context.Context, application.Event) error {
	return errors.New("broker down")
}

// brokenStore fails every write.
type brokenStore struct {
	records []domain.Train
}

func (s *brokenStore) Load(context.Context) ([]domain.Train, error) {
	return s.records, nil
}

func (s *brokenStore) SaveAll(context.Context, []domain.Train) error {
	return fmt.Errorf("%w: disk full", domain.ErrStoreIO)
}

func (s *brokenStore) Append(context.Context, domain.Train) error {
	return fmt.Errorf("%w: disk full", domain.ErrStoreIO)
}

func (s *brokenStore) Update(_ context.Context, fn domain.UpdateFunc[domain.Train]) error {
	_, changed, err := fn(s.records)
	if err != nil || !changed {
		return err
	}
	return fmt.Errorf("%w: disk full", domain.ErrStoreIO)
}

func TestBookAppendsOneRecordPerCall(t *testing.T) {
	service, store := newTrainService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, service.Book(ctx, fmt.Sprintf("T%d", i), alice, "Express", "A", "B"))
	}

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, train("T0", []domain.User{alice}), records[0])
}

func TestBookSameEntityTwiceDoesNotMerge(t *testing.T) {
	service, store := newTrainService()
	ctx := context.Background()

	require.NoError(t, service.Book(ctx, "T1", alice, "Express", "A", "B"))
	require.NoError(t, service.Book(ctx, "T1", bob, "Express", "A", "B"))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, [][]domain.User{{alice}}, records[0].Seats)
	assert.Equal(t, [][]domain.User{{bob}}, records[1].Seats)
}

func TestBookPropagatesStoreFailure(t *testing.T) {
	service := application.NewBookingService[domain.Train](domain.TrainKind{}, &brokenStore{}, nil, pkgApp.NopLogger{})

	err := service.Book(context.Background(), "T1", alice, "Express", "A", "B")

	assert.ErrorIs(t, err, domain.ErrStoreIO)
}

func TestCancelBooking(t *testing.T) {
	tests := []struct {
		name      string
		seed      []domain.Train
		entityID  string
		userID    string
		outcome   application.CancelOutcome
		message   string
		wantSeats [][]domain.User
		wantWrite bool
	}{
		{
			name:      "removes one user from a shared row",
			seed:      []domain.Train{train("T1", []domain.User{alice, bob}, []domain.User{carol})},
			entityID:  "T1",
			userID:    "U2",
			outcome:   application.OutcomeCancelled,
			message:   "Cancelled booking for user U2 on train T1",
			wantSeats: [][]domain.User{{alice}, {carol}},
			wantWrite: true,
		},
		{
			name:      "prunes a row left empty",
			seed:      []domain.Train{train("T1", []domain.User{alice}, []domain.User{carol})},
			entityID:  "T1",
			userID:    "U1",
			outcome:   application.OutcomeCancelled,
			message:   "Cancelled booking for user U1 on train T1",
			wantSeats: [][]domain.User{{carol}},
			wantWrite: true,
		},
		{
			name:      "user absent leaves the store untouched",
			seed:      []domain.Train{train("T1", []domain.User{alice})},
			entityID:  "T1",
			userID:    "U9",
			outcome:   application.OutcomeUserNotFound,
			message:   "No matching booking found for user U9 on train T1",
			wantSeats: [][]domain.User{{alice}},
		},
		{
			name:      "entity absent",
			seed:      []domain.Train{train("T1", []domain.User{alice})},
			entityID:  "T404",
			userID:    "U1",
			outcome:   application.OutcomeEntityNotFound,
			message:   "Train with ID T404 not found",
			wantSeats: [][]domain.User{{alice}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTrainService(tt.seed...)
			ctx := context.Background()

			result, err := service.CancelBooking(ctx, tt.entityID, tt.userID)

			require.NoError(t, err)
			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.message, result.Message())
			if tt.wantWrite {
				assert.Equal(t, 1, store.Writes())
			} else {
				assert.Zero(t, store.Writes())
			}

			records, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSeats, records[0].Seats)
		})
	}
}

func TestCancelBookingOnlyTouchesFirstMatchingEntity(t *testing.T) {
	service, store := newTrainService(
		train("T1", []domain.User{alice}),
		train("T1", []domain.User{alice}),
	)
	ctx := context.Background()

	result, err := service.CancelBooking(ctx, "T1", "U1")
	require.NoError(t, err)
	assert.Equal(t, application.OutcomeCancelled, result.Outcome)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records[0].Seats)
	assert.Equal(t, [][]domain.User{{alice}}, records[1].Seats)
}

func TestCancelBookingRemovesEveryOccurrence(t *testing.T) {
	service, _ := newTrainService(train("T1", []domain.User{alice, bob, alice}, []domain.User{alice}))

	result, err := service.CancelBooking(context.Background(), "T1", "U1")

	require.NoError(t, err)
	assert.Equal(t, 3, result.Removed)
}

func TestCancelBookingPersistFailureIsStoreIO(t *testing.T) {
	store := &brokenStore{records: []domain.Train{train("T1", []domain.User{alice})}}
	service := application.NewBookingService[domain.Train](domain.TrainKind{}, store, nil, pkgApp.NopLogger{})

	_, err := service.CancelBooking(context.Background(), "T1", "U1")

	assert.ErrorIs(t, err, domain.ErrStoreIO)
}

func TestFindBooking(t *testing.T) {
	service, _ := newTrainService(train("T1", []domain.User{bob, alice}, []domain.User{alice}))
	ctx := context.Background()

	report, err := service.FindBooking(ctx, "T1", "U1")
	require.NoError(t, err)
	assert.True(t, report.Found())
	assert.Equal(t, "Express", report.Name)
	assert.Equal(t, []domain.SeatPosition{
		{Row: 0, Column: 1, User: alice},
		{Row: 1, Column: 0, User: alice},
	}, report.Seats)

	report, err = service.FindBooking(ctx, "T1", "U9")
	require.NoError(t, err)
	assert.True(t, report.EntityFound)
	assert.False(t, report.Found())

	report, err = service.FindBooking(ctx, "T2", "U1")
	require.NoError(t, err)
	assert.False(t, report.EntityFound)
}

func TestPrintBooking(t *testing.T) {
	service, _ := newTrainService(train("T1", []domain.User{alice}))
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, service.PrintBooking(ctx, &out, "T1", "U1"))
	assert.Equal(t, "Train ID: T1\n"+
		"Name: Express\n"+
		"Source: A  Destination: B\n"+
		"Time: 1700000000\n"+
		"Booked seat - row: 0 col: 0 | User ID: U1 | Name: Alice\n", out.String())

	out.Reset()
	require.NoError(t, service.PrintBooking(ctx, &out, "T1", "U9"))
	assert.Contains(t, out.String(), "No booking found for user U9 on train T1\n")

	out.Reset()
	require.NoError(t, service.PrintBooking(ctx, &out, "T2", "U1"))
	assert.Equal(t, "Train with ID T2 not found\n", out.String())
}

func TestVehicleServiceUsesVehicleMessages(t *testing.T) {
	store := infrastructure.NewInMemoryStore[domain.Vehicle](domain.VehicleKind{}, pkgApp.NopLogger{})
	service := application.NewBookingService[domain.Vehicle](domain.VehicleKind{}, store, nil, pkgApp.NopLogger{})
	ctx := context.Background()

	require.NoError(t, service.Book(ctx, "V1", alice, "Van", "X", "Y"))

	result, err := service.CancelBooking(ctx, "V1", "U1")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled booking for user U1 on vehicle V1", result.Message())

	result, err = service.CancelBooking(ctx, "V2", "U1")
	require.NoError(t, err)
	assert.Equal(t, "Vehicle with ID V2 not found", result.Message())
}

func TestBookAndCancelPublishEvents(t *testing.T) {
	bus := pkgInfra.NewSimpleEventBus[application.Event, application.BookingEvent](pkgApp.NopLogger{})
	recorder := &recordingHandler{}
	bus.RegisterHandler(application.BookingCreatedEvent, recorder)
	bus.RegisterHandler(application.BookingCancelledEvent, recorder)

	store := infrastructure.NewInMemoryStore[domain.Train](domain.TrainKind{}, pkgApp.NopLogger{})
	service := application.NewBookingService[domain.Train](domain.TrainKind{}, store, bus, pkgApp.NopLogger{},
		application.WithClock(fixedClock))
	ctx := context.Background()

	require.NoError(t, service.Book(ctx, "T1", alice, "Express", "A", "B"))
	_, err := service.CancelBooking(ctx, "T1", "U9")
	require.NoError(t, err)
	_, err = service.CancelBooking(ctx, "T1", "U1")
	require.NoError(t, err)

	events := recorder.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, application.BookingCreatedEvent, events[0].EventName())
	assert.Equal(t, application.BookingCancelledEvent, events[1].EventName())
	assert.Equal(t, application.BookingEvent{
		Kind:     "train",
		EntityID: "T1",
		UserID:   "U1",
		Time:     fixedNow.Unix(),
	}, events[1].Payload())
}

func TestPublishFailureDoesNotFailBooking(t *testing.T) {
	bus := pkgInfra.NewSimpleEventBus[application.Event, application.BookingEvent](pkgApp.NopLogger{})
	bus.RegisterHandler(application.BookingCreatedEvent, failingHandler{})

	store := infrastructure.NewInMemoryStore[domain.Train](domain.TrainKind{}, pkgApp.NopLogger{})
	service := application.NewBookingService[domain.Train](domain.TrainKind{}, store, bus, pkgApp.NopLogger{})

	require.NoError(t, service.Book(context.Background(), "T1", alice, "Express", "A", "B"))
	assert.Equal(t, 1, store.Writes())
}

func TestBookThenCancelScenarioOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trains.json")
	store, err := infrastructure.NewFileStore[domain.Train](path, domain.TrainKind{}, pkgApp.NopLogger{})
	require.NoError(t, err)
	service := application.NewBookingService[domain.Train](domain.TrainKind{}, store, nil, pkgApp.NopLogger{},
		application.WithClock(fixedClock))
	ctx := context.Background()

	require.NoError(t, service.Book(ctx, "T100", alice, "Express", "A", "B"))
	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, [][]domain.User{{alice}}, records[0].Seats)

	result, err := service.CancelBooking(ctx, "T100", "U1")
	require.NoError(t, err)
	assert.Equal(t, application.OutcomeCancelled, result.Outcome)

	records, err = store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Seats)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"seats": []`)

	result, err = service.CancelBooking(ctx, "T100", "U1")
	require.NoError(t, err)
	assert.Equal(t, application.OutcomeUserNotFound, result.Outcome)
	assert.Equal(t, "No matching booking found for user U1 on train T100", result.Message())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, after)
}
