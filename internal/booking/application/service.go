package application

import (
	"context"
	"io"
	"time"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
)

type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	clock func() time.Time
}

// WithClock replaces time.Now as the source of booking timestamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		o.clock = clock
	}
}

// BookingService runs the booking workflow for one entity kind on top of its store.
// Every call reads the store afresh; the service keeps no state between calls.
type BookingService[E any] struct {
	kind   domain.Kind[E]
	store  domain.Store[E]
	events EventBus
	clock  func() time.Time
	logger pkgApp.AppLogger
}

// NewBookingService wires a service. events may be nil when nobody listens.
func NewBookingService[E any](kind domain.Kind[E], store domain.Store[E], events EventBus, logger pkgApp.AppLogger, opts ...ServiceOption) *BookingService[E] {
	options := serviceOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&options)
	}

	return &BookingService[E]{
		kind:   kind,
		store:  store,
		events: events,
		clock:  options.clock,
		logger: logger,
	}
}

func (s *BookingService[E]) Kind() domain.Kind[E] {
	return s.kind
}

// Book appends a new entity record with user alone in the first row. Booking the
// same entity id twice yields two records.
func (s *BookingService[E]) Book(ctx context.Context, entityID string, user domain.User, name, source, destination string) error {
	now := s.clock().Unix()
	record := s.kind.New(entityID, domain.Trip{
		Name:        name,
		Source:      source,
		Destination: destination,
		Time:        now,
		Seats:       [][]domain.User{{user}},
	})

	fields := map[string]interface{}{
		"kind":      s.kind.Name(),
		"entity_id": entityID,
		"user_id":   user.UserID,
	}
	if err := s.store.Append(ctx, record); err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to save booking", err, fields)
		return err
	}
	pkgApp.LogInfo(ctx, s.logger, "booking saved", fields)

	s.publish(ctx, NewBookingCreatedEvent(BookingEvent{
		Kind:     s.kind.Name(),
		EntityID: entityID,
		UserID:   user.UserID,
		Time:     now,
	}))
	return nil
}

// CancelBooking removes userID from the first entity with entityID, pruning rows
// that end up empty. The store is written only when a seat was actually freed.
// The entity itself stays even when its last seat goes.
func (s *BookingService[E]) CancelBooking(ctx context.Context, entityID, userID string) (CancelResult, error) {
	var result CancelResult

	err := s.store.Update(ctx, func(records []E) ([]E, bool, error) {
		result = CancelResult{
			Outcome:  OutcomeEntityNotFound,
			Kind:     s.kind.Name(),
			EntityID: entityID,
			UserID:   userID,
		}

		for i, record := range records {
			id, trip := s.kind.Split(record)
			if id != entityID {
				continue
			}

			seats, removed := domain.RemoveUser(trip.Seats, userID)
			if removed == 0 {
				result.Outcome = OutcomeUserNotFound
				return records, false, nil
			}

			trip.Seats = seats
			records[i] = s.kind.New(id, trip)
			result.Outcome = OutcomeCancelled
			result.Removed = removed
			return records, true, nil
		}
		return records, false, nil
	})

	fields := map[string]interface{}{
		"kind":      s.kind.Name(),
		"entity_id": entityID,
		"user_id":   userID,
	}
	if err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to cancel booking", err, fields)
		return result, err
	}

	fields["outcome"] = result.Outcome.String()
	pkgApp.LogInfo(ctx, s.logger, "cancellation processed", fields)

	if result.Outcome == OutcomeCancelled {
		s.publish(ctx, NewBookingCancelledEvent(BookingEvent{
			Kind:     s.kind.Name(),
			EntityID: entityID,
			UserID:   userID,
			Time:     s.clock().Unix(),
		}))
	}
	return result, nil
}

// FindBooking looks userID up on the first entity with entityID without writing anything.
func (s *BookingService[E]) FindBooking(ctx context.Context, entityID, userID string) (BookingReport, error) {
	report := BookingReport{Kind: s.kind.Name(), EntityID: entityID, UserID: userID}

	records, err := s.store.Load(ctx)
	if err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to load bookings", err, map[string]interface{}{
			"kind":      s.kind.Name(),
			"entity_id": entityID,
		})
		return report, err
	}

	for _, record := range records {
		id, trip := s.kind.Split(record)
		if id != entityID {
			continue
		}
		report.EntityFound = true
		report.Name = trip.Name
		report.Source = trip.Source
		report.Destination = trip.Destination
		report.Time = trip.Time
		report.Seats = domain.FindUser(trip.Seats, userID)
		break
	}
	return report, nil
}

// PrintBooking renders FindBooking's report to w.
func (s *BookingService[E]) PrintBooking(ctx context.Context, w io.Writer, entityID, userID string) error {
	report, err := s.FindBooking(ctx, entityID, userID)
	if err != nil {
		return err
	}
	return report.Render(w)
}

// publish never fails the caller: the store has already been written.
func (s *BookingService[E]) publish(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to publish booking event", err, map[string]interface{}{
			"event_name": event.EventName(),
			"kind":       s.kind.Name(),
		})
	}
}
