package application

import (
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-ticket-booking/pkg/domain"
)

const (
	BookingCreatedEvent   = "BookingCreated"
	BookingCancelledEvent = "BookingCancelled"
)

// BookingEvent is the payload of every booking event.
type BookingEvent struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entityId"`
	UserID   string `json:"userId"`
	Time     int64  `json:"time"`
}

type bookingEvent struct {
	name string
	data BookingEvent
}

func (e bookingEvent) EventName() string {
	return e.name
}

func (e bookingEvent) Payload() BookingEvent {
	return e.data
}

func NewBookingCreatedEvent(data BookingEvent) Event {
	return bookingEvent{name: BookingCreatedEvent, data: data}
}

func NewBookingCancelledEvent(data BookingEvent) Event {
	return bookingEvent{name: BookingCancelledEvent, data: data}
}

type (
	// Event is any booking event.
	Event = pkgDomain.Event[BookingEvent]
	// EventBus is the bus booking events travel on.
	EventBus = pkgApp.EventBus[Event, BookingEvent]
)
