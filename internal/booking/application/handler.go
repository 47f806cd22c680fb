package application

import (
	"context"

	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-ticket-booking/pkg/domain"
)

type bookSeatHandler[E any] struct {
	service *BookingService[E]
	logger  pkgApp.AppLogger
}

func (h *bookSeatHandler[E]) Handle(ctx context.Context, command pkgDomain.Command[BookSeatData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled before booking", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	return h.service.Book(ctx, data.EntityID, data.User, data.Name, data.Source, data.Destination)
}

func NewBookSeatHandler[E any](service *BookingService[E], logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[BookSeatData], BookSeatData] {
	return &bookSeatHandler[E]{
		service: service,
		logger:  logger,
	}
}

type findBookingHandler[E any] struct {
	service *BookingService[E]
	logger  pkgApp.AppLogger
}

func (h *findBookingHandler[E]) Handle(ctx context.Context, query pkgDomain.Query[FindBookingData]) (BookingReport, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled before lookup", ctx.Err(), nil)
		return BookingReport{}, ctx.Err()
	}

	data := query.Payload()
	return h.service.FindBooking(ctx, data.EntityID, data.UserID)
}

func NewFindBookingHandler[E any](service *BookingService[E], logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindBookingData], FindBookingData, BookingReport] {
	return &findBookingHandler[E]{
		service: service,
		logger:  logger,
	}
}

// bookingAuditHandler writes every booking event to the application log.
type bookingAuditHandler struct {
	logger pkgApp.AppLogger
}

func (h *bookingAuditHandler) Handle(ctx context.Context, event Event) error {
	payload := event.Payload()
	pkgApp.LogInfo(ctx, h.logger, "booking event received", map[string]interface{}{
		"event_name": event.EventName(),
		"kind":       payload.Kind,
		"entity_id":  payload.EntityID,
		"user_id":    payload.UserID,
	})
	return nil
}

func NewBookingAuditHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[Event, BookingEvent] {
	return &bookingAuditHandler{logger: logger}
}
