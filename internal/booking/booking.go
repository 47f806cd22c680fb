package booking

import (
	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/application"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/infrastructure"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-ticket-booking/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure"
)

// BookingSlice wires one entity kind end to end: service, buses and HTTP routes.
type BookingSlice[E any] struct {
	service     *application.BookingService[E]
	commandBus  infrastructure.BookSeatBus
	queryBus    infrastructure.FindBookingBus
	httpHandler *infrastructure.BookingHTTPHandler
}

// NewBookingSlice builds the slice for kind. eventBus may be nil.
func NewBookingSlice[E any](
	kind domain.Kind[E],
	store domain.Store[E],
	eventBus application.EventBus,
	logger pkgApp.AppLogger,
	opts ...application.ServiceOption,
) *BookingSlice[E] {
	service := application.NewBookingService(kind, store, eventBus, logger, opts...)

	commandBus := pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.BookSeatData], application.BookSeatData](logger)
	queryBus := pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindBookingData], application.FindBookingData, application.BookingReport](logger)

	commandBus.RegisterHandler(application.BookSeatCommand, application.NewBookSeatHandler(service, logger))
	queryBus.RegisterHandler(application.FindBookingQuery, application.NewFindBookingHandler(service, logger))

	return &BookingSlice[E]{
		service:     service,
		commandBus:  commandBus,
		queryBus:    queryBus,
		httpHandler: infrastructure.NewBookingHTTPHandler(kind.Name(), commandBus, queryBus, service, logger),
	}
}

// RegisterAuditHandler subscribes the audit log to both booking events on bus.
func RegisterAuditHandler(bus application.EventBus, logger pkgApp.AppLogger) {
	handler := application.NewBookingAuditHandler(logger)
	bus.RegisterHandler(application.BookingCreatedEvent, handler)
	bus.RegisterHandler(application.BookingCancelledEvent, handler)
}

func (s *BookingSlice[E]) Service() *application.BookingService[E] {
	return s.service
}

func (s *BookingSlice[E]) CommandBus() infrastructure.BookSeatBus {
	return s.commandBus
}

func (s *BookingSlice[E]) QueryBus() infrastructure.FindBookingBus {
	return s.queryBus
}

func (s *BookingSlice[E]) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
