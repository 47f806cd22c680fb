package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/application"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-ticket-booking/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure"
)

const requestTimeout = 10 * time.Second

type (
	BookSeatBus    = pkgApp.CommandBus[pkgDomain.Command[application.BookSeatData], application.BookSeatData]
	FindBookingBus = pkgApp.QueryBus[pkgDomain.Query[application.FindBookingData], application.FindBookingData, application.BookingReport]
)

// Canceller is the part of the booking service the HTTP layer cancels through.
type Canceller interface {
	CancelBooking(ctx context.Context, entityID, userID string) (application.CancelResult, error)
}

type userRequest struct {
	UserID     string `json:"userId" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=128"`
	AadharCard string `json:"aadharCard" validate:"required,max=32"`
}

type bookSeatRequest struct {
	EntityID    string      `json:"entityId" validate:"required,max=64"`
	Name        string      `json:"name" validate:"required,max=128"`
	Source      string      `json:"source" validate:"required,max=128"`
	Destination string      `json:"destination" validate:"required,max=128"`
	User        userRequest `json:"user"`
}

type cancelResponse struct {
	Outcome application.CancelOutcome `json:"outcome"`
	Message string                    `json:"message"`
	Removed int                       `json:"removed"`
}

type BookingHTTPHandler struct {
	kind       string
	commandBus BookSeatBus
	queryBus   FindBookingBus
	canceller  Canceller
	logger     pkgApp.AppLogger
}

func NewBookingHTTPHandler(kind string, commandBus BookSeatBus, queryBus FindBookingBus, canceller Canceller, logger pkgApp.AppLogger) *BookingHTTPHandler {
	return &BookingHTTPHandler{
		kind:       kind,
		commandBus: commandBus,
		queryBus:   queryBus,
		canceller:  canceller,
		logger:     logger,
	}
}

func (h *BookingHTTPHandler) HandleBookSeat(w http.ResponseWriter, r *http.Request) {
	var req bookSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := validateRequest(req); err != nil {
		handleError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := application.BookSeatData{
		EntityID:    req.EntityID,
		Name:        req.Name,
		Source:      req.Source,
		Destination: req.Destination,
		User: domain.User{
			UserID:     req.User.UserID,
			Name:       req.User.Name,
			AadharCard: req.User.AadharCard,
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.commandBus.Dispatch(ctx, application.NewBookSeatCommand(data)); err != nil {
		h.handleFailure(ctx, w, "booking failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Seat booked", "data": data})
}

func (h *BookingHTTPHandler) HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	userID := chi.URLParam(r, "userID")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.canceller.CancelBooking(ctx, entityID, userID)
	if err != nil {
		h.handleFailure(ctx, w, "cancellation failed", err)
		return
	}

	status := http.StatusOK
	if result.Outcome != application.OutcomeCancelled {
		status = http.StatusNotFound
	}
	writeJSON(w, status, cancelResponse{
		Outcome: result.Outcome,
		Message: result.Message(),
		Removed: result.Removed,
	})
}

func (h *BookingHTTPHandler) HandleFindBooking(w http.ResponseWriter, r *http.Request) {
	query := application.NewFindBookingQuery(application.FindBookingData{
		EntityID: chi.URLParam(r, "entityID"),
		UserID:   chi.URLParam(r, "userID"),
	})

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.queryBus.Dispatch(ctx, query)
	if err != nil {
		h.handleFailure(ctx, w, "lookup failed", err)
		return
	}

	status := http.StatusOK
	if !report.Found() {
		status = http.StatusNotFound
	}
	writeJSON(w, status, report)
}

// RegisterRoutes mounts the handler under /<kind>s.
func (h *BookingHTTPHandler) RegisterRoutes(router chi.Router) {
	router.Route("/"+h.kind+"s", func(r chi.Router) {
		r.Post("/bookings", h.HandleBookSeat)
		r.Get("/{entityID}/bookings/{userID}", h.HandleFindBooking)
		r.Delete("/{entityID}/bookings/{userID}", h.HandleCancelBooking)
	})
}

func (h *BookingHTTPHandler) handleFailure(ctx context.Context, w http.ResponseWriter, message string, err error) {
	pkgApp.LogError(ctx, h.logger, message, err, map[string]interface{}{"kind": h.kind})

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		handleError(w, err.Error(), http.StatusGatewayTimeout)
	case errors.Is(err, domain.ErrCorruptStore), errors.Is(err, domain.ErrStoreIO):
		handleError(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		handleError(w, err.Error(), http.StatusInternalServerError)
	}
}

// RequestID tags every request with an id the loggers pick up, reusing the
// caller's X-Request-ID when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = pkgInfra.GenerateUUID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(pkgApp.WithRequestID(r.Context(), id)))
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func handleError(w http.ResponseWriter, message string, statusCode int) {
	http.Error(w, message, statusCode)
}
