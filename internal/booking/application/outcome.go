package application

import (
	"fmt"
	"io"
	"strings"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
)

type CancelOutcome int

const (
	OutcomeEntityNotFound CancelOutcome = iota
	OutcomeUserNotFound
	OutcomeCancelled
)

func (o CancelOutcome) String() string {
	switch o {
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeUserNotFound:
		return "user_not_found"
	default:
		return "entity_not_found"
	}
}

func (o CancelOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// CancelResult is the soft outcome of a cancellation.
type CancelResult struct {
	Outcome  CancelOutcome `json:"outcome"`
	Kind     string        `json:"kind"`
	EntityID string        `json:"entityId"`
	UserID   string        `json:"userId"`
	Removed  int           `json:"removed"`
}

func (r CancelResult) Message() string {
	switch r.Outcome {
	case OutcomeCancelled:
		return fmt.Sprintf("Cancelled booking for user %s on %s %s", r.UserID, r.Kind, r.EntityID)
	case OutcomeUserNotFound:
		return fmt.Sprintf("No matching booking found for user %s on %s %s", r.UserID, r.Kind, r.EntityID)
	default:
		return entityNotFoundMessage(r.Kind, r.EntityID)
	}
}

// BookingReport is what a lookup found for one user on one entity.
type BookingReport struct {
	Kind        string                `json:"kind"`
	EntityID    string                `json:"entityId"`
	EntityFound bool                  `json:"entityFound"`
	Name        string                `json:"name,omitempty"`
	Source      string                `json:"source,omitempty"`
	Destination string                `json:"destination,omitempty"`
	Time        int64                 `json:"time,omitempty"`
	UserID      string                `json:"userId"`
	Seats       []domain.SeatPosition `json:"seats"`
}

func (r BookingReport) Found() bool {
	return r.EntityFound && len(r.Seats) > 0
}

// Render writes the report in the same shape the booking desk has always printed.
func (r BookingReport) Render(w io.Writer) error {
	if !r.EntityFound {
		_, err := fmt.Fprintln(w, entityNotFoundMessage(r.Kind, r.EntityID))
		return err
	}

	title := titleCase(r.Kind)
	if _, err := fmt.Fprintf(w, "%s ID: %s\nName: %s\nSource: %s  Destination: %s\nTime: %d\n",
		title, r.EntityID, r.Name, r.Source, r.Destination, r.Time); err != nil {
		return err
	}

	if len(r.Seats) == 0 {
		_, err := fmt.Fprintf(w, "No booking found for user %s on %s %s\n", r.UserID, r.Kind, r.EntityID)
		return err
	}
	for _, seat := range r.Seats {
		if _, err := fmt.Fprintf(w, "Booked seat - row: %d col: %d | User ID: %s | Name: %s\n",
			seat.Row, seat.Column, seat.User.UserID, seat.User.Name); err != nil {
			return err
		}
	}
	return nil
}

func entityNotFoundMessage(kind, entityID string) string {
	return fmt.Sprintf("%s with ID %s not found", titleCase(kind), entityID)
}

func titleCase(kind string) string {
	if kind == "" {
		return kind
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}
