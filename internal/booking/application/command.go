package application

import (
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	pkgDomain "github.com/mateusmacedo/go-ticket-booking/pkg/domain"
)

const BookSeatCommand = "BookSeat"

// BookSeatData carries everything needed to book one seat.
type BookSeatData struct {
	EntityID    string      `json:"entityId"`
	Name        string      `json:"name"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	User        domain.User `json:"user"`
}

type bookSeatCommand struct {
	data BookSeatData
}

func (c bookSeatCommand) CommandName() string {
	return BookSeatCommand
}

func (c bookSeatCommand) Payload() BookSeatData {
	return c.data
}

func NewBookSeatCommand(data BookSeatData) pkgDomain.Command[BookSeatData] {
	return bookSeatCommand{data: data}
}
