package application

import (
	pkgDomain "github.com/mateusmacedo/go-ticket-booking/pkg/domain"
)

const FindBookingQuery = "FindBooking"

type FindBookingData struct {
	EntityID string `json:"entityId"`
	UserID   string `json:"userId"`
}

type findBookingQuery struct {
	data FindBookingData
}

func (q findBookingQuery) QueryName() string {
	return FindBookingQuery
}

func (q findBookingQuery) Payload() FindBookingData {
	return q.data
}

func NewFindBookingQuery(data FindBookingData) pkgDomain.Query[FindBookingData] {
	return findBookingQuery{data: data}
}
