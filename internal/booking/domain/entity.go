package domain

import "strings"

// Trip holds everything a bookable entity carries besides its identity.
type Trip struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	// Time is the booking timestamp in unix seconds.
	Time  int64    `json:"time"`
	Seats [][]User `json:"seats"`
}

type Train struct {
	TrainID string `json:"trainId"`
	Trip
}

type Vehicle struct {
	VehicleID string `json:"vehicleId"`
	Trip
}

// Kind describes one entity variant to the generic store and service.
type Kind[E any] interface {
	// Name is the lower case label used in messages and routes, e.g. "train".
	Name() string
	// IDKey is the JSON key holding the identity field.
	IDKey() string
	New(id string, trip Trip) E
	Split(entity E) (id string, trip Trip)
}

type TrainKind struct{}

func (TrainKind) Name() string  { return "train" }
func (TrainKind) IDKey() string { return "trainId" }

func (TrainKind) New(id string, trip Trip) Train {
	return Train{TrainID: id, Trip: trip}
}

func (TrainKind) Split(t Train) (string, Trip) {
	return t.TrainID, t.Trip
}

type VehicleKind struct{}

func (VehicleKind) Name() string  { return "vehicle" }
func (VehicleKind) IDKey() string { return "vehicleId" }

func (VehicleKind) New(id string, trip Trip) Vehicle {
	return Vehicle{VehicleID: id, Trip: trip}
}

func (VehicleKind) Split(v Vehicle) (string, Trip) {
	return v.VehicleID, v.Trip
}

// Title returns the kind name with its first letter upper cased ("Train").
func Title[E any](kind Kind[E]) string {
	name := kind.Name()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// VehicleToTrain copies a vehicle record into a train record field for field.
func VehicleToTrain(v Vehicle) Train {
	trip := v.Trip
	trip.Seats = CloneSeats(v.Seats)
	return Train{TrainID: v.VehicleID, Trip: trip}
}
