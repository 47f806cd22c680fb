package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	alice = User{UserID: "A", Name: "Alice", AadharCard: "1111"}
	bob   = User{UserID: "B", Name: "Bob", AadharCard: "2222"}
	carol = User{UserID: "C", Name: "Carol", AadharCard: "3333"}
)

func TestRemoveUser(t *testing.T) {
	tests := []struct {
		name        string
		seats       [][]User
		userID      string
		wantSeats   [][]User
		wantRemoved int
	}{
		{
			name:        "removes one occupant from a shared row",
			seats:       [][]User{{alice, bob}, {carol}},
			userID:      "B",
			wantSeats:   [][]User{{alice}, {carol}},
			wantRemoved: 1,
		},
		{
			name:        "prunes a row left empty",
			seats:       [][]User{{alice}, {carol}},
			userID:      "A",
			wantSeats:   [][]User{{carol}},
			wantRemoved: 1,
		},
		{
			name:        "removes every occurrence",
			seats:       [][]User{{alice, bob}, {bob}, {carol, bob}},
			userID:      "B",
			wantSeats:   [][]User{{alice}, {carol}},
			wantRemoved: 3,
		},
		{
			name:        "absent user leaves grid untouched",
			seats:       [][]User{{alice}},
			userID:      "Z",
			wantSeats:   [][]User{{alice}},
			wantRemoved: 0,
		},
		{
			name:        "last occupant leaves an empty grid",
			seats:       [][]User{{alice}},
			userID:      "A",
			wantSeats:   [][]User{},
			wantRemoved: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := RemoveUser(tt.seats, tt.userID)
			assert.Equal(t, tt.wantSeats, got)
			assert.Equal(t, tt.wantRemoved, removed)
			assert.NotNil(t, got)
		})
	}
}

func TestRemoveUserDoesNotMutateInput(t *testing.T) {
	seats := [][]User{{alice, bob}}

	_, _ = RemoveUser(seats, "A")

	assert.Equal(t, [][]User{{alice, bob}}, seats)
}

func TestFindUser(t *testing.T) {
	seats := [][]User{{alice, bob}, {carol, bob}}

	assert.Equal(t, []SeatPosition{
		{Row: 0, Column: 1, User: bob},
		{Row: 1, Column: 1, User: bob},
	}, FindUser(seats, "B"))
	assert.Empty(t, FindUser(seats, "Z"))
}
