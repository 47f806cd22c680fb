package domain

// SeatPosition locates one occupant in a seats grid.
type SeatPosition struct {
	Row    int  `json:"row"`
	Column int  `json:"column"`
	User   User `json:"user"`
}

// CloneSeats deep copies a seats grid. The result is never nil.
func CloneSeats(seats [][]User) [][]User {
	out := make([][]User, 0, len(seats))
	for _, row := range seats {
		out = append(out, append(make([]User, 0, len(row)), row...))
	}
	return out
}

// RemoveUser drops every occurrence of userID and prunes rows left empty.
// The input grid is not modified. The returned grid is never nil.
func RemoveUser(seats [][]User, userID string) ([][]User, int) {
	removed := 0
	out := make([][]User, 0, len(seats))
	for _, row := range seats {
		kept := make([]User, 0, len(row))
		for _, user := range row {
			if user.UserID == userID {
				removed++
				continue
			}
			kept = append(kept, user)
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out, removed
}

// FindUser returns every cell occupied by userID in row-major order.
func FindUser(seats [][]User, userID string) []SeatPosition {
	var positions []SeatPosition
	for r, row := range seats {
		for c, user := range row {
			if user.UserID == userID {
				positions = append(positions, SeatPosition{Row: r, Column: c, User: user})
			}
		}
	}
	return positions
}
