package domain

// User is a passenger as seated on a booking. The aadharCard key is kept for
// compatibility with existing booking files.
type User struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	AadharCard string `json:"aadharCard"`
}
