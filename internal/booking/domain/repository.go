package domain

import "context"

// UpdateFunc receives the current collection and returns the collection to
// persist and whether anything changed. Nothing is written when changed is false.
type UpdateFunc[E any] func(records []E) (updated []E, changed bool, err error)

// Store persists every record of one entity kind as a single collection.
type Store[E any] interface {
	// Load returns the whole collection. A store that does not exist yet is empty.
	Load(ctx context.Context) ([]E, error)
	// SaveAll replaces the whole collection.
	SaveAll(ctx context.Context, records []E) error
	// Append adds one record to the end of the collection.
	Append(ctx context.Context, record E) error
	// Update runs a read-modify-write cycle.
	Update(ctx context.Context, fn UpdateFunc[E]) error
}
