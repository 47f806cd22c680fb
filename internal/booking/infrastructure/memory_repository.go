package infrastructure

import (
	"context"
	"sync"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
)

// InMemoryStore is an ephemeral Store. Records are deep copied in and out so
// callers never share seat grids with the store.
type InMemoryStore[E any] struct {
	mu     sync.RWMutex
	data   []E
	kind   domain.Kind[E]
	logger pkgApp.AppLogger
	writes int
}

func NewInMemoryStore[E any](kind domain.Kind[E], logger pkgApp.AppLogger, seed ...E) *InMemoryStore[E] {
	store := &InMemoryStore[E]{kind: kind, logger: logger}
	store.data = store.cloneAll(seed)
	return store
}

func (r *InMemoryStore[E]) Load(ctx context.Context) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cloneAll(r.data), nil
}

func (r *InMemoryStore[E]) SaveAll(ctx context.Context, records []E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = r.cloneAll(records)
	r.writes++
	pkgApp.LogDebug(ctx, r.logger, "records saved", map[string]interface{}{
		"kind":    r.kind.Name(),
		"records": len(records),
	})
	return nil
}

func (r *InMemoryStore[E]) Append(ctx context.Context, record E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, r.clone(record))
	r.writes++
	return nil
}

func (r *InMemoryStore[E]) Update(ctx context.Context, fn domain.UpdateFunc[E]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	updated, changed, err := fn(r.cloneAll(r.data))
	if err != nil || !changed {
		return err
	}
	r.data = r.cloneAll(updated)
	r.writes++
	return nil
}

// Writes reports how many times the collection was persisted.
func (r *InMemoryStore[E]) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

func (r *InMemoryStore[E]) clone(record E) E {
	id, trip := r.kind.Split(record)
	trip.Seats = domain.CloneSeats(trip.Seats)
	return r.kind.New(id, trip)
}

func (r *InMemoryStore[E]) cloneAll(records []E) []E {
	out := make([]E, 0, len(records))
	for _, record := range records {
		out = append(out, r.clone(record))
	}
	return out
}
