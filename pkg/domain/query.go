package domain

// Query represents a read request, addressed by name on a query bus.
type Query[T any] interface {
	QueryName() string
	Payload() T
}
