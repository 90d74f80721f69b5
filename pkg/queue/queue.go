package queue

// Queue represents a basic FIFO queue.
// Implementations must be safe for use by multiple goroutines.
type Queue[T any] interface {
	Enqueue(item T) error
	ReadAllMessages() ([]T, error)
}
