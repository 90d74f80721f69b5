// Package reports keeps finished session results until the report service acknowledges them.
package reports

import (
	"github.com/cbodonnell/puzzleflow/pkg/game"
)

// Queue is the ordered batch of results awaiting acknowledgment.
// Results are only ever appended; the batch is dropped as a whole.
// Queue is not safe for concurrent use.
type Queue struct {
	results []*game.Result
}

func NewQueue() *Queue {
	return &Queue{}
}

// Add appends a result and returns the whole pending batch, oldest first.
func (q *Queue) Add(result *game.Result) []*game.Result {
	q.results = append(q.results, result)
	return q.Snapshot()
}

// Snapshot returns a copy of the pending batch.
func (q *Queue) Snapshot() []*game.Result {
	return append([]*game.Result(nil), q.results...)
}

func (q *Queue) Clear() {
	q.results = nil
}

func (q *Queue) Len() int {
	return len(q.results)
}

// Resolve applies a delivery outcome to the batch. A completed delivery or a
// failure without retryable errors drops the batch. It reports whether the
// batch was dropped.
func (q *Queue) Resolve(completed bool, errs []Error) bool {
	if completed || !AnyRetryable(errs) {
		q.Clear()
		return true
	}
	return false
}
