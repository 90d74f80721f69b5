package reports

import (
	"sync"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
)

// Outcome is what a report resolved with.
type Outcome struct {
	// Achievements newly unlocked by the report service.
	Achievements []string
	// Inventory is the inventory after the report was processed. It is nil when
	// the report service did not acknowledge the report.
	Inventory *types.Inventory
}

// Status is the handle returned for a submitted report.
//
// Sent resolves as soon as the report is handed off, with the inventory the
// player had at that time. Done resolves once the delivery attempt triggered by
// the report completes, successfully or not.
type Status struct {
	result *game.Result

	mu        sync.Mutex
	sent      *Outcome
	done      *Outcome
	doneCh    chan struct{}
	doneOnce  sync.Once
	callbacks []func(Outcome)
}

func NewStatus(result *game.Result) *Status {
	return &Status{
		result: result,
		doneCh: make(chan struct{}),
	}
}

func (s *Status) Result() *game.Result {
	return s.result
}

// MarkSent records the local acknowledgment. Only the first call has an effect.
func (s *Status) MarkSent(inventory types.Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent != nil {
		return
	}
	s.sent = &Outcome{
		Achievements: []string{},
		Inventory:    inventory.Copy(),
	}
}

// Sent returns the local acknowledgment, if any.
func (s *Status) Sent() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		return Outcome{}, false
	}
	return *s.sent, true
}

// Complete resolves the status with the delivery outcome. Only the first call has an effect.
func (s *Status) Complete(outcome Outcome) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.done = &outcome
		callbacks := s.callbacks
		s.callbacks = nil
		s.mu.Unlock()

		close(s.doneCh)
		for _, callback := range callbacks {
			callback(outcome)
		}
	})
}

// Done is closed once the delivery outcome is known.
func (s *Status) Done() <-chan struct{} {
	return s.doneCh
}

// Outcome returns the delivery outcome once Done is closed.
func (s *Status) Outcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return Outcome{}, false
	}
	return *s.done, true
}

// OnComplete registers a callback for the delivery outcome. It runs immediately
// when the outcome is already known, otherwise on the goroutine that completes the status.
func (s *Status) OnComplete(callback func(Outcome)) {
	s.mu.Lock()
	if s.done == nil {
		s.callbacks = append(s.callbacks, callback)
		s.mu.Unlock()
		return
	}
	outcome := *s.done
	s.mu.Unlock()
	callback(outcome)
}
