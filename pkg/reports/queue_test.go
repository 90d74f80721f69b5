package reports

import (
	"testing"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueAddReturnsWholeBatch(t *testing.T) {
	q := NewQueue()
	first := &game.Result{ID: "1"}
	second := &game.Result{ID: "2"}

	assert.Equal(t, []*game.Result{first}, q.Add(first))
	batch := q.Add(second)
	assert.Equal(t, []*game.Result{first, second}, batch)

	// the returned batch does not alias the queue
	batch[0] = nil
	assert.Equal(t, first, q.Snapshot()[0])
	assert.Equal(t, 2, q.Len())
}

func TestQueueResolve(t *testing.T) {
	tests := []struct {
		name        string
		completed   bool
		errs        []Error
		wantDropped bool
	}{
		{name: "completed", completed: true, wantDropped: true},
		{name: "no internet", errs: []Error{{Code: CodeNoInternet}}},
		{name: "invalid token", errs: []Error{{Code: CodeInvalidToken}}},
		{name: "not initialized", errs: []Error{{Code: CodeNotInitialized}}},
		{name: "server fault", errs: []Error{{Code: 503}}},
		{name: "client rejected", errs: []Error{{Code: CodeBadRequest}}, wantDropped: true},
		{name: "mixed", errs: []Error{{Code: 409}, {Code: 500}}},
		{name: "failure without errors", wantDropped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.Add(&game.Result{ID: "1"})

			assert.Equal(t, tt.wantDropped, q.Resolve(tt.completed, tt.errs))
			if tt.wantDropped {
				assert.Zero(t, q.Len())
			} else {
				assert.Equal(t, 1, q.Len())
			}
		})
	}
}

func TestStatusTwoStages(t *testing.T) {
	status := NewStatus(&game.Result{ID: "1"})

	_, ok := status.Sent()
	assert.False(t, ok)

	status.MarkSent(types.Inventory{ExtraHintCount: 2})
	status.MarkSent(types.Inventory{ExtraHintCount: 9})
	sent, ok := status.Sent()
	require.True(t, ok)
	assert.Equal(t, 2, sent.Inventory.ExtraHintCount)
	assert.Empty(t, sent.Achievements)

	select {
	case <-status.Done():
		t.Fatal("status completed before delivery")
	default:
	}

	var got []Outcome
	status.OnComplete(func(o Outcome) { got = append(got, o) })

	status.Complete(Outcome{Achievements: []string{"first_win"}})
	status.Complete(Outcome{Achievements: []string{"ignored"}})

	<-status.Done()
	outcome, ok := status.Outcome()
	require.True(t, ok)
	assert.Equal(t, []string{"first_win"}, outcome.Achievements)
	assert.Nil(t, outcome.Inventory)
	require.Len(t, got, 1)

	// late registrations run immediately
	status.OnComplete(func(o Outcome) { got = append(got, o) })
	assert.Len(t, got, 2)
}
