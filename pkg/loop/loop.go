// Package loop runs the single control goroutine that owns the session manager.
package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/queue"
)

const DefaultTaskQueueSize = 1024

// Loop serializes work onto one goroutine. Any goroutine may Post; only the
// goroutine running Run or Drain executes tasks.
type Loop struct {
	tasks    queue.Queue[func()]
	clock    clock.Clock
	interval time.Duration
	wake     chan struct{}
}

// NewLoopOptions contains options for creating a new Loop.
type NewLoopOptions struct {
	Clock         clock.Clock
	TickInterval  time.Duration
	TaskQueueSize int
}

func New(opts NewLoopOptions) *Loop {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	size := opts.TaskQueueSize
	if size <= 0 {
		size = DefaultTaskQueueSize
	}
	interval := opts.TickInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Loop{
		tasks:    queue.NewInMemoryQueue[func()](size),
		clock:    clk,
		interval: interval,
		wake:     make(chan struct{}, 1),
	}
}

// Post schedules fn on the control goroutine.
func (l *Loop) Post(fn func()) error {
	if err := l.tasks.Enqueue(fn); err != nil {
		return fmt.Errorf("failed to post task: %v", err)
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Drain runs every task posted so far and returns how many ran.
func (l *Loop) Drain() int {
	tasks, err := l.tasks.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read posted tasks: %v", err)
		return 0
	}
	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Run drains posted tasks and then calls update with the seconds elapsed since
// the previous tick, until the context is done.
func (l *Loop) Run(ctx context.Context, update func(deltaSeconds float64)) error {
	ticker := l.clock.Ticker(l.interval)
	defer ticker.Stop()

	last := l.clock.Now()
	for {
		select {
		case <-ctx.Done():
			l.Drain()
			return nil
		case <-l.wake:
			l.Drain()
		case t := <-ticker.C:
			l.Drain()
			if update != nil {
				update(t.Sub(last).Seconds())
			}
			last = t
		}
	}
}

// RunUntil drains posted tasks until done returns true or the context ends.
func (l *Loop) RunUntil(ctx context.Context, done func() bool) error {
	for !done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.Drain()
		}
	}
	return nil
}
