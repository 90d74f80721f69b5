// Package delivery sends report batches to the report service without blocking the control loop.
package delivery

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
)

const postRetryInterval = 20 * time.Millisecond

// Callback receives the outcome of one delivery attempt.
type Callback func(response *messages.ReportResponse)

// Channel delivers report batches to the report service.
type Channel interface {
	// Send starts a delivery attempt and returns immediately. The callback is
	// posted to the control loop once the attempt completes or fails.
	Send(batch []*game.Result, callback Callback)
	// Pending returns the number of attempts that have not completed yet.
	Pending() int
	// Wait blocks until every attempt has completed or the context is done.
	Wait(ctx context.Context) error
}

// Poster runs functions on the control loop.
type Poster interface {
	Post(fn func()) error
}

// sender performs one blocking delivery attempt.
type sender func(ctx context.Context, batch *messages.Batch) *messages.ReportResponse

// dispatcher runs delivery attempts in the background and hands their outcome
// to the control loop. It is shared by every Channel implementation.
type dispatcher struct {
	poster  Poster
	clock   clock.Clock
	timeout time.Duration
	send    sender
	logger  *log.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending int
}

func newDispatcher(poster Poster, clk clock.Clock, timeout time.Duration, send sender, logger *log.Logger) *dispatcher {
	if clk == nil {
		clk = clock.New()
	}
	return &dispatcher{
		poster:  poster,
		clock:   clk,
		timeout: timeout,
		send:    send,
		logger:  logger,
	}
}

func (d *dispatcher) Send(results []*game.Result, callback Callback) {
	batch := &messages.Batch{
		SentAt:  d.clock.Now(),
		Results: append([]*game.Result(nil), results...),
	}

	d.mu.Lock()
	d.pending++
	d.mu.Unlock()
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		ctx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		response := d.send(ctx, batch)
		if !response.Completed {
			d.logger.Warn("Delivery of %d results failed: %v", len(batch.Results), response.Errors)
		} else {
			d.logger.Debug("Delivered %d results", len(batch.Results))
		}

		done := func() {
			d.mu.Lock()
			d.pending--
			d.mu.Unlock()
			if callback != nil {
				callback(response)
			}
		}
		d.post(done)
	}()
}

// post hands fn to the control loop, retrying while the loop's task queue is full.
func (d *dispatcher) post(fn func()) {
	for attempt := 1; ; attempt++ {
		err := d.poster.Post(fn)
		if err == nil {
			return
		}
		if attempt == 1 {
			d.logger.Warn("Failed to post delivery callback, retrying: %v", err)
		}
		time.Sleep(postRetryInterval)
	}
}

// Pending counts attempts whose callback has not run on the control loop yet.
func (d *dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Wait blocks until every attempt has finished its network round trip.
// Callbacks may still be queued on the control loop afterwards.
func (d *dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func failed(errs ...reports.Error) *messages.ReportResponse {
	return &messages.ReportResponse{
		Completed: false,
		Errors:    errs,
	}
}
