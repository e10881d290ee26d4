package dialogue

import (
	"context"
	"time"
)

// MemoryQueue is a queueClient backed by a buffered channel of turn payloads.
// Payloads cross goroutines in-process, so nothing is encoded and there are
// no receipt handles to acknowledge.
type MemoryQueue struct {
	ch chan turnPayload
}

// NewMemoryQueue creates a MemoryQueue with the provided buffer capacity.
func NewMemoryQueue(buffer int) *MemoryQueue {
	if buffer <= 0 {
		buffer = 128
	}
	return &MemoryQueue{
		ch: make(chan turnPayload, buffer),
	}
}

// Send enqueues a turn or blocks until ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, payload turnPayload) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case q.ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a turn is available, ctx is done, or waitSeconds
// elapses. Once one turn arrives it drains up to maxTurns without blocking.
func (q *MemoryQueue) Receive(ctx context.Context, maxTurns int, waitSeconds int) ([]queuedTurn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if maxTurns <= 0 {
		maxTurns = 1
	}

	var timeout <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, nil
	case payload := <-q.ch:
		turns := make([]queuedTurn, 0, maxTurns)
		turns = append(turns, queuedTurn{Payload: payload})
		for len(turns) < maxTurns {
			select {
			case next := <-q.ch:
				turns = append(turns, queuedTurn{Payload: next})
			default:
				return turns, nil
			}
		}
		return turns, nil
	}
}

// Delete is a no-op; channel receives already consume the turn.
func (q *MemoryQueue) Delete(_ context.Context, _ string) error {
	return nil
}
