package dialogue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProcessor struct {
	mu    sync.Mutex
	seen  []string
	err   error
	delay time.Duration
}

func (p *echoProcessor) HandleMessage(_ context.Context, sessionID, text string) (string, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	p.seen = append(p.seen, sessionID+":"+text)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return "echo: " + text, nil
}

func TestQueueDispatcherRoundTrip(t *testing.T) {
	proc := &echoProcessor{}
	d := NewQueueDispatcher(proc, NewMemoryQueue(16), nil, WithReceiveWaitSeconds(1))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Shutdown(shutdownCtx)
	}()

	reply, err := d.HandleMessage(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", reply)
}

func TestQueueDispatcherPropagatesProcessorError(t *testing.T) {
	proc := &echoProcessor{err: errors.New("engine down")}
	d := NewQueueDispatcher(proc, NewMemoryQueue(16), nil, WithReceiveWaitSeconds(1))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Shutdown(shutdownCtx)
	}()

	_, err := d.HandleMessage(context.Background(), "s1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine down")
}

func TestQueueDispatcherConcurrentTurns(t *testing.T) {
	proc := &echoProcessor{delay: 10 * time.Millisecond}
	d := NewQueueDispatcher(proc, NewMemoryQueue(64), nil,
		WithWorkerCount(4), WithReceiveWaitSeconds(1))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Shutdown(shutdownCtx)
	}()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply, err := d.HandleMessage(context.Background(), "s", "turn")
			assert.NoError(t, err)
			assert.Equal(t, "echo: turn", reply)
		}()
	}
	wg.Wait()

	proc.mu.Lock()
	defer proc.mu.Unlock()
	assert.Len(t, proc.seen, 20)
}

func TestQueueDispatcherShutdownRejectsPending(t *testing.T) {
	proc := &echoProcessor{}
	d := NewQueueDispatcher(proc, NewMemoryQueue(16), nil, WithReceiveWaitSeconds(1))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(shutdownCtx))

	ctx, cancelTurn := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancelTurn()
	_, err := d.HandleMessage(ctx, "s1", "too late")
	assert.Error(t, err)
}

func TestMemoryQueueCarriesTypedTurns(t *testing.T) {
	q := NewMemoryQueue(4)
	require.NoError(t, q.Send(context.Background(), turnPayload{ID: "j1", SessionID: "s1", Text: "hi"}))
	require.NoError(t, q.Send(context.Background(), turnPayload{ID: "j2", SessionID: "s2", Text: "there"}))

	turns, err := q.Receive(context.Background(), 5, 1)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "s1", turns[0].Payload.SessionID)
	assert.Equal(t, "hi", turns[0].Payload.Text)
	assert.Empty(t, turns[0].ReceiptHandle, "in-process turns need no acknowledgement")
	assert.Equal(t, "j2", turns[1].Payload.ID)
}

func TestMemoryQueueReceiveTimeout(t *testing.T) {
	q := NewMemoryQueue(1)
	messages, err := q.Receive(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
