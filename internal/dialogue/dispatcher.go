package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vedya-health/vedya-platform/pkg/logging"
)

// TurnProcessor handles one inbound conversation turn. Engine implements it.
type TurnProcessor interface {
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
}

// Dispatcher exposes the queue-backed turn entrypoint used by HTTP handlers.
type Dispatcher interface {
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
	Shutdown(ctx context.Context) error
}

// ErrDispatcherClosed indicates the dispatcher is no longer accepting work.
var ErrDispatcherClosed = errors.New("dialogue: dispatcher closed")

// queueClient moves turn payloads between the caller and the workers. The
// queue deals in typed turns; how they are encoded on the wire is the
// transport's business (SQS marshals to JSON, the in-memory queue does not
// encode at all).
type queueClient interface {
	Send(ctx context.Context, payload turnPayload) error
	Receive(ctx context.Context, maxTurns int, waitSeconds int) ([]queuedTurn, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// queuedTurn is a payload pulled off the queue together with the transport's
// acknowledgement token. An empty ReceiptHandle means the transport needs no
// ack.
type queuedTurn struct {
	Payload       turnPayload
	ReceiptHandle string
}

// QueueDispatcher routes turns through a queue before invoking the engine.
// This lets local development run against an in-memory queue and production
// point at SQS without touching the HTTP handlers. Ordering per session is
// still guaranteed by the engine's keyed lock, not the queue.
type QueueDispatcher struct {
	processor TurnProcessor
	queue     queueClient
	logger    *logging.Logger

	cfg dispatcherConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	pending sync.Map // jobID -> chan turnResult
}

var _ Dispatcher = (*QueueDispatcher)(nil)

const (
	defaultWorkers          = 2
	defaultReceiveWait      = 2  // seconds
	defaultReceiveMax       = 5  // messages
	maxReceiveWaitSeconds   = 20 // SQS limit
	maxReceiveBatchMessages = 10
)

type dispatcherConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*dispatcherConfig)

// WithWorkerCount overrides the number of queue polling goroutines.
func WithWorkerCount(workers int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if workers > 0 {
			cfg.workers = workers
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait time for receive calls.
func WithReceiveWaitSeconds(seconds int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxReceiveWaitSeconds {
			seconds = maxReceiveWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize overrides how many messages each poll should return.
func WithReceiveBatchSize(size int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchMessages {
			size = maxReceiveBatchMessages
		}
		cfg.receiveBatchSize = size
	}
}

// NewQueueDispatcher wires a queue-backed dispatcher around the processor.
func NewQueueDispatcher(processor TurnProcessor, queue queueClient, logger *logging.Logger, opts ...DispatcherOption) *QueueDispatcher {
	if processor == nil {
		panic("dialogue: processor cannot be nil")
	}
	if queue == nil {
		panic("dialogue: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := dispatcherConfig{
		workers:          defaultWorkers,
		receiveWaitSecs:  defaultReceiveWait,
		receiveBatchSize: defaultReceiveMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &QueueDispatcher{
		processor: processor,
		queue:     queue,
		logger:    logger,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < cfg.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(i + 1)
	}

	return d
}

// HandleMessage enqueues the turn and blocks until a worker completes it.
func (d *QueueDispatcher) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	jobID := uuid.NewString()
	payload := turnPayload{
		ID:        jobID,
		SessionID: sessionID,
		Text:      text,
	}

	resultCh := make(chan turnResult, 1)
	d.pending.Store(jobID, resultCh)
	defer d.pending.Delete(jobID)

	if err := d.queue.Send(ctx, payload); err != nil {
		return "", fmt.Errorf("dialogue: failed to enqueue turn: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		return res.reply, res.err
	}
}

// Shutdown stops worker goroutines and notifies any pending callers.
func (d *QueueDispatcher) Shutdown(ctx context.Context) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	d.pending.Range(func(key, value any) bool {
		if ch, ok := value.(chan turnResult); ok {
			select {
			case ch <- turnResult{err: ErrDispatcherClosed}:
			default:
			}
		}
		d.pending.Delete(key)
		return true
	})

	return nil
}

func (d *QueueDispatcher) runWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Debug("dialogue dispatcher worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Debug("dialogue dispatcher worker stopping", "worker_id", workerID)
			return
		default:
		}

		turns, err := d.queue.Receive(d.ctx, d.cfg.receiveBatchSize, d.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("failed to receive dialogue turns", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if len(turns) == 0 {
			continue
		}

		for _, turn := range turns {
			d.processTurn(turn)
		}
	}
}

func (d *QueueDispatcher) processTurn(turn queuedTurn) {
	reply, err := d.processor.HandleMessage(d.ctx, turn.Payload.SessionID, turn.Payload.Text)

	deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if delErr := d.queue.Delete(deleteCtx, turn.ReceiptHandle); delErr != nil {
		d.logger.Error("failed to delete dialogue turn", "error", delErr)
	}

	d.deliverResult(turn.Payload.ID, reply, err)
}

func (d *QueueDispatcher) deliverResult(jobID, reply string, err error) {
	value, ok := d.pending.Load(jobID)
	if !ok {
		d.logger.Debug("no waiting caller for dialogue turn", "job_id", jobID)
		return
	}

	ch, ok := value.(chan turnResult)
	if !ok {
		d.logger.Error("dialogue dispatcher pending map corrupted", "job_id", jobID)
		d.pending.Delete(jobID)
		return
	}

	select {
	case ch <- turnResult{reply: reply, err: err}:
	default:
	}
}

type turnPayload struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

type turnResult struct {
	reply string
	err   error
}
