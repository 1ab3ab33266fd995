package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/tasks-api/internal/redact"
)

// AsyncConfig configures an AsyncDispatcher.
type AsyncConfig struct {
	// Workers is the number of sending goroutines; values below 1 mean 1.
	Workers int
	// QueueSize bounds the number of pending mails; values below 1 mean 1.
	QueueSize int
	// SendTimeout limits a single delivery attempt. Zero means no limit.
	SendTimeout time.Duration
}

type job struct {
	ctx context.Context
	msg ConfirmationMessage
}

// AsyncDispatcher hands mails to a bounded queue drained by a fixed pool
// of workers. SendConfirmation never blocks: when the queue is full the
// mail is dropped and ErrQueueFull returned.
type AsyncDispatcher struct {
	next    Dispatcher
	cfg     AsyncConfig
	logger  *slog.Logger
	jobs    chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	once    sync.Once
}

// NewAsyncDispatcher wraps next. Call Start before sending and Stop on shutdown.
func NewAsyncDispatcher(next Dispatcher, cfg AsyncConfig, logger *slog.Logger) *AsyncDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "mail_worker_pool"))
	if cfg.Workers < 1 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", cfg.Workers),
			slog.Int("default_count", 1))
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &AsyncDispatcher{
		next:   next,
		cfg:    cfg,
		logger: logger,
		jobs:   make(chan job, cfg.QueueSize),
	}
}

// Start launches the workers.
func (d *AsyncDispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("mail workers started",
		slog.Int("workers", d.cfg.Workers),
		slog.Int("queue_size", d.cfg.QueueSize))
}

// SendConfirmation implements Dispatcher by enqueueing msg. The caller's
// context values are kept but its cancellation is not, since the request
// that triggered the mail usually finishes first.
func (d *AsyncDispatcher) SendConfirmation(ctx context.Context, msg ConfirmationMessage) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), msg: msg}:
		return nil
	default:
		d.logger.Warn("mail queue full, dropping confirmation mail",
			slog.String("user_id", msg.UserID.String()),
			slog.Int("queue_cap", cap(d.jobs)))
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(d.jobs))
	}
}

// Stop rejects new mails, lets the workers drain what is queued and waits
// for them to finish or for ctx to end.
func (d *AsyncDispatcher) Stop(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.jobs)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("mail workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail workers did not drain: %w", ctx.Err())
	}
}

func (d *AsyncDispatcher) worker(id int) {
	defer d.wg.Done()
	d.logger.Debug("starting worker", slog.Int("worker_id", id))

	for j := range d.jobs {
		d.deliver(j, id)
	}

	d.logger.Debug("queue closed, stopping worker", slog.Int("worker_id", id))
}

func (d *AsyncDispatcher) deliver(j job, workerID int) {
	ctx := j.ctx
	if d.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.SendTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("mail dispatcher panicked",
				slog.Int("worker_id", workerID),
				slog.Any("panic", r))
		}
	}()

	if err := d.next.SendConfirmation(ctx, j.msg); err != nil {
		d.logger.Error("failed to send confirmation mail",
			slog.Int("worker_id", workerID),
			slog.String("user_id", j.msg.UserID.String()),
			slog.String("error", redact.Error(err)))
	}
}
