package expense

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	appErrors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

const MsgShuttingDown = "Expense tracker is shutting down, please try again later."

var ErrDispatcherClosed = errors.New("dispatcher is shut down")

// closedError is returned for submissions that arrive during or after
// shutdown. It unwraps to ErrDispatcherClosed.
func closedError() error {
	return appErrors.NewUnavailableError(MsgShuttingDown, appErrors.ErrCodeShuttingDown).
		WithCause(ErrDispatcherClosed)
}

// Submitter runs one entry submission.
type Submitter interface {
	Submit(ctx context.Context, form *EntryForm) (*SubmitResult, error)
}

type SubmitJob struct {
	ctx    context.Context
	form   *EntryForm
	result chan submitOutcome
}

type submitOutcome struct {
	result *SubmitResult
	err    error
}

type DispatcherConfig struct {
	QueueSize int
}

// Dispatcher serialises submissions onto one background worker so store
// calls never run on the caller's goroutine and complete in arrival order.
type Dispatcher struct {
	service Submitter
	logger  *slog.Logger

	jobQueue chan SubmitJob
	stopped  chan struct{}
	pending  atomic.Int64
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

func NewDispatcher(service Submitter, config DispatcherConfig, lg *slog.Logger) *Dispatcher {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		service:  service,
		logger:   lg,
		jobQueue: make(chan SubmitJob, queueSize),
		stopped:  make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}

	d.wg.Add(1)
	go d.run()

	d.logger.Info("submission worker started", "queue_size", queueSize)
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	defer close(d.stopped)

	for {
		select {
		case job := <-d.jobQueue:
			d.process(job)
		case <-d.ctx.Done():
			d.drain()
			d.logger.Debug("submission worker shutting down")
			return
		}
	}
}

// drain fails every job still queued at shutdown.
func (d *Dispatcher) drain() {
	for {
		select {
		case job := <-d.jobQueue:
			job.result <- submitOutcome{err: closedError()}
			d.pending.Add(-1)
		default:
			return
		}
	}
}

func (d *Dispatcher) process(job SubmitJob) {
	defer d.pending.Add(-1)

	res, err := d.service.Submit(job.ctx, job.form)
	job.result <- submitOutcome{result: res, err: err}
}

// Submit queues form and waits for its outcome. The form is only touched by
// the worker until Submit returns.
func (d *Dispatcher) Submit(ctx context.Context, form *EntryForm) (*SubmitResult, error) {
	job := SubmitJob{
		ctx:    ctx,
		form:   form,
		result: make(chan submitOutcome, 1),
	}

	d.pending.Add(1)
	select {
	case <-d.ctx.Done():
		d.pending.Add(-1)
		return nil, closedError()
	default:
	}

	select {
	case d.jobQueue <- job:
	case <-ctx.Done():
		d.pending.Add(-1)
		return nil, ctx.Err()
	case <-d.ctx.Done():
		d.pending.Add(-1)
		return nil, closedError()
	}

	select {
	case outcome := <-job.result:
		return outcome.result, outcome.err
	case <-d.stopped:
		select {
		case outcome := <-job.result:
			return outcome.result, outcome.err
		default:
			// Enqueued after the final drain; nothing will process it.
			d.pending.Add(-1)
			return nil, closedError()
		}
	}
}

// Busy reports whether a submission is queued or running. Entry surfaces
// disable submit while it is true.
func (d *Dispatcher) Busy() bool {
	return d.pending.Load() > 0
}

// Shutdown stops the worker after the job in progress completes.
func (d *Dispatcher) Shutdown() {
	d.once.Do(func() {
		d.logger.Info("shutting down submission worker")
		d.cancel()
		d.wg.Wait()
		d.logger.Info("submission worker shutdown complete")
	})
}
