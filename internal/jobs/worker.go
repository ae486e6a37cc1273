package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker represents a background job worker
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	runOnStart   bool
	log          *zap.Logger
	stopChan     chan struct{}
	doneChan     chan struct{}
}

type WorkerOption func(*Worker)

// WithRunOnStart processes once before the first tick.
func WithRunOnStart() WorkerOption {
	return func(w *Worker) { w.runOnStart = true }
}

func WithLogger(l *zap.Logger) WorkerOption {
	return func(w *Worker) { w.log = l }
}

// NewWorker creates a new Worker instance
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration, opts ...WorkerOption) *Worker {
	w := &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		log:          zap.NewNop(),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("worker", name))
	return w
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	w.log.Info("worker started", zap.Duration("poll_interval", w.pollInterval))

	if w.runOnStart {
		w.process(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.log.Info("worker stopped: stop signal received")
			return
		case <-ticker.C:
			w.process(ctx)
		}
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	w.log.Info("worker shutdown complete")
}

func (w *Worker) process(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		w.log.Error("error processing jobs", zap.Error(err))
	}
}
