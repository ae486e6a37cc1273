package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/service"
)

const (
	DefaultBufferSize = 1024

	drainTimeout = 5 * time.Second
)

// Fanout records every event with each recorder in turn.
type Fanout []service.SearchRecorder

func (f Fanout) RecordSearch(ctx context.Context, event service.SearchEvent) error {
	var errs []error
	for _, r := range f {
		if err := r.RecordSearch(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsyncRecorder hands events to a background goroutine so slow sinks stay
// off the request path. Events are dropped when the buffer is full or the
// recorder is closed.
type AsyncRecorder struct {
	next    service.SearchRecorder
	eventCh chan service.SearchEvent
	log     *zap.Logger
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncRecorder starts delivering buffered events to next until Close.
func NewAsyncRecorder(next service.SearchRecorder, bufferSize int, log *zap.Logger) *AsyncRecorder {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	a := &AsyncRecorder{
		next:    next,
		eventCh: make(chan service.SearchEvent, bufferSize),
		log:     log,
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncRecorder) RecordSearch(_ context.Context, event service.SearchEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.log.Warn("search event dropped (recorder closed)", zap.String("search_id", event.ID))
		return nil
	}
	select {
	case a.eventCh <- event:
	default:
		a.log.Warn("search event dropped (buffer full)", zap.String("search_id", event.ID))
	}
	return nil
}

// Close delivers the buffered events and stops the goroutine. Safe to call
// more than once.
func (a *AsyncRecorder) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.eventCh)
	}
	a.mu.Unlock()
	<-a.done
}

func (a *AsyncRecorder) run() {
	defer close(a.done)
	for event := range a.eventCh {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := a.next.RecordSearch(ctx, event); err != nil {
			a.log.Error("failed to deliver search event", zap.String("search_id", event.ID), zap.Error(err))
		}
		cancel()
	}
}
