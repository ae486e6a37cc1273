package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/pmstd/internal/service"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type recordingRecorder struct {
	mu     sync.Mutex
	events []service.SearchEvent
	err    error
}

func (r *recordingRecorder) RecordSearch(_ context.Context, e service.SearchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func testEvent(id string) service.SearchEvent {
	return service.SearchEvent{
		ID:          id,
		Kind:        service.SearchKindAll,
		Query:       "risk",
		ResultIDs:   []int64{4, 2},
		ResultCount: 2,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestKafkaPublisher_RecordSearch(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, nil)

	require.NoError(t, p.RecordSearch(context.Background(), testEvent("s-1")))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("all"), w.msgs[0].Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "s-1", decoded["id"])
	assert.Equal(t, "risk", decoded["query"])
	assert.Equal(t, float64(2), decoded["resultCount"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := NewKafkaPublisherWithWriter(w, nil)

	err := p.RecordSearch(context.Background(), testEvent("s-1"))

	assert.ErrorContains(t, err, "broker unavailable")
}

func TestFanout(t *testing.T) {
	a := &recordingRecorder{}
	b := &recordingRecorder{err: errors.New("b failed")}
	c := &recordingRecorder{}

	err := Fanout{a, b, c}.RecordSearch(context.Background(), testEvent("s-1"))

	assert.ErrorContains(t, err, "b failed")
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, 1, c.count())
}

func TestAsyncRecorder_DeliversBeforeClose(t *testing.T) {
	next := &recordingRecorder{}
	a := NewAsyncRecorder(next, 8, nil)

	for _, id := range []string{"s-1", "s-2", "s-3"} {
		require.NoError(t, a.RecordSearch(context.Background(), testEvent(id)))
	}
	a.Close()

	assert.Equal(t, 3, next.count())
	assert.Equal(t, "s-1", next.events[0].ID)
}

func TestAsyncRecorder_RecordAfterClose(t *testing.T) {
	next := &recordingRecorder{}
	a := NewAsyncRecorder(next, 4, nil)
	require.NoError(t, a.RecordSearch(context.Background(), testEvent("s-1")))
	a.Close()

	assert.NotPanics(t, func() {
		assert.NoError(t, a.RecordSearch(context.Background(), testEvent("s-2")))
		a.Close()
	})
	assert.Equal(t, 1, next.count())
}

func TestAsyncRecorder_ConcurrentRecordAndClose(t *testing.T) {
	a := NewAsyncRecorder(Fanout{}, 4, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = a.RecordSearch(context.Background(), testEvent("s"))
			}
		}()
	}
	a.Close()
	wg.Wait()
}
