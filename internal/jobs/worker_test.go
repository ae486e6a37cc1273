package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/pmstd/internal/service"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCorpusSource is a mock implementation of service.CorpusSource
type MockCorpusSource struct {
	mock.Mock
}

func (m *MockCorpusSource) Name() string { return "mock" }

func (m *MockCorpusSource) List(ctx context.Context) ([]service.CorpusEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CorpusEntry), args.Error(1)
}

func (m *MockCorpusSource) Read(ctx context.Context, entry service.CorpusEntry) ([]byte, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockCorpusSeeder is a mock implementation of CorpusSeeder
type MockCorpusSeeder struct {
	mock.Mock
}

func (m *MockCorpusSeeder) SeedEntry(ctx context.Context, src service.CorpusSource, entry service.CorpusEntry) (service.SeedFileResult, error) {
	args := m.Called(ctx, src, entry)
	return args.Get(0).(service.SeedFileResult), args.Error(1)
}

type processorFunc func(ctx context.Context) error

func (f processorFunc) ProcessJobs(ctx context.Context) error { return f(ctx) }

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker("test", mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests that the worker stops when the context is cancelled
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(errors.New("transient"))

	worker := NewWorker("test", mockProcessor, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_RunOnStart tests that the first run does not wait for a tick
func TestWorker_RunOnStart(t *testing.T) {
	called := make(chan struct{}, 1)
	processor := processorFunc(func(context.Context) error {
		select {
		case called <- struct{}{}:
		default:
		}
		return nil
	})

	worker := NewWorker("test", processor, time.Hour, WithRunOnStart())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Start(ctx)
	}()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("processor was not run on start")
	}

	cancel()
	<-done
}

func TestCorpusSync_ProcessJobs(t *testing.T) {
	ctx := context.Background()
	pmbok := service.CorpusEntry{Name: "standards/pmbok.json", ETag: "v1"}
	prince := service.CorpusEntry{Name: "standards/prince2.json", ETag: "v1"}

	t.Run("seeds everything first, then only changed files", func(t *testing.T) {
		source := new(MockCorpusSource)
		seeder := new(MockCorpusSeeder)
		source.On("List", mock.Anything).Return([]service.CorpusEntry{pmbok, prince}, nil).Once()
		seeder.On("SeedEntry", mock.Anything, source, mock.Anything).Return(service.SeedFileResult{Sections: 3}, nil)

		syncer := NewCorpusSync(source, seeder, nil)
		require.NoError(t, syncer.ProcessJobs(ctx))
		seeder.AssertNumberOfCalls(t, "SeedEntry", 2)

		changed := service.CorpusEntry{Name: pmbok.Name, ETag: "v2"}
		source.On("List", mock.Anything).Return([]service.CorpusEntry{changed, prince}, nil).Once()
		require.NoError(t, syncer.ProcessJobs(ctx))

		seeder.AssertNumberOfCalls(t, "SeedEntry", 3)
		seeder.AssertCalled(t, "SeedEntry", mock.Anything, source, changed)
	})

	t.Run("retries failures up to MaxRetries", func(t *testing.T) {
		source := new(MockCorpusSource)
		seeder := new(MockCorpusSeeder)
		source.On("List", mock.Anything).Return([]service.CorpusEntry{pmbok}, nil)
		seeder.On("SeedEntry", mock.Anything, source, pmbok).Return(service.SeedFileResult{}, errors.New("bad json"))

		syncer := NewCorpusSync(source, seeder, nil)
		for i := 0; i < MaxRetries+2; i++ {
			err := syncer.ProcessJobs(ctx)
			if i < MaxRetries {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		}

		seeder.AssertNumberOfCalls(t, "SeedEntry", MaxRetries)
	})

	t.Run("returns list errors", func(t *testing.T) {
		source := new(MockCorpusSource)
		source.On("List", mock.Anything).Return(nil, errors.New("bucket missing"))

		err := NewCorpusSync(source, new(MockCorpusSeeder), nil).ProcessJobs(ctx)

		assert.ErrorContains(t, err, "bucket missing")
	})
}
