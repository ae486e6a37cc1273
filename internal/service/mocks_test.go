package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/pmstd/internal/cache"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/pagination"
)

// MockStandardRepository is a mock implementation of StandardRepositoryInterface
type MockStandardRepository struct {
	mock.Mock
}

func (m *MockStandardRepository) Upsert(ctx context.Context, s *domain.Standard) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStandardRepository) GetByID(ctx context.Context, id int64) (*domain.Standard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Standard), args.Error(1)
}

func (m *MockStandardRepository) GetByCode(ctx context.Context, code string) (*domain.Standard, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Standard), args.Error(1)
}

func (m *MockStandardRepository) List(ctx context.Context) ([]*domain.Standard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Standard), args.Error(1)
}

// MockSectionRepository is a mock implementation of SectionRepositoryInterface
type MockSectionRepository struct {
	mock.Mock
}

func (m *MockSectionRepository) GetByID(ctx context.Context, id int64) (*domain.Section, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Section), args.Error(1)
}

func (m *MockSectionRepository) ListByStandard(ctx context.Context, standardID int64, cursor *pagination.Cursor, limit int) (*SectionPageResult, error) {
	args := m.Called(ctx, standardID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SectionPageResult), args.Error(1)
}

func (m *MockSectionRepository) ListByStandards(ctx context.Context, standardIDs []int64) ([]*domain.Section, error) {
	args := m.Called(ctx, standardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Section), args.Error(1)
}

func (m *MockSectionRepository) SearchCandidates(ctx context.Context, query string, standardIDs []int64) ([]*domain.Section, error) {
	args := m.Called(ctx, query, standardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Section), args.Error(1)
}

func (m *MockSectionRepository) ReplaceForStandard(ctx context.Context, standardID int64, sections []*domain.Section) error {
	args := m.Called(ctx, standardID, sections)
	return args.Error(0)
}

// MockSearchRecorder is a mock implementation of SearchRecorder
type MockSearchRecorder struct {
	mock.Mock
}

func (m *MockSearchRecorder) RecordSearch(ctx context.Context, event SearchEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockGenerator is a mock implementation of ai.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Name() string { return "mock" }

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ObjectInfo), args.Error(1)
}

func (m *MockObjectStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockUUIDGenerator returns the given ids in order.
type MockUUIDGenerator struct {
	mu        sync.Mutex
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) InvalidatePrefix(_ context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

func (c *memCache) Close() error { return nil }

// stubCatalog is a fixed TopicCatalog.
type stubCatalog []domain.Topic

func (c stubCatalog) All() []domain.Topic { return c }

func (c stubCatalog) Find(ref string) (domain.Topic, bool) {
	slug := domain.Slugify(ref)
	for _, t := range c {
		if t.Slug == slug {
			return t, true
		}
	}
	return domain.Topic{}, false
}

func testStandards() []*domain.Standard {
	return []*domain.Standard{
		{ID: 1, Code: "ISO21500", Name: "ISO 21500"},
		{ID: 2, Code: "PMBOK", Name: "PMBOK Guide"},
		{ID: 3, Code: "PRINCE2", Name: "PRINCE2"},
	}
}

func section(id, standardID int64, number, title, content string) *domain.Section {
	return &domain.Section{
		ID:            id,
		StandardID:    standardID,
		SectionNumber: number,
		Title:         title,
		Content:       content,
	}
}
