package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/service"
)

type MockStandardService struct {
	mock.Mock
}

func (m *MockStandardService) List(ctx context.Context) ([]*domain.Standard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Standard), args.Error(1)
}

func (m *MockStandardService) Get(ctx context.Context, id int64) (*domain.Standard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Standard), args.Error(1)
}

func (m *MockStandardService) ListSections(ctx context.Context, input service.ListSectionsInput) (*service.ListSectionsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListSectionsOutput), args.Error(1)
}

func (m *MockStandardService) GetSection(ctx context.Context, id int64) (*domain.Section, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Section), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) SearchStandard(ctx context.Context, input service.SearchStandardInput) (*service.SearchResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchResponse), args.Error(1)
}

func (m *MockSearchService) SearchAll(ctx context.Context, input service.SearchAllInput) (*service.SearchResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchResponse), args.Error(1)
}

type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) Topics() []domain.Topic {
	args := m.Called()
	return args.Get(0).([]domain.Topic)
}

func (m *MockComparisonService) Compare(ctx context.Context, input service.CompareInput) (*service.ComparisonResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ComparisonResult), args.Error(1)
}

func (m *MockComparisonService) Insights(ctx context.Context, input service.CompareInput) (*service.Insights, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Insights), args.Error(1)
}

type MockProcessService struct {
	mock.Mock
}

func (m *MockProcessService) Generate(ctx context.Context, input service.ProcessInput) (*service.ProcessPlan, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessPlan), args.Error(1)
}

type MockSeeder struct {
	mock.Mock
}

func (m *MockSeeder) Seed(ctx context.Context, src service.CorpusSource) (*service.SeedReport, error) {
	args := m.Called(ctx, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SeedReport), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestStandard() *domain.Standard {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Standard{
		ID:           1,
		Code:         "PMBOK",
		Name:         "PMBOK Guide",
		Version:      "7",
		Publisher:    "PMI",
		SectionCount: 2,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newTestSection(id int64, title string) *domain.Section {
	return &domain.Section{
		ID:            id,
		StandardID:    1,
		SectionNumber: "2.1",
		Chapter:       "Principles",
		Title:         title,
		Content:       "Risk is identified early.",
		Position:      int(id),
	}
}

// withURLParams attaches chi route parameters to req.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
