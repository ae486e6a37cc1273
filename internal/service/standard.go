package service

import (
	"context"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/pagination"
	"github.com/cloo-solutions/pmstd/internal/telemetry"
)

// StandardService serves read access to standards and their sections
type StandardService struct {
	standards StandardRepositoryInterface
	sections  SectionRepositoryInterface
}

// NewStandardService creates a new StandardService instance
func NewStandardService(standards StandardRepositoryInterface, sections SectionRepositoryInterface) *StandardService {
	return &StandardService{standards: standards, sections: sections}
}

type ListSectionsInput struct {
	StandardID int64
	Cursor     string
	Limit      int
}

type ListSectionsOutput struct {
	Items   []*domain.Section
	Cursor  string
	HasMore bool
}

// List returns every standard with its section count
func (s *StandardService) List(ctx context.Context) ([]*domain.Standard, error) {
	ctx, span := telemetry.StartSpan(ctx, "StandardService.List", telemetry.SpanAttributes{})
	defer span.End()

	standards, err := s.standards.List(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return standards, nil
}

// Get returns a single standard
func (s *StandardService) Get(ctx context.Context, id int64) (*domain.Standard, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.standards.GetByID(ctx, id)
}

// ListSections pages through a standard's sections in document order
func (s *StandardService) ListSections(ctx context.Context, input ListSectionsInput) (*ListSectionsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "StandardService.ListSections", telemetry.SpanAttributes{
		StandardID: input.StandardID,
	})
	defer span.End()

	if input.StandardID <= 0 {
		return nil, domain.ErrInvalidID
	}

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}

	if _, err := s.standards.GetByID(ctx, input.StandardID); err != nil {
		return nil, err
	}

	page, err := s.sections.ListByStandard(ctx, input.StandardID, cursor, pagination.ClampLimit(input.Limit))
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ListSectionsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// GetSection returns a single section
func (s *StandardService) GetSection(ctx context.Context, id int64) (*domain.Section, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.sections.GetByID(ctx, id)
}

// standardsByID indexes standards for labelling results.
func standardsByID(standards []*domain.Standard) map[int64]*domain.Standard {
	out := make(map[int64]*domain.Standard, len(standards))
	for _, st := range standards {
		out[st.ID] = st
	}
	return out
}
