package service

import (
	"context"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/pagination"
)

// StandardRepositoryInterface defines persistence for standards
type StandardRepositoryInterface interface {
	// Upsert inserts or updates by code and sets s.ID.
	Upsert(ctx context.Context, s *domain.Standard) error
	GetByID(ctx context.Context, id int64) (*domain.Standard, error)
	GetByCode(ctx context.Context, code string) (*domain.Standard, error)
	// List returns every standard ordered by code, with SectionCount filled.
	List(ctx context.Context) ([]*domain.Standard, error)
}

// SectionRepositoryInterface defines persistence for standard sections
type SectionRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Section, error)
	ListByStandard(ctx context.Context, standardID int64, cursor *pagination.Cursor, limit int) (*SectionPageResult, error)
	// ListByStandards returns the sections of the given standards, or of
	// every standard when standardIDs is empty.
	ListByStandards(ctx context.Context, standardIDs []int64) ([]*domain.Section, error)
	// SearchCandidates returns a superset of the sections a free-text query
	// can match, optionally restricted to standardIDs.
	SearchCandidates(ctx context.Context, query string, standardIDs []int64) ([]*domain.Section, error)
	// ReplaceForStandard deletes a standard's sections and inserts the given ones.
	ReplaceForStandard(ctx context.Context, standardID int64, sections []*domain.Section) error
}

type SectionPageResult struct {
	Items      []*domain.Section
	NextCursor string
	HasMore    bool
}
