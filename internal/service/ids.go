package service

import (
	"slices"

	"github.com/google/uuid"

	"github.com/cloo-solutions/pmstd/internal/domain"
)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// normalizeIDs validates, sorts and de-duplicates standard ids.
func normalizeIDs(ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, domain.ErrInvalidID
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
