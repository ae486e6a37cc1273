package domain

import (
	"fmt"
	"strings"
	"time"
)

// Standard is a published project-management standard (PMBOK, PRINCE2, ISO 21500, ...).
type Standard struct {
	ID           int64
	Code         string
	Name         string
	Version      string
	Publisher    string
	Description  string
	SectionCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewStandard creates a new Standard instance
func NewStandard(code, name, version, publisher, description string, now time.Time) *Standard {
	return &Standard{
		Code:        NormalizeStandardCode(code),
		Name:        strings.TrimSpace(name),
		Version:     strings.TrimSpace(version),
		Publisher:   strings.TrimSpace(publisher),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NormalizeStandardCode upper-cases and trims a standard code ("pmbok" -> "PMBOK").
func NormalizeStandardCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateStandard validates a Standard instance
func ValidateStandard(s *Standard) error {
	if s == nil {
		return fmt.Errorf("standard cannot be nil")
	}

	if s.Code == "" {
		return fmt.Errorf("standard Code is required")
	}

	if s.Name == "" {
		return fmt.Errorf("standard Name is required")
	}

	return nil
}
