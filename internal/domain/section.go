package domain

import (
	"fmt"
	"time"

	"github.com/cloo-solutions/pmstd/internal/relevance"
)

// Section is a titled passage of a standard's text.
type Section struct {
	ID            int64
	StandardID    int64
	SectionNumber string
	Chapter       string
	Title         string
	Content       string
	Position      int
	CreatedAt     time.Time
}

// ToRecord converts a section into the search engine's record shape.
func (s *Section) ToRecord() relevance.Record {
	return relevance.Record{
		ID:            s.ID,
		StandardID:    s.StandardID,
		Title:         s.Title,
		Content:       s.Content,
		SectionNumber: s.SectionNumber,
		Chapter:       s.Chapter,
	}
}

// SectionsToRecords converts sections, skipping nil entries.
func SectionsToRecords(sections []*Section) []relevance.Record {
	records := make([]relevance.Record, 0, len(sections))
	for _, s := range sections {
		if s == nil {
			continue
		}
		records = append(records, s.ToRecord())
	}
	return records
}

// ValidateSection validates a Section instance
func ValidateSection(s *Section) error {
	if s == nil {
		return fmt.Errorf("section cannot be nil")
	}

	if s.Title == "" {
		return fmt.Errorf("section Title is required")
	}

	if s.Position < 0 {
		return fmt.Errorf("section Position must not be negative")
	}

	return nil
}
