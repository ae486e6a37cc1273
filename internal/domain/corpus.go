package domain

import (
	"fmt"
	"strings"
	"time"
)

// CorpusFile is the JSON document a standard is seeded from.
type CorpusFile struct {
	Standard CorpusStandard  `json:"standard"`
	Sections []CorpusSection `json:"sections"`
}

// CorpusStandard describes the standard in a corpus file.
type CorpusStandard struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
}

// CorpusSection is one section entry in a corpus file.
type CorpusSection struct {
	SectionNumber string `json:"sectionNumber"`
	Chapter       string `json:"chapter"`
	Title         string `json:"title"`
	Content       string `json:"content"`
}

// Validate checks that the corpus names its standard and every section has a title.
func (c *CorpusFile) Validate() error {
	if strings.TrimSpace(c.Standard.Code) == "" {
		return NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidCorpus.Message, fmt.Errorf("standard code is required"))
	}
	if strings.TrimSpace(c.Standard.Name) == "" {
		return NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidCorpus.Message, fmt.Errorf("standard name is required"))
	}
	for i, s := range c.Sections {
		if strings.TrimSpace(s.Title) == "" {
			return NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidCorpus.Message, fmt.Errorf("section %d: title is required", i))
		}
	}
	return nil
}

// ToDomain builds the standard and its ordered sections.
func (c *CorpusFile) ToDomain(now time.Time) (*Standard, []*Section) {
	std := NewStandard(c.Standard.Code, c.Standard.Name, c.Standard.Version, c.Standard.Publisher, c.Standard.Description, now)

	sections := make([]*Section, 0, len(c.Sections))
	for i, s := range c.Sections {
		sections = append(sections, &Section{
			SectionNumber: strings.TrimSpace(s.SectionNumber),
			Chapter:       strings.TrimSpace(s.Chapter),
			Title:         strings.TrimSpace(s.Title),
			Content:       s.Content,
			Position:      i,
			CreatedAt:     now,
		})
	}
	std.SectionCount = len(sections)
	return std, sections
}
