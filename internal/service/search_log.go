package service

import (
	"context"
	"time"
)

// SearchKind distinguishes in-standard from cross-standard searches.
type SearchKind string

const (
	SearchKindStandard SearchKind = "standard"
	SearchKindAll      SearchKind = "all"
)

// SearchEvent captures one executed search for analytics.
type SearchEvent struct {
	ID          string     `json:"id"`
	Kind        SearchKind `json:"kind"`
	Query       string     `json:"query"`
	StandardIDs []int64    `json:"standardIds"`
	ResultIDs   []int64    `json:"resultIds"`
	ResultCount int        `json:"resultCount"`
	CacheHit    bool       `json:"cacheHit"`
	DurationMs  int64      `json:"durationMs"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// SearchRecorder persists or publishes search events.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, event SearchEvent) error
}

// NoopSearchRecorder drops every event.
type NoopSearchRecorder struct{}

func (NoopSearchRecorder) RecordSearch(context.Context, SearchEvent) error { return nil }
