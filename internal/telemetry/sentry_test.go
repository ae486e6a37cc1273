package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInit_NoDSNIsNoop(t *testing.T) {
	flush := Init(Config{}, zap.NewNop())
	assert.NotNil(t, flush)
	assert.NotPanics(t, flush)
}

func TestSampleRate(t *testing.T) {
	assert.Equal(t, 1.0, SampleRate("development"))
	assert.Equal(t, 1.0, SampleRate(""))
	assert.Equal(t, 0.1, SampleRate("production"))
}

func TestStartSpan_WithoutClient(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "SearchService.SearchAll", SpanAttributes{
		StandardID: 3,
		Query:      "risk",
		Operation:  "search",
	})
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() {
		span.SetData("results", 2)
		span.SetError(errors.New("boom"))
		span.End()
		CaptureError(ctx, errors.New("boom"))
		AddBreadcrumb(ctx, "search", "done")
	})
}
