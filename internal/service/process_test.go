package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/pmstd/internal/ai"
	"github.com/cloo-solutions/pmstd/internal/domain"
)

func processMocks() (*MockStandardRepository, *MockSectionRepository) {
	standards := new(MockStandardRepository)
	sections := new(MockSectionRepository)
	standards.On("List", mock.Anything).Return(testStandards(), nil)
	sections.On("ListByStandards", mock.Anything, []int64{}).Return([]*domain.Section{
		section(11, 2, "11.1", "Risk Management", "Plan risk responses."),
		section(41, 2, "4.1", "Develop Project Charter", "The charter authorizes the project."),
	}, nil)
	return standards, sections
}

func newTestProcessService(standards *MockStandardRepository, sections *MockSectionRepository, gen ai.Generator) *ProcessService {
	svc := NewProcessService(standards, sections, gen, nil)
	svc.retry = ai.RetryConfig{MaxAttempts: 1}
	return svc
}

func findActivity(plan *ProcessPlan, name string) *ProcessActivity {
	for pi := range plan.Phases {
		for j := range plan.Phases[pi].Activities {
			if plan.Phases[pi].Activities[j].Name == name {
				return &plan.Phases[pi].Activities[j]
			}
		}
	}
	return nil
}

func TestProcessService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("tailors the template when no generator is configured", func(t *testing.T) {
		standards, sections := processMocks()
		svc := newTestProcessService(standards, sections, nil)

		plan, err := svc.Generate(ctx, ProcessInput{
			ProjectType: "software",
			Size:        "Small",
			Industry:    "healthcare",
			Constraints: []string{"fixed budget", " "},
		})

		require.NoError(t, err)
		assert.Equal(t, ProcessSourceTemplate, plan.Source)
		assert.Equal(t, ProjectSizeSmall, plan.Size)
		assert.Equal(t, []string{"fixed budget"}, plan.Constraints)

		names := make([]string, len(plan.Phases))
		for i, p := range plan.Phases {
			names[i] = p.Name
		}
		assert.Equal(t, []string{"Initiation", "Planning", "Execution", "Monitoring & Control", "Closure"}, names)

		assert.Nil(t, findActivity(plan, "Appoint project board"))
		assert.Nil(t, findActivity(plan, "Plan quality"))
		assert.NotNil(t, findActivity(plan, "Identify healthcare compliance requirements"))

		constraint := findActivity(plan, "Plan for constraint: fixed budget")
		require.NotNil(t, constraint)
		assert.Equal(t, []string{"fixed", "budget", "constraint"}, constraint.Keywords)
		assert.Empty(t, constraint.Evidence)

		risk := findActivity(plan, "Plan risk management")
		require.NotNil(t, risk)
		require.Len(t, risk.Evidence, 1)
		assert.Equal(t, int64(11), risk.Evidence[0].SectionID)
		assert.Equal(t, 4, risk.Evidence[0].Score)
		assert.Equal(t, "PMBOK Guide", risk.Evidence[0].Standard)

		charter := findActivity(plan, "Develop project charter")
		require.NotNil(t, charter)
		require.Len(t, charter.Evidence, 1)
		assert.Equal(t, "4.1", charter.Evidence[0].SectionNumber)
	})

	t.Run("large projects get the full template", func(t *testing.T) {
		standards, sections := processMocks()
		svc := newTestProcessService(standards, sections, nil)

		plan, err := svc.Generate(ctx, ProcessInput{ProjectType: "infrastructure", Size: "large"})

		require.NoError(t, err)
		assert.NotNil(t, findActivity(plan, "Appoint project board"))
		assert.NotNil(t, findActivity(plan, "Plan communications"))
		assert.NotNil(t, findActivity(plan, "Manage procurement"))
	})

	t.Run("uses generated phases and derives missing keywords", func(t *testing.T) {
		standards, sections := processMocks()
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).Return(`{"phases": [
			{"name": "Discovery", "description": "Understand needs", "activities": [
				{"name": "Stakeholder engagement workshop", "description": "Meet users"},
				{"name": "Risk review", "keywords": ["Risk"]},
				{"name": " "}
			]},
			{"name": "Empty", "activities": []}
		]}`, nil)
		svc := newTestProcessService(standards, sections, gen)

		plan, err := svc.Generate(ctx, ProcessInput{ProjectType: "research"})

		require.NoError(t, err)
		assert.Equal(t, ProcessSourceAI, plan.Source)
		assert.Equal(t, ProjectSizeMedium, plan.Size)
		require.Len(t, plan.Phases, 1)
		require.Len(t, plan.Phases[0].Activities, 2)
		assert.Equal(t, []string{"stakeholder", "engagement", "workshop"}, plan.Phases[0].Activities[0].Keywords)
		assert.Equal(t, []string{"risk"}, plan.Phases[0].Activities[1].Keywords)
		require.Len(t, plan.Phases[0].Activities[1].Evidence, 1)
	})

	t.Run("falls back when the generator fails", func(t *testing.T) {
		standards, sections := processMocks()
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("upstream 503"))
		svc := newTestProcessService(standards, sections, gen)

		plan, err := svc.Generate(ctx, ProcessInput{ProjectType: "software"})

		require.NoError(t, err)
		assert.Equal(t, ProcessSourceTemplate, plan.Source)
		assert.Len(t, plan.Phases, 5)
	})

	t.Run("validates input", func(t *testing.T) {
		svc := newTestProcessService(new(MockStandardRepository), new(MockSectionRepository), nil)

		_, err := svc.Generate(ctx, ProcessInput{ProjectType: " "})
		assert.ErrorIs(t, err, domain.ErrMissingProjectType)

		_, err = svc.Generate(ctx, ProcessInput{ProjectType: "software", Size: "huge"})
		assert.ErrorIs(t, err, domain.ErrInvalidProjectSize)

		_, err = svc.Generate(ctx, ProcessInput{ProjectType: "software", StandardIDs: []int64{-1}})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("returns not found for unknown standard", func(t *testing.T) {
		standards, sections := processMocks()
		svc := newTestProcessService(standards, sections, nil)

		_, err := svc.Generate(ctx, ProcessInput{ProjectType: "software", StandardIDs: []int64{42}})

		assert.ErrorIs(t, err, domain.ErrStandardNotFound)
	})
}
