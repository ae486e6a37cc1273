package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/ai"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/metrics"
	"github.com/cloo-solutions/pmstd/internal/relevance"
	"github.com/cloo-solutions/pmstd/internal/telemetry"
)

const (
	ProcessSourceAI       = "ai"
	ProcessSourceTemplate = "template"

	ProjectSizeSmall  = "small"
	ProjectSizeMedium = "medium"
	ProjectSizeLarge  = "large"

	EvidencePerActivity = 3

	minDerivedKeywordLen = 4
)

type ProcessInput struct {
	ProjectType string
	Size        string
	Industry    string
	Constraints []string
	StandardIDs []int64
}

type ProcessCitation struct {
	SectionID     int64  `json:"sectionId"`
	StandardID    int64  `json:"standardId"`
	Standard      string `json:"standard"`
	StandardCode  string `json:"standardCode"`
	SectionNumber string `json:"sectionNumber"`
	Title         string `json:"title"`
	Snippet       string `json:"snippet"`
	Score         int    `json:"score"`
}

type ProcessActivity struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Keywords    []string          `json:"keywords"`
	Evidence    []ProcessCitation `json:"evidence"`
}

type ProcessPhase struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Activities  []ProcessActivity `json:"activities"`
}

// ProcessPlan is a tailored project process with evidence from the standards.
type ProcessPlan struct {
	ProjectType string         `json:"projectType"`
	Size        string         `json:"size"`
	Industry    string         `json:"industry,omitempty"`
	Constraints []string       `json:"constraints"`
	StandardIDs []int64        `json:"standardIds"`
	Phases      []ProcessPhase `json:"phases"`
	Source      string         `json:"source"`
}

// ProcessService generates tailored processes
type ProcessService struct {
	standards StandardRepositoryInterface
	sections  SectionRepositoryInterface
	engine    *relevance.Engine
	generator ai.Generator
	retry     ai.RetryConfig
	log       *zap.Logger
}

// NewProcessService creates a new ProcessService instance
func NewProcessService(
	standards StandardRepositoryInterface,
	sections SectionRepositoryInterface,
	generator ai.Generator,
	log *zap.Logger,
) *ProcessService {
	if generator == nil {
		generator = ai.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProcessService{
		standards: standards,
		sections:  sections,
		engine:    relevance.New(relevance.Options{Mode: relevance.ModeKeywordTally}),
		generator: generator,
		retry:     ai.DefaultRetryConfig(),
		log:       log,
	}
}

// Generate builds a process for the project and cites supporting sections
func (s *ProcessService) Generate(ctx context.Context, input ProcessInput) (*ProcessPlan, error) {
	input, err := normalizeProcessInput(input)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ProcessService.Generate", telemetry.SpanAttributes{
		Operation: input.ProjectType,
	})
	defer span.End()

	all, err := s.standards.List(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	byID := standardsByID(all)
	for _, id := range input.StandardIDs {
		if _, ok := byID[id]; !ok {
			return nil, domain.ErrStandardNotFound
		}
	}

	sections, err := s.sections.ListByStandards(ctx, input.StandardIDs)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	records := domain.SectionsToRecords(sections)

	plan := &ProcessPlan{
		ProjectType: input.ProjectType,
		Size:        input.Size,
		Industry:    input.Industry,
		Constraints: input.Constraints,
		StandardIDs: input.StandardIDs,
	}
	plan.Phases, plan.Source = s.phases(ctx, input)

	for pi := range plan.Phases {
		for j := range plan.Phases[pi].Activities {
			act := &plan.Phases[pi].Activities[j]
			act.Evidence = s.cite(records, act.Keywords, byID)
		}
	}
	return plan, nil
}

func (s *ProcessService) phases(ctx context.Context, input ProcessInput) ([]ProcessPhase, string) {
	var out struct {
		Phases []ProcessPhase `json:"phases"`
	}
	err := ai.GenerateJSON(ctx, s.generator, processPrompt(input), s.retry, &out)
	if err == nil {
		out.Phases, err = cleanPhases(out.Phases)
	}
	if err != nil {
		s.log.Warn("process generation failed, using template",
			zap.String("project_type", input.ProjectType),
			zap.String("generator", s.generator.Name()),
			zap.Error(err))
		if !errors.Is(err, ai.ErrNotConfigured) {
			telemetry.CaptureError(ctx, err)
		}
		metrics.ObserveAI("process", true)
		return templatePhases(input), ProcessSourceTemplate
	}
	metrics.ObserveAI("process", false)
	return out.Phases, ProcessSourceAI
}

// cite ranks records by keyword tally and keeps the best few.
func (s *ProcessService) cite(records []relevance.Record, keywords []string, standards map[int64]*domain.Standard) []ProcessCitation {
	ranked := s.engine.Rank(records, relevance.Query{Keywords: keywords}, EvidencePerActivity)
	out := make([]ProcessCitation, 0, len(ranked))
	for _, r := range ranked {
		c := ProcessCitation{
			SectionID:     r.ID,
			StandardID:    r.StandardID,
			SectionNumber: r.SectionNumber,
			Title:         r.Title,
			Snippet:       r.Snippet,
			Score:         int(r.Score),
		}
		if std, ok := standards[r.StandardID]; ok {
			c.Standard = std.Name
			c.StandardCode = std.Code
		}
		out = append(out, c)
	}
	return out
}

func normalizeProcessInput(in ProcessInput) (ProcessInput, error) {
	in.ProjectType = strings.TrimSpace(in.ProjectType)
	if in.ProjectType == "" {
		return in, domain.ErrMissingProjectType
	}
	in.Industry = strings.TrimSpace(in.Industry)

	in.Size = strings.ToLower(strings.TrimSpace(in.Size))
	switch in.Size {
	case "":
		in.Size = ProjectSizeMedium
	case ProjectSizeSmall, ProjectSizeMedium, ProjectSizeLarge:
	default:
		return in, domain.ErrInvalidProjectSize
	}

	constraints := make([]string, 0, len(in.Constraints))
	for _, c := range in.Constraints {
		if c = strings.TrimSpace(c); c != "" {
			constraints = append(constraints, c)
		}
	}
	in.Constraints = constraints

	ids, err := normalizeIDs(in.StandardIDs)
	if err != nil {
		return in, err
	}
	in.StandardIDs = ids
	return in, nil
}

func processPrompt(in ProcessInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Design a project management process for a %s %s project", in.Size, in.ProjectType)
	if in.Industry != "" {
		fmt.Fprintf(&b, " in the %s industry", in.Industry)
	}
	b.WriteString(".\n")
	if len(in.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s.\n", strings.Join(in.Constraints, "; "))
	}
	b.WriteString(`Draw on PMBOK, PRINCE2 and ISO 21500/21502 practice. Respond with a single JSON object and nothing else:
{"phases": [{"name": "...", "description": "...", "activities": [{"name": "...", "description": "...", "keywords": ["..."]}]}]}
Keywords are short lower-case terms a standard would use for the activity.`)
	return b.String()
}

// cleanPhases drops unnamed entries and derives missing keywords from names.
func cleanPhases(in []ProcessPhase) ([]ProcessPhase, error) {
	out := make([]ProcessPhase, 0, len(in))
	for _, p := range in {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		acts := make([]ProcessActivity, 0, len(p.Activities))
		for _, a := range p.Activities {
			a.Name = strings.TrimSpace(a.Name)
			if a.Name == "" {
				continue
			}
			a.Keywords = mergeKeywords(a.Keywords)
			if len(a.Keywords) == 0 {
				a.Keywords = deriveKeywords(a.Name)
			}
			acts = append(acts, a)
		}
		if len(acts) == 0 {
			continue
		}
		p.Activities = acts
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, errors.New("process response has no phases")
	}
	return out, nil
}

func deriveKeywords(text string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:()\"'")
		if len([]rune(w)) >= minDerivedKeywordLen {
			words = append(words, w)
		}
	}
	return mergeKeywords(words)
}

type templateActivity struct {
	name        string
	description string
	keywords    []string
	minSize     string
}

type templatePhase struct {
	name        string
	description string
	activities  []templateActivity
}

var processTemplate = []templatePhase{
	{
		name:        "Initiation",
		description: "Establish why the project exists and who is accountable.",
		activities: []templateActivity{
			{name: "Develop project charter", description: "Document objectives, scope outline and authority.", keywords: []string{"charter", "business case", "objectives"}},
			{name: "Identify stakeholders", description: "List stakeholders and their interests.", keywords: []string{"stakeholder", "identify"}},
			{name: "Appoint project board", description: "Agree governance and decision rights.", keywords: []string{"board", "governance", "roles"}, minSize: ProjectSizeMedium},
		},
	},
	{
		name:        "Planning",
		description: "Define how the work will be delivered and controlled.",
		activities: []templateActivity{
			{name: "Define scope", description: "Break the work down into deliverables.", keywords: []string{"scope", "work breakdown", "deliverable"}},
			{name: "Develop schedule", description: "Sequence activities and estimate durations.", keywords: []string{"schedule", "estimate", "milestone"}},
			{name: "Plan risk management", description: "Identify and assess risks and responses.", keywords: []string{"risk", "response", "assessment"}},
			{name: "Plan quality", description: "Set quality criteria and methods.", keywords: []string{"quality", "criteria", "assurance"}, minSize: ProjectSizeMedium},
			{name: "Plan communications", description: "Decide who needs what information and when.", keywords: []string{"communication", "reporting", "stakeholder"}, minSize: ProjectSizeLarge},
		},
	},
	{
		name:        "Execution",
		description: "Carry out the planned work.",
		activities: []templateActivity{
			{name: "Direct and manage work", description: "Coordinate people and resources to produce deliverables.", keywords: []string{"work", "deliverable", "resource"}},
			{name: "Manage team", description: "Lead and develop the project team.", keywords: []string{"team", "resource", "leadership"}},
			{name: "Manage procurement", description: "Select and manage suppliers.", keywords: []string{"procurement", "supplier", "contract"}, minSize: ProjectSizeLarge},
		},
	},
	{
		name:        "Monitoring & Control",
		description: "Track progress and handle deviations.",
		activities: []templateActivity{
			{name: "Monitor progress", description: "Compare actual progress to the baseline.", keywords: []string{"progress", "baseline", "monitor"}},
			{name: "Control changes", description: "Assess and approve change requests.", keywords: []string{"change", "control", "issue"}},
			{name: "Manage exceptions", description: "Escalate forecast tolerance breaches.", keywords: []string{"exception", "tolerance", "escalat"}, minSize: ProjectSizeMedium},
		},
	},
	{
		name:        "Closure",
		description: "Hand over and formally close the project.",
		activities: []templateActivity{
			{name: "Hand over deliverables", description: "Obtain acceptance and transfer ownership.", keywords: []string{"acceptance", "handover", "deliverable"}},
			{name: "Capture lessons learned", description: "Record what to repeat and avoid.", keywords: []string{"lessons", "learned", "closure"}},
		},
	},
}

var sizeRank = map[string]int{ProjectSizeSmall: 0, ProjectSizeMedium: 1, ProjectSizeLarge: 2}

// templatePhases tailors the five-phase template to size, industry and constraints.
func templatePhases(in ProcessInput) []ProcessPhase {
	out := make([]ProcessPhase, 0, len(processTemplate))
	for _, tp := range processTemplate {
		phase := ProcessPhase{Name: tp.name, Description: tp.description}
		for _, ta := range tp.activities {
			if ta.minSize != "" && sizeRank[in.Size] < sizeRank[ta.minSize] {
				continue
			}
			phase.Activities = append(phase.Activities, ProcessActivity{
				Name:        ta.name,
				Description: ta.description,
				Keywords:    append([]string(nil), ta.keywords...),
			})
		}

		switch tp.name {
		case "Initiation":
			if in.Industry != "" {
				phase.Activities = append(phase.Activities, ProcessActivity{
					Name:        fmt.Sprintf("Identify %s compliance requirements", in.Industry),
					Description: fmt.Sprintf("Capture regulatory and organisational requirements specific to %s.", in.Industry),
					Keywords:    mergeKeywords([]string{"compliance", "requirements", "regulat"}, deriveKeywords(in.Industry)),
				})
			}
		case "Planning":
			for _, c := range in.Constraints {
				phase.Activities = append(phase.Activities, ProcessActivity{
					Name:        fmt.Sprintf("Plan for constraint: %s", c),
					Description: "Build the constraint into the baseline and tolerances.",
					Keywords:    mergeKeywords(deriveKeywords(c), []string{"constraint"}),
				})
			}
		}
		out = append(out, phase)
	}
	return out
}
