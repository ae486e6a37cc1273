package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	Topic           string   `json:"topic,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	StandardIDs     []int64  `json:"standardIds,omitempty"`
	PerStandard     int      `json:"perStandard,omitempty"`
	IncludeInsights bool     `json:"includeInsights,omitempty"`
}

type CompareMatch struct {
	SectionNumber string `json:"sectionNumber"`
	Title         string `json:"title"`
	Score         int    `json:"score"`
}

type CompareStandard struct {
	StandardCode string         `json:"standardCode"`
	Standard     string         `json:"standard"`
	Coverage     int            `json:"coverage"`
	MeanScore    float64        `json:"meanScore"`
	Matches      []CompareMatch `json:"matches"`
}

type CompareInsights struct {
	Summary         string   `json:"summary"`
	Similarities    []string `json:"similarities"`
	Differences     []string `json:"differences"`
	Recommendations []string `json:"recommendations"`
	Source          string   `json:"source"`
}

// CompareResponse represents the comparison API response.
type CompareResponse struct {
	Topic     string            `json:"topic"`
	Keywords  []string          `json:"keywords"`
	Standards []CompareStandard `json:"standards"`
	Insights  *CompareInsights  `json:"insights,omitempty"`
}

// CompareCmd creates the compare command.
func CompareCmd() *cobra.Command {
	var (
		standards   []int64
		keywords    []string
		perStandard int
		insights    bool
	)

	cmd := &cobra.Command{
		Use:   "compare [topic]",
		Short: "Compare how standards treat a topic",
		Long: `Lines up the best matching sections of each standard for a catalogue
topic (e.g. "risk-management") or an ad-hoc --keywords list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := CompareRequest{
				Keywords:        keywords,
				StandardIDs:     standards,
				PerStandard:     perStandard,
				IncludeInsights: insights,
			}
			if len(args) == 1 {
				req.Topic = args[0]
			}
			if req.Topic == "" && len(req.Keywords) == 0 {
				return fmt.Errorf("a topic or --keywords is required")
			}

			api := NewAPIClientWithCmd(cmd)

			var resp CompareResponse
			if err := api.PostInto(cmd.Context(), "/api/compare", req, &resp); err != nil {
				return fmt.Errorf("compare failed: %w", err)
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printComparison(cmd.OutOrStdout(), &resp)
			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&standards, "standards", nil, "Standard ids to compare (default all)")
	cmd.Flags().StringSliceVarP(&keywords, "keywords", "k", nil, "Keywords to compare instead of a catalogue topic")
	cmd.Flags().IntVar(&perStandard, "per-standard", 0, "Matches shown per standard")
	cmd.Flags().BoolVar(&insights, "insights", false, "Include AI generated insights")

	return cmd
}

func printComparison(w io.Writer, resp *CompareResponse) {
	fmt.Fprintf(w, "Topic: %s (%s)\n", resp.Topic, strings.Join(resp.Keywords, ", "))
	for _, s := range resp.Standards {
		fmt.Fprintf(w, "\n%s: %d matching sections, mean score %.2f\n", s.Standard, s.Coverage, s.MeanScore)
		for _, m := range s.Matches {
			fmt.Fprintf(w, "  %-8s %s (%d)\n", m.SectionNumber, m.Title, m.Score)
		}
	}

	if resp.Insights == nil {
		return
	}
	fmt.Fprintf(w, "\nInsights (%s):\n  %s\n", resp.Insights.Source, resp.Insights.Summary)
	printList(w, "Similarities", resp.Insights.Similarities)
	printList(w, "Differences", resp.Insights.Differences)
	printList(w, "Recommendations", resp.Insights.Recommendations)
}

func printList(w io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
