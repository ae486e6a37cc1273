package client

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// SearchResult represents a search result.
type SearchResult struct {
	ID            int64   `json:"id"`
	SectionNumber string  `json:"sectionNumber"`
	Title         string  `json:"title"`
	Snippet       string  `json:"snippet"`
	Similarity    float64 `json:"similarity"`
	Standard      string  `json:"standard"`
	StandardCode  string  `json:"standardCode"`
	Chapter       string  `json:"chapter"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Query          string         `json:"query"`
	TotalResults   int            `json:"totalResults"`
	Results        []SearchResult `json:"results"`
	SearchMetadata struct {
		AverageScore float64 `json:"averageScore"`
		Cached       bool    `json:"cached"`
		DurationMs   int64   `json:"durationMs"`
	} `json:"searchMetadata"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		standardID int64
		standards  string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search standards sections",
		Long: `Searches section titles and content. With --standard the search is
limited to one standard, otherwise all (or the --standards list) are searched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)

			path := "/api/search"
			query := url.Values{"q": {args[0]}}
			if standardID > 0 {
				path = fmt.Sprintf("/api/standards/%d/search", standardID)
			} else if standards != "" {
				query.Set("standards", standards)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}

			var resp SearchResponse
			if err := api.GetInto(cmd.Context(), path, query, &resp); err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printSearch(cmd.OutOrStdout(), &resp)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&standardID, "standard", "s", 0, "Search only this standard id")
	cmd.Flags().StringVar(&standards, "standards", "", "Comma separated standard ids to search")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results")

	return cmd
}

func printSearch(w io.Writer, resp *SearchResponse) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "Found %d results for %q (avg %.2f):\n\n", resp.TotalResults, resp.Query, resp.SearchMetadata.AverageScore)
	for i, r := range resp.Results {
		fmt.Fprintf(w, "%d. [%s %s] %s (%.2f)\n", i+1, r.StandardCode, r.SectionNumber, r.Title, r.Similarity)
		if r.Snippet != "" {
			fmt.Fprintf(w, "   %s\n", plainSnippet(r.Snippet, 120))
		}
	}
}
