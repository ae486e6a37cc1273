package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Standard is a standard as listed by the API.
type Standard struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	SectionCount int    `json:"sectionCount"`
}

// StandardsCmd creates the standards command.
func StandardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standards",
		Short: "List loaded standards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := NewAPIClientWithCmd(cmd)

			var standards []Standard
			if err := api.GetInto(cmd.Context(), "/api/standards", nil, &standards); err != nil {
				return fmt.Errorf("failed to list standards: %w", err)
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), standards)
			}
			return printStandards(cmd.OutOrStdout(), standards)
		},
	}
}

func printStandards(w io.Writer, standards []Standard) error {
	if len(standards) == 0 {
		fmt.Fprintln(w, "No standards loaded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tVERSION\tSECTIONS")
	for _, s := range standards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", s.ID, s.Code, s.Name, s.Version, s.SectionCount)
	}
	return tw.Flush()
}
