package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/pmstd/internal/cli"
	"github.com/cloo-solutions/pmstd/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "pmstd",
		Short: "Query the project-management standards library",
		Long: `pmstd searches and compares project-management standards through the pmstd API.

Environment variables:
  PMSTD_API_URL         API base URL (default: http://localhost:8080)
  PMSTD_ADMIN_API_KEY   Admin key sent to /admin routes`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.StandardsCmd())
	rootCmd.AddCommand(client.CompareCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
