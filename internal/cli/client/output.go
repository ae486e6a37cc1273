package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

// jsonOutput reports whether --output was set on the root command.
func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("output")
	return v
}

func printJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

var markReplacer = strings.NewReplacer("<mark>", "", "</mark>", "")

// plainSnippet strips highlight markers and shortens s for terminal output.
func plainSnippet(s string, max int) string {
	s = strings.Join(strings.Fields(markReplacer.Replace(s)), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
