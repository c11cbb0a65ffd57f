// Command seeksyctl runs maintenance tasks outside the HTTP server:
// exporting captions from a saved transcription and applying the schema.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree so tests do not share flag state.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seeksyctl",
		Short:         "Seeksy maintenance tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCaptionsCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}
