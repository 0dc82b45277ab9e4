package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resilience",
		Short: "Organizational resilience assessment server",
		Long: `Resilience serves a 40 question Likert assessment of organizational
resilience, scores submissions into tiers and keeps a per-user history.

Running without a subcommand starts the HTTP server.`,
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newCatalogCommand())

	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
