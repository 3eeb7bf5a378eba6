package main

import (
	"github.com/spf13/cobra"

	"github.com/jongio/urlkit/internal/mcptools"
	"github.com/jongio/urlkit/version"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the URL tools over the Model Context Protocol (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcptools.Serve(appName, version.Version)
		},
	}
}
