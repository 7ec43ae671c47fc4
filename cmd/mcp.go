package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/elyxhealth/careteam/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing care-team routing and journey tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()

		mcpserver.Version = Version
		fmt.Fprintln(os.Stderr, "careteam MCP server started on stdio")

		srv := mcpserver.NewServer(app.pipeline, app.issues, app.machine, app.cfg.MemberName)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
