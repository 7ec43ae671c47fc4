// Package mcp exposes the care-team pipeline as MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/elyxhealth/careteam/internal/conversation"
	"github.com/elyxhealth/careteam/internal/issues"
	"github.com/elyxhealth/careteam/internal/journey"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server exposing routing and journey tools.
type Server struct {
	pipeline *conversation.Pipeline
	issues   *issues.Store
	machine  *journey.Machine
	member   string
	mcp      *server.MCPServer
}

// NewServer creates the MCP server with the given dependencies.
func NewServer(pipeline *conversation.Pipeline, store *issues.Store, machine *journey.Machine, member string) *Server {
	if member == "" {
		member = "Rohan"
	}
	s := &Server{
		pipeline: pipeline,
		issues:   store,
		machine:  machine,
		member:   member,
	}

	s.mcp = server.NewMCPServer(
		"careteam",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(routeMessageTool, s.handleRouteMessage)
	s.mcp.AddTool(journeyStateTool, s.handleJourneyState)
	s.mcp.AddTool(simulateWeekTool, s.handleSimulateWeek)
	s.mcp.AddTool(listIssuesTool, s.handleListIssues)
}

// Serve starts the MCP server on stdio. Stdout carries protocol messages;
// all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
