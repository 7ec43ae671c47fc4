package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleRouteMessage runs one member message through the chat pipeline.
func (s *Server) handleRouteMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	sender := request.GetString("sender", s.member)

	res, err := s.pipeline.Process(ctx, sender, message, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}
	return jsonResult(res)
}

// handleJourneyState returns the current journey state.
func (s *Server) handleJourneyState(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.machine.State())
}

// handleSimulateWeek advances the journey by one week.
func (s *Server) handleSimulateWeek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	week := request.GetInt("week", s.machine.State().CurrentWeek)
	if week < 1 || week > s.machine.State().TotalWeeks {
		return mcp.NewToolResultError(fmt.Sprintf("week %d out of range [1, %d]", week, s.machine.State().TotalWeeks)), nil
	}
	report, err := s.machine.SimulateWeek(ctx, week)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("simulation failed: %v", err)), nil
	}
	return jsonResult(report)
}

// handleListIssues returns tracked issues, optionally filtered by status.
func (s *Server) handleListIssues(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.issues.List(request.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing issues failed: %v", err)), nil
	}
	if list == nil {
		return mcp.NewToolResultText("[]"), nil
	}
	return jsonResult(list)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
