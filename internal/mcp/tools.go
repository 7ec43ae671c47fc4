package mcp

import "github.com/mark3labs/mcp-go/mcp"

// routeMessageTool defines the route_message MCP tool.
var routeMessageTool = mcp.NewTool("route_message",
	mcp.WithDescription("Send a member message through the care-team router and return the specialists' replies."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The member's message text"),
	),
	mcp.WithString("sender",
		mcp.Description("Sender name (defaults to the configured member)"),
	),
)

// journeyStateTool defines the journey_state MCP tool.
var journeyStateTool = mcp.NewTool("journey_state",
	mcp.WithDescription("Get the current journey state: week, diagnostic panels, and micro-replans."),
)

// simulateWeekTool defines the simulate_week MCP tool.
var simulateWeekTool = mcp.NewTool("simulate_week",
	mcp.WithDescription("Simulate one journey week and return the weekly report."),
	mcp.WithNumber("week",
		mcp.Description("Week number to simulate (defaults to the next unsimulated week)"),
	),
)

// listIssuesTool defines the list_issues MCP tool.
var listIssuesTool = mcp.NewTool("list_issues",
	mcp.WithDescription("List tracked health issues."),
	mcp.WithString("status",
		mcp.Description("Filter by status"),
		mcp.Enum("open", "resolved"),
	),
)
