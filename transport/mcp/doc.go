// Package mcp exposes the grid path planner to AI agents over the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API, and the JSON response is formatted as plain text an agent can read.
// Tool errors are returned as MCP error results, never as Go errors.
//
// MCP Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - grid_state: the grid with a column ruler and row numbers
//   - find_path: a route between two cells, drawn over the grid
//   - search_history: paginated past searches
//   - list_configs, describe_cell, planner_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp, handled by the main server
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
