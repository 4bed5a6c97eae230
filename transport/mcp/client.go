package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/gridpath/planner/engine"
	"github.com/wricardo/mcp-training/gridpath/planner/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Path Planner",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Path Planner - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session holds one rectangular grid of free (.) and obstacle (#) cells,
built from a preset. Coordinates are (x,y) with x the column and y the row,
both starting at 0 in the top-left corner.

AVAILABLE TOOLS:
- create_session: Create a grid from a preset, optionally overriding size, obstacles and connectivity
- list_sessions: List all active sessions
- get_session: Get session details and the last search
- delete_session: Delete a session
- grid_state: Show the grid
- find_path: Search for a route between two cells
- search_history: View past searches
- list_configs: List available presets
- describe_cell: Get details about one cell and its free neighbors
- planner_instructions: Explain how searches behave`),
	)

	c.registerTools()
}

func sessionIDSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new planning session from a preset. Size, obstacle count or seed overrides generate a fresh random grid.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (see list_configs). Defaults to classic.",
				},
				"width":          intSchema("Grid width override (1-100)"),
				"height":         intSchema("Grid height override (1-100)"),
				"obstacle_count": intSchema("Number of obstacle cells to generate"),
				"step_delay_ms":  intSchema("Animation delay for live viewers"),
				"seed":           intSchema("Seed for reproducible obstacle placement"),
				"allow_diagonal": map[string]interface{}{
					"type":        "boolean",
					"description": "Default connectivity for searches in this session",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active planning sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and its stored history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Grid and search
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_state",
		Description: "Show the session grid ('.' free, '#' obstacle)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGridState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Search for a route between two cells. Returns the path and the grid with the route drawn (S start, G goal, * path).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
				"start_x":    intSchema("Start column"),
				"start_y":    intSchema("Start row"),
				"goal_x":     intSchema("Goal column"),
				"goal_y":     intSchema("Goal row"),
				"allow_diagonal": map[string]interface{}{
					"type":        "boolean",
					"description": "Allow the 4 diagonal moves (defaults to the session preset)",
				},
				"include_trace": map[string]interface{}{
					"type":        "boolean",
					"description": "Include the order in which cells were expanded",
				},
			},
			Required: []string{"session_id", "start_x", "start_y", "goal_x", "goal_y"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "search_history",
		Description: "Get the search history of a session with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
				"page":       intSchema("Page number (1-based)"),
				"limit":      intSchema("Searches per page"),
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSearchHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available grid presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the state of a single grid cell and its free neighbors",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDSchema(),
				"x":          intSchema("Column"),
				"y":          intSchema("Row"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "planner_instructions",
		Description: "Explain grids, connectivity and how searches pick their route",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePlannerInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads a JSON number argument. Fractional numbers are rejected
// rather than truncated.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// optionalIntArg reads an argument that may be absent. A present value
// that is not an integer is an error.
func optionalIntArg(args map[string]interface{}, key string) (int, bool, error) {
	if _, present := args[key]; !present {
		return 0, false, nil
	}
	v, ok := intArg(args, key)
	if !ok {
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}
	return v, true, nil
}

func sessionPath(sessionID string, parts ...string) string {
	path := "/api/sessions/" + url.PathEscape(sessionID)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	for _, key := range []string{"width", "height", "obstacle_count", "step_delay_ms", "seed"} {
		v, ok, err := optionalIntArg(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ok {
			body[key] = v
		}
	}
	if diagonal, ok := args["allow_diagonal"].(bool); ok {
		body["allow_diagonal"] = diagonal
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		size := "?"
		if s.Grid != nil {
			size = fmt.Sprintf("%dx%d", s.Grid.Width, s.Grid.Height)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Grid: %s, Searches: %d, Created: %s)\n",
			s.ID, s.ConfigName, size, s.Searches, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall("DELETE", sessionPath(sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleGridState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var grid engine.GridState
	if err := c.apiCall("GET", sessionPath(sessionID, "grid"), nil, &grid); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGrid(&grid)), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var req service.PathRequest
	var ok [4]bool
	req.Start.X, ok[0] = intArg(args, "start_x")
	req.Start.Y, ok[1] = intArg(args, "start_y")
	req.Goal.X, ok[2] = intArg(args, "goal_x")
	req.Goal.Y, ok[3] = intArg(args, "goal_y")
	for _, present := range ok {
		if !present {
			return mcp.NewToolResultError("start_x, start_y, goal_x and goal_y are required integers"), nil
		}
	}
	if diagonal, present := args["allow_diagonal"].(bool); present {
		req.AllowDiagonal = &diagonal
	}
	req.IncludeTrace, _ = args["include_trace"].(bool)

	var result service.PathResult
	if err := c.apiCall("POST", sessionPath(sessionID, "path"), req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPathResult(&result)), nil
}

func (c *Client) handleSearchHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	for _, key := range []string{"page", "limit"} {
		v, ok, err := optionalIntArg(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ok {
			params.Set(key, fmt.Sprint(v))
		}
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		moves := "orthogonal"
		if config.AllowDiagonal {
			moves = "diagonal"
		}
		kind := "random"
		if config.FixedLayout {
			kind = "fixed layout"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Obstacles: %d (%s), Moves: %s\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Width, config.Height, config.ObstacleCount, kind, moves)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var cell service.CellInfo
	if err := c.apiCall("GET", sessionPath(sessionID, "cells", fmt.Sprint(x), fmt.Sprint(y)), nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handlePlannerInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Grid Path Planner - Instructions

GRID:
- Cells are free (.) or obstacles (#). The grid never changes after the session is created.
- Coordinates are (x,y): x is the column, y the row, (0,0) is the top-left corner.

CONNECTIVITY:
- Orthogonal: up, left, right, down.
- Diagonal: the four orthogonal moves plus the four diagonals. A diagonal move is
  allowed even when both cells beside it are obstacles.

HOW A SEARCH PICKS ITS ROUTE:
- Every move costs 1, diagonal included.
- Cells are ranked by steps taken so far plus the straight-line distance to the goal.
- A cell keeps the first route that reached it; routes are not improved later.
  The returned path is always valid and contiguous but may not be the shortest.
- Equal ranks go to the cell discovered first, so results are deterministic.

RESULTS:
- found=false with an empty path means the goal cannot be reached
  (blocked in, or the goal itself is an obstacle). That is not an error.
- Coordinates outside the grid are rejected with an error.
- A start equal to the goal returns a one-cell path.

RENDERING:
  S start, G goal, * path, # obstacle, . free`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nCreated: %s\nSearches: %d\n",
		session.ID, session.ConfigName, session.CreatedAt.Format(time.RFC3339), session.Searches)
	if session.Config != nil {
		moves := "orthogonal"
		if session.Config.AllowDiagonal {
			moves = "diagonal"
		}
		fmt.Fprintf(&b, "Moves: %s, Step delay: %dms\n", moves, session.Config.StepDelayMs)
	}
	if session.LastSearch != nil {
		fmt.Fprintf(&b, "Last search: %s\n", formatRecord(*session.LastSearch))
	}
	if session.Grid != nil {
		b.WriteString("\n")
		b.WriteString(formatGrid(session.Grid))
	}
	return b.String()
}

func formatGrid(grid *engine.GridState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grid %dx%d: %d free, %d obstacles\n\n", grid.Width, grid.Height, grid.FreeCells, grid.Obstacles)
	writeRows(&b, grid.Rows)
	return b.String()
}

// writeRows prints rows with a column ruler and row numbers
func writeRows(b *strings.Builder, rows []string) {
	if len(rows) == 0 {
		return
	}
	b.WriteString("    ")
	for x := 0; x < len(rows[0]); x++ {
		fmt.Fprintf(b, "%d", x%10)
	}
	b.WriteString("\n")
	for y, row := range rows {
		fmt.Fprintf(b, "%3d %s\n", y, row)
	}
}

func formatPathResult(result *service.PathResult) string {
	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n")

	moves := "orthogonal"
	if result.AllowDiagonal {
		moves = "diagonal"
	}
	fmt.Fprintf(&b, "Run: %s (search #%d, %s moves, %d opened)\n", result.RunID, result.SearchNumber, moves, result.Opened)

	if result.Found {
		cells := make([]string, len(result.Path))
		for i, c := range result.Path {
			cells[i] = c.String()
		}
		fmt.Fprintf(&b, "Path: %s\n", strings.Join(cells, " → "))
	}
	if len(result.Closed) > 0 {
		cells := make([]string, len(result.Closed))
		for i, c := range result.Closed {
			cells[i] = c.String()
		}
		fmt.Fprintf(&b, "Expansion order: %s\n", strings.Join(cells, " "))
	}

	b.WriteString("\n")
	writeRows(&b, result.Rendered)
	return b.String()
}

func formatRecord(r engine.SearchRecord) string {
	outcome := "no path"
	if r.Found {
		outcome = fmt.Sprintf("%d steps", r.Steps)
	}
	return fmt.Sprintf("#%d %s→%s diagonal=%t: %s, %d expanded", r.SearchNumber, r.Start, r.Goal, r.AllowDiagonal, outcome, r.Expanded)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search History (Page %d/%d, Total: %d)\n\n", history.Page, history.TotalPages, history.TotalSearches)
	for _, r := range history.Searches {
		b.WriteString(formatRecord(r))
		b.WriteString("\n")
	}
	if history.HasNext {
		b.WriteString("\nMore searches on the next page.\n")
	}
	return b.String()
}

func formatCell(cell *service.CellInfo) string {
	passable := cell.State == engine.Free
	neighbors := make([]string, len(cell.Neighbors))
	for i, n := range cell.Neighbors {
		neighbors[i] = n.String()
	}
	if len(neighbors) == 0 {
		neighbors = []string{"none"}
	}

	return fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %s
State: %s
Passable: %v
Free neighbors: %s`,
		cell.X, cell.Y, cell.Glyph, cell.State, passable, strings.Join(neighbors, " "))
}
