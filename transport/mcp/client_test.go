package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/gridpath/planner/engine"
	"github.com/wricardo/mcp-training/gridpath/planner/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			json.NewEncoder(w).Encode(map[string]string{"id": "abcd"})
		case "/not-found":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "session not found", "code": 404})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]string
	if err := client.apiCall("GET", "/ok", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "abcd" {
		t.Errorf("Expected id abcd, got %v", response["id"])
	}

	err := client.apiCall("GET", "/not-found", nil, nil)
	if err == nil || err.Error() != "session not found" {
		t.Errorf("Expected API error message, got %v", err)
	}

	err = client.apiCall("GET", "/broken", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got: %v", err)
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")
	if err := client.apiCall("GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_createSession(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "ab12",
			ConfigName: "maze",
			Grid:       &engine.GridState{Width: 2, Height: 1, Rows: []string{".#"}, Obstacles: 1, FreeCells: 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]interface{}{
		"config_id":      "maze",
		"obstacle_count": float64(0),
		"allow_diagonal": true,
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Created Session: ab12", "Config: maze", "Grid 2x1", "  0 .#"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
	if body["config_id"] != "maze" || body["obstacle_count"] != float64(0) || body["allow_diagonal"] != true {
		t.Errorf("Unexpected request body %v", body)
	}
	if _, ok := body["width"]; ok {
		t.Error("Absent overrides must not be sent")
	}
}

func TestClient_findPath(t *testing.T) {
	var received service.PathRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/path" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(service.PathResult{
			RunID:        "run-1",
			Found:        true,
			Path:         []engine.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 1}},
			Steps:        1,
			Rendered:     []string{"S.", ".G"},
			Message:      "Path found from (0,0) to (1,1): 1 steps, 2 cells expanded",
			SearchNumber: 4,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, _ := client.handleFindPath(context.Background(), callRequest("find_path", map[string]interface{}{
		"session_id":     "ab12",
		"start_x":        float64(0),
		"start_y":        float64(0),
		"goal_x":         float64(1),
		"goal_y":         float64(1),
		"allow_diagonal": true,
	}))

	text := resultText(t, result)
	for _, want := range []string{"Path found", "(0,0) → (1,1)", "search #4", "  1 .G"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
	if received.Goal != (engine.Coordinate{X: 1, Y: 1}) || received.AllowDiagonal == nil || !*received.AllowDiagonal {
		t.Errorf("Unexpected request %+v", received)
	}

	missing, _ := client.handleFindPath(context.Background(), callRequest("find_path", map[string]interface{}{
		"session_id": "ab12",
		"start_x":    float64(0),
	}))
	if !missing.IsError {
		t.Error("Expected error result for missing coordinates")
	}
}

func TestClient_toolErrorsAreResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "session not found", "code": 404})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleGridState(context.Background(), callRequest("grid_state", map[string]interface{}{"session_id": "zz"}))
	if err != nil {
		t.Fatalf("Handler must not return a Go error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "session not found") {
		t.Errorf("Expected error result, got %+v", result)
	}
}

func TestClient_searchHistoryQuery(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Searches: []engine.SearchRecord{
				{SearchNumber: 2, Start: engine.Coordinate{X: 0, Y: 0}, Goal: engine.Coordinate{X: 3, Y: 0}, Found: true, Steps: 3, Expanded: 4},
				{SearchNumber: 1, Goal: engine.Coordinate{X: 1, Y: 1}, Expanded: 7},
			},
			TotalSearches: 2,
			Page:          1,
			TotalPages:    1,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, _ := client.handleSearchHistory(context.Background(), callRequest("search_history", map[string]interface{}{
		"session_id": "ab12",
		"page":       float64(1),
		"limit":      float64(5),
		"order":      "desc",
	}))

	if query != "limit=5&order=desc&page=1" {
		t.Errorf("Unexpected query %q", query)
	}
	text := resultText(t, result)
	for _, want := range []string{"Total: 2", "#2 (0,0)→(3,0) diagonal=false: 3 steps", "#1 (0,0)→(1,1) diagonal=false: no path, 7 expanded"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_describeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/cells/2/3" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(service.CellInfo{X: 2, Y: 3, State: engine.Obstacle, Glyph: "#"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, _ := client.handleDescribeCell(context.Background(), callRequest("describe_cell", map[string]interface{}{
		"session_id": "ab12", "x": float64(2), "y": float64(3),
	}))

	text := resultText(t, result)
	for _, want := range []string{"(2, 3)", "Character: #", "State: obstacle", "Passable: false", "Free neighbors: none"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_listConfigsAndSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/configs":
			json.NewEncoder(w).Encode([]service.ConfigInfo{
				{ConfigID: "maze", Name: "Maze", Width: 12, Height: 10, ObstacleCount: 51, FixedLayout: true},
			})
		case "/api/sessions":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"count": 1,
				"sessions": []service.SessionInfo{
					{ID: "ab12", ConfigName: "maze", CreatedAt: time.Now(), Grid: &engine.GridState{Width: 12, Height: 10}},
				},
			})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	configs, _ := client.handleListConfigs(context.Background(), callRequest("list_configs", nil))
	if text := resultText(t, configs); !strings.Contains(text, "config_id: maze") || !strings.Contains(text, "fixed layout") {
		t.Errorf("Unexpected configs output: %s", text)
	}

	sessions, _ := client.handleListSessions(context.Background(), callRequest("list_sessions", nil))
	if text := resultText(t, sessions); !strings.Contains(text, "ab12 (Config: maze, Grid: 12x10") {
		t.Errorf("Unexpected sessions output: %s", text)
	}
}

func TestClient_plannerInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")
	result, err := client.handlePlannerInstructions(context.Background(), callRequest("planner_instructions", nil))
	if err != nil {
		t.Fatalf("handlePlannerInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"CONNECTIVITY:", "HOW A SEARCH PICKS ITS ROUTE:", "found=false"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in instructions", want)
		}
	}
}

func TestFormatGrid(t *testing.T) {
	text := formatGrid(&engine.GridState{Width: 12, Height: 2, Rows: []string{"............", "#..........."}, Obstacles: 1, FreeCells: 23})

	for _, want := range []string{"Grid 12x2: 23 free, 1 obstacles", "    012345678901", "  1 #..........."} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %s", want, text)
		}
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"whole":    float64(3),
		"negative": float64(-2),
		"native":   7,
		"fraction": 1.7,
		"text":     "4",
		"seed":     float64(1 << 40),
	}

	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"whole", 3, true},
		{"negative", -2, true},
		{"native", 7, true},
		{"seed", 1 << 40, true},
		{"fraction", 0, false},
		{"text", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		got, ok := intArg(args, tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("intArg(%q) = %d, %t; want %d, %t", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClient_fractionalArgumentsAreRejected(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	path, _ := client.handleFindPath(context.Background(), callRequest("find_path", map[string]interface{}{
		"session_id": "ab12",
		"start_x":    1.7,
		"start_y":    float64(0),
		"goal_x":     float64(2),
		"goal_y":     float64(2),
	}))
	if !path.IsError {
		t.Error("Expected error result for a fractional coordinate")
	}

	created, _ := client.handleCreateSession(context.Background(), callRequest("create_session", map[string]interface{}{
		"width": 10.5,
	}))
	if !created.IsError || !strings.Contains(resultText(t, created), "width must be an integer") {
		t.Error("Expected error result for a fractional width")
	}

	history, _ := client.handleSearchHistory(context.Background(), callRequest("search_history", map[string]interface{}{
		"session_id": "ab12",
		"limit":      2.5,
	}))
	if !history.IsError {
		t.Error("Expected error result for a fractional limit")
	}

	if called {
		t.Error("No API call should be made for rejected arguments")
	}
}
