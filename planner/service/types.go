package service

import (
	"errors"
	"time"

	"github.com/wricardo/mcp-training/gridpath/planner/engine"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrConfigNotFound = errors.New("configuration not found")
)

// CreateSessionRequest selects a preset and optionally overrides its
// operator parameters. Zero or nil fields keep the preset value.
type CreateSessionRequest struct {
	ConfigID      string `json:"config_id,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	ObstacleCount *int   `json:"obstacle_count,omitempty"`
	AllowDiagonal *bool  `json:"allow_diagonal,omitempty"`
	StepDelayMs   *int   `json:"step_delay_ms,omitempty"`
	Seed          int64  `json:"seed,omitempty"`
}

// SessionInfo provides information about a planning session
type SessionInfo struct {
	ID             string                `json:"id"`
	ConfigName     string                `json:"config_name"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	Grid           *engine.GridState     `json:"grid"`
	Config         *engine.PlannerConfig `json:"config"`
	Searches       int                   `json:"searches"`
	LastSearch     *engine.SearchRecord  `json:"last_search,omitempty"`
}

// CellInfo describes a single grid cell
type CellInfo struct {
	X     int              `json:"x"`
	Y     int              `json:"y"`
	State engine.CellState `json:"state"`
	Glyph string           `json:"glyph"`
	// Neighbors lists the free cells one step away (8-connected)
	Neighbors []engine.Coordinate `json:"neighbors"`
}

// PathRequest asks for a route between two cells. A nil AllowDiagonal
// uses the session preset's connectivity.
type PathRequest struct {
	Start         engine.Coordinate `json:"start"`
	Goal          engine.Coordinate `json:"goal"`
	AllowDiagonal *bool             `json:"allow_diagonal,omitempty"`
	IncludeTrace  bool              `json:"include_trace,omitempty"`
}

// PathResult contains the outcome of a path search
type PathResult struct {
	RunID         string              `json:"run_id"`
	SessionID     string              `json:"session_id"`
	Start         engine.Coordinate   `json:"start"`
	Goal          engine.Coordinate   `json:"goal"`
	AllowDiagonal bool                `json:"allow_diagonal"`
	Found         bool                `json:"found"`
	Path          []engine.Coordinate `json:"path"`
	Steps         int                 `json:"steps"`
	Expanded      int                 `json:"expanded"`
	Opened        int                 `json:"opened"`
	Closed        []engine.Coordinate `json:"closed,omitempty"` // only when include_trace is set
	StepDelayMs   int                 `json:"step_delay_ms"`
	Rendered      []string            `json:"rendered"`
	Message       string              `json:"message"`
	SearchNumber  int                 `json:"search_number"`
}

// HistoryOptions configures search history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated search history
type HistoryResponse struct {
	Searches      []engine.SearchRecord `json:"searches"`
	TotalSearches int                   `json:"total_searches"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
	TotalPages    int                   `json:"total_pages"`
	HasNext       bool                  `json:"has_next"`
	HasPrevious   bool                  `json:"has_previous"`
}

// ConfigInfo provides information about a planner preset
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	ObstacleCount int    `json:"obstacle_count"`
	AllowDiagonal bool   `json:"allow_diagonal"`
	FixedLayout   bool   `json:"fixed_layout"`
}
