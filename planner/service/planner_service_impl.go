package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/gridpath/planner/engine"
)

// plannerServiceImpl implements the PlannerService interface
type plannerServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewPlannerService creates a new planner service instance
func NewPlannerService(sessions SessionManager, configs ConfigManager) PlannerService {
	return &plannerServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession builds a grid from a preset and opens a session for it
func (s *plannerServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var base *engine.PlannerConfig
	configID := req.ConfigID
	if configID != "" {
		loaded, err := s.configs.LoadConfig(configID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configID, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configID, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
		base = loaded
	} else {
		base = s.configs.GetDefault()
		configID = s.getConfigID(base.Name)
	}

	config := applyOverrides(base, req)
	if err := engine.ValidatePlannerConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return toSessionInfo(session), nil
}

// GetSession retrieves session information
func (s *plannerServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return toSessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *plannerServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, toSessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *plannerServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// GetGrid returns the serializable grid of a session
func (s *plannerServiceImpl) GetGrid(ctx context.Context, sessionID string) (*engine.GridState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Planner.Grid().Snapshot(), nil
}

// GetCell describes one cell and its free neighbors
func (s *plannerServiceImpl) GetCell(ctx context.Context, sessionID string, x, y int) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	grid := session.Planner.Grid()
	state, err := grid.State(x, y)
	if err != nil {
		return nil, err
	}

	neighbors := []engine.Coordinate{}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c := engine.Coordinate{X: x + dx, Y: y + dy}
			if grid.IsFree(c) {
				neighbors = append(neighbors, c)
			}
		}
	}

	return &CellInfo{
		X:         x,
		Y:         y,
		State:     state,
		Glyph:     string(state.Glyph()),
		Neighbors: neighbors,
	}, nil
}

// CellsWithState lists a session's cells in the given state, row-major
func (s *plannerServiceImpl) CellsWithState(ctx context.Context, sessionID string, state engine.CellState) ([]engine.Coordinate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	cells := session.Planner.Grid().CellsWithState(state)
	if cells == nil {
		cells = []engine.Coordinate{}
	}
	return cells, nil
}

// FindPath searches the session grid and records the search in its history.
// Searches share the read lock; the session file is written after it is released.
func (s *plannerServiceImpl) FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResult, error) {
	s.mu.RLock()
	session, err := s.getSession(sessionID)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}

	allowDiagonal := session.Config.AllowDiagonal
	if req.AllowDiagonal != nil {
		allowDiagonal = *req.AllowDiagonal
	}

	runID := uuid.NewString()
	result, record, err := session.Planner.Search(runID, req.Start, req.Goal, allowDiagonal)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("find path: %w", err)
	}

	if err := s.sessions.Save(session.ID); err != nil {
		log.Printf("Warning: Failed to persist session %s after search: %v", sessionID, err)
	}

	start, goal := req.Start, req.Goal
	pathResult := &PathResult{
		RunID:         runID,
		SessionID:     session.ID,
		Start:         start,
		Goal:          goal,
		AllowDiagonal: allowDiagonal,
		Found:         result.Found,
		Path:          result.Path,
		Steps:         record.Steps,
		Expanded:      result.Expanded,
		Opened:        result.Opened,
		StepDelayMs:   session.Config.StepDelayMs,
		Rendered:      session.Planner.Grid().Render(result.Path, &start, &goal),
		SearchNumber:  record.SearchNumber,
	}
	if pathResult.Path == nil {
		pathResult.Path = []engine.Coordinate{}
	}
	if req.IncludeTrace {
		pathResult.Closed = result.Closed
	}

	if result.Found {
		pathResult.Message = fmt.Sprintf("Path found from %s to %s: %d steps, %d cells expanded",
			start, goal, record.Steps, result.Expanded)
	} else {
		pathResult.Message = fmt.Sprintf("No path from %s to %s (%d cells expanded)",
			start, goal, result.Expanded)
	}

	return pathResult, nil
}

// GetSearchHistory returns paginated search history
func (s *plannerServiceImpl) GetSearchHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := session.Planner.History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > engine.MaxHistoryLimit {
		opts.Limit = engine.MaxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	var searches []engine.SearchRecord
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			searches = append(searches, history[i])
		}
	} else if start < total {
		searches = history[start:end]
	}

	if searches == nil {
		searches = []engine.SearchRecord{}
	}

	return &HistoryResponse{
		Searches:      searches,
		TotalSearches: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// ListConfigs returns all available presets
func (s *plannerServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific preset
func (s *plannerServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PlannerConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a preset to disk
func (s *plannerServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PlannerConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *plannerServiceImpl) getSession(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return session, nil
}

// getConfigID returns the config_id for a given display name
func (s *plannerServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// applyOverrides returns a copy of base with the request's operator
// parameters applied. Changing the grid shape or obstacle count drops a
// fixed layout, since the layout no longer describes the grid.
func applyOverrides(base *engine.PlannerConfig, req CreateSessionRequest) *engine.PlannerConfig {
	config := *base
	config.Layout = append([]string(nil), base.Layout...)

	reshaped := false
	if req.Width != 0 {
		config.Width = req.Width
		reshaped = true
	}
	if req.Height != 0 {
		config.Height = req.Height
		reshaped = true
	}
	if req.ObstacleCount != nil {
		config.ObstacleCount = *req.ObstacleCount
		reshaped = true
	}
	if req.AllowDiagonal != nil {
		config.AllowDiagonal = *req.AllowDiagonal
	}
	if req.StepDelayMs != nil {
		config.StepDelayMs = *req.StepDelayMs
	}
	if req.Seed != 0 {
		config.Seed = req.Seed
		reshaped = true
	}
	if reshaped {
		config.Layout = nil
	}

	return &config
}

func toSessionInfo(session *Session) *SessionInfo {
	history := session.Planner.History()
	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessed(),
		Grid:           session.Planner.Grid().Snapshot(),
		Config:         session.Config,
		Searches:       len(history),
		LastSearch:     session.Planner.LastSearch(),
	}
}
