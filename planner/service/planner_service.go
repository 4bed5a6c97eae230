package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/gridpath/planner/engine"
)

// PlannerService defines all planner operations
type PlannerService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Grid
	GetGrid(ctx context.Context, sessionID string) (*engine.GridState, error)
	GetCell(ctx context.Context, sessionID string, x, y int) (*CellInfo, error)
	CellsWithState(ctx context.Context, sessionID string, state engine.CellState) ([]engine.Coordinate, error)

	// Path Search
	FindPath(ctx context.Context, sessionID string, req PathRequest) (*PathResult, error)
	GetSearchHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PlannerConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.PlannerConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.PlannerConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles planner preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PlannerConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PlannerConfig
	SaveConfig(name string, config *engine.PlannerConfig) error
}

// Session represents an active planning session
type Session struct {
	ID        string
	ConfigID  string
	Planner   *engine.Planner
	Config    *engine.PlannerConfig
	CreatedAt time.Time

	mu             sync.RWMutex
	lastAccessedAt time.Time
}

// LastAccessed returns when the session was last used
func (s *Session) LastAccessed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccessedAt
}

// SetLastAccessed records when the session was last used
func (s *Session) SetLastAccessed(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = t
}
