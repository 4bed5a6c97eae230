package session

import (
	"time"

	"github.com/wricardo/mcp-training/gridpath/planner/engine"
	"github.com/wricardo/mcp-training/gridpath/planner/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// The grid is stored as layout rows so generated obstacles survive a restart.
type PersistedSessionData struct {
	ID             string                `json:"id"`
	ConfigName     string                `json:"config_name"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
	Config         *engine.PlannerConfig `json:"config,omitempty"`
	Layout         []string              `json:"layout"`
	History        []engine.SearchRecord `json:"history"`
}
