package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Planner couples a finished grid with its preset and search history.
// The grid is never written after construction, so searches may run
// concurrently; only the history is guarded.
type Planner struct {
	grid    *Grid
	config  *PlannerConfig
	history []SearchRecord
	mu      sync.RWMutex
}

// NewPlanner validates the preset and builds its grid
func NewPlanner(config *PlannerConfig, rng *rand.Rand) (*Planner, error) {
	if err := ValidatePlannerConfig(config); err != nil {
		return nil, err
	}

	grid, err := BuildGrid(config, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}

	return &Planner{grid: grid, config: config, history: []SearchRecord{}}, nil
}

// NewPlannerWithGrid wraps an existing grid, as used when restoring a
// persisted session
func NewPlannerWithGrid(config *PlannerConfig, grid *Grid) (*Planner, error) {
	if grid == nil {
		return nil, fmt.Errorf("grid cannot be nil")
	}
	if config == nil {
		config = DefaultPlannerConfig()
	}
	return &Planner{grid: grid, config: config, history: []SearchRecord{}}, nil
}

// Grid returns the planner's grid. Callers must not modify it.
func (p *Planner) Grid() *Grid {
	return p.grid
}

// Config returns the preset the planner was built from
func (p *Planner) Config() *PlannerConfig {
	return p.config
}

// Search runs a search on the planner's grid and appends it to the history
func (p *Planner) Search(runID string, start, goal Coordinate, allowDiagonal bool) (*SearchResult, *SearchRecord, error) {
	result, err := Search(p.grid, start, goal, SearchOptions{AllowDiagonal: allowDiagonal})
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	record := SearchRecord{
		RunID:         runID,
		Start:         start,
		Goal:          goal,
		AllowDiagonal: allowDiagonal,
		Found:         result.Found,
		Steps:         PathLength(result.Path),
		Expanded:      result.Expanded,
		Timestamp:     time.Now().Unix(),
		SearchNumber:  len(p.history) + 1,
	}
	p.history = append(p.history, record)

	return result, &record, nil
}

// History returns a copy of the search history
func (p *Planner) History() []SearchRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	history := make([]SearchRecord, len(p.history))
	copy(history, p.history)
	return history
}

// SetHistory replaces the search history (used for persistence loading)
func (p *Planner) SetHistory(history []SearchRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if history == nil {
		history = []SearchRecord{}
	}
	p.history = history
}

// LastSearch returns the most recent search, or nil if none
func (p *Planner) LastSearch() *SearchRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.history) == 0 {
		return nil
	}
	record := p.history[len(p.history)-1]
	return &record
}
