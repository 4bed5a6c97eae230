package engine

import (
	"errors"
	"fmt"
)

// CellState represents whether a grid cell can be traversed
type CellState int

const (
	Obstacle CellState = iota
	Free
)

const (
	// Layout glyphs
	FreeGlyph     = '.'
	ObstacleGlyph = '#'
	StartGlyph    = 'S'
	GoalGlyph     = 'G'
	PathGlyph     = '*'

	// Validation constants
	MinGridSize     = 1
	MaxGridSize     = 100
	MaxStepDelayMs  = 10000
	NoRange         = -1
	DefaultDelayMs  = 50
	MaxHistoryLimit = 100
)

var (
	ErrInvalidDimension = errors.New("invalid grid dimension")
	ErrOutOfRange       = errors.New("coordinate out of range")
	ErrInvalidState     = errors.New("invalid cell state")
)

// String returns the lowercase name of the state
func (s CellState) String() string {
	switch s {
	case Obstacle:
		return "obstacle"
	case Free:
		return "free"
	default:
		return fmt.Sprintf("CellState(%d)", int(s))
	}
}

// Glyph returns the layout character for the state
func (s CellState) Glyph() byte {
	if s == Free {
		return FreeGlyph
	}
	return ObstacleGlyph
}

// MarshalText implements encoding.TextMarshaler
func (s CellState) MarshalText() ([]byte, error) {
	if s != Obstacle && s != Free {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *CellState) UnmarshalText(text []byte) error {
	state, err := ParseCellState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseCellState converts "free"/"obstacle" (or their glyphs) to a CellState
func ParseCellState(value string) (CellState, error) {
	switch value {
	case "free", string(FreeGlyph):
		return Free, nil
	case "obstacle", string(ObstacleGlyph):
		return Obstacle, nil
	}
	return Obstacle, fmt.Errorf("%w: %q", ErrInvalidState, value)
}

// Coordinate is an x,y cell position
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String formats the coordinate as (x,y)
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// GridState is the serializable view of a grid
type GridState struct {
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Rows      []string `json:"rows"`
	Obstacles int      `json:"obstacles"`
	FreeCells int      `json:"free_cells"`
}

// SearchRecord represents a single search in a session's history
type SearchRecord struct {
	RunID         string     `json:"run_id"`
	Start         Coordinate `json:"start"`
	Goal          Coordinate `json:"goal"`
	AllowDiagonal bool       `json:"allow_diagonal"`
	Found         bool       `json:"found"`
	Steps         int        `json:"steps"`
	Expanded      int        `json:"expanded"`
	Timestamp     int64      `json:"timestamp"`
	SearchNumber  int        `json:"search_number"`
}
