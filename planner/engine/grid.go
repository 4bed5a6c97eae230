package engine

import (
	"fmt"
	"strings"
)

// Grid is a rectangular array of cell states stored row-major
type Grid struct {
	width  int
	height int
	cells  []CellState
}

// NewGrid creates a width x height grid with every cell Free
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}

	cells := make([]CellState, width*height)
	for i := range cells {
		cells[i] = Free
	}

	return &Grid{width: width, height: height, cells: cells}, nil
}

// ParseLayout builds a grid from glyph rows ('.' free, '#' obstacle).
// All rows must have the same length.
func ParseLayout(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidDimension)
	}

	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}

	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidDimension, y, len(row), g.width)
		}
		for x := 0; x < len(row); x++ {
			state, err := ParseCellState(string(row[x]))
			if err != nil {
				return nil, fmt.Errorf("layout row %d col %d: %w", y, x, err)
			}
			g.cells[y*g.width+x] = state
		}
	}

	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c lies inside the grid
func (g *Grid) InBounds(c Coordinate) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// State returns the state of the cell at x,y
func (g *Grid) State(x, y int) (CellState, error) {
	c := Coordinate{X: x, Y: y}
	if !g.InBounds(c) {
		return Obstacle, g.outOfRange(c)
	}
	return g.cells[y*g.width+x], nil
}

// SetState changes the state of the cell at x,y
func (g *Grid) SetState(x, y int, state CellState) error {
	c := Coordinate{X: x, Y: y}
	if !g.InBounds(c) {
		return g.outOfRange(c)
	}
	if state != Free && state != Obstacle {
		return fmt.Errorf("%w: %d", ErrInvalidState, int(state))
	}
	g.cells[y*g.width+x] = state
	return nil
}

// IsFree reports whether c is in range and Free
func (g *Grid) IsFree(c Coordinate) bool {
	return g.InBounds(c) && g.cells[c.Y*g.width+c.X] == Free
}

// CellsWithState returns every coordinate in the given state, y outer and x inner
func (g *Grid) CellsWithState(state CellState) []Coordinate {
	var result []Coordinate
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] == state {
				result = append(result, Coordinate{X: x, Y: y})
			}
		}
	}
	return result
}

// Count returns the number of cells in the given state
func (g *Grid) Count(state CellState) int {
	count := 0
	for _, s := range g.cells {
		if s == state {
			count++
		}
	}
	return count
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	cells := make([]CellState, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// Layout returns the grid as glyph rows
func (g *Grid) Layout() []string {
	rows := make([]string, g.height)
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		b.Reset()
		for x := 0; x < g.width; x++ {
			b.WriteByte(g.cells[y*g.width+x].Glyph())
		}
		rows[y] = b.String()
	}
	return rows
}

// Render returns the layout with the path, start and goal drawn over it
func (g *Grid) Render(path []Coordinate, start, goal *Coordinate) []string {
	canvas := make([][]byte, g.height)
	for y, row := range g.Layout() {
		canvas[y] = []byte(row)
	}

	mark := func(c Coordinate, glyph byte) {
		if g.InBounds(c) {
			canvas[c.Y][c.X] = glyph
		}
	}
	for _, c := range path {
		mark(c, PathGlyph)
	}
	if start != nil {
		mark(*start, StartGlyph)
	}
	if goal != nil {
		mark(*goal, GoalGlyph)
	}

	rows := make([]string, g.height)
	for y := range canvas {
		rows[y] = string(canvas[y])
	}
	return rows
}

// Snapshot returns the serializable view of the grid
func (g *Grid) Snapshot() *GridState {
	obstacles := g.Count(Obstacle)
	return &GridState{
		Width:     g.width,
		Height:    g.height,
		Rows:      g.Layout(),
		Obstacles: obstacles,
		FreeCells: len(g.cells) - obstacles,
	}
}

func (g *Grid) outOfRange(c Coordinate) error {
	return fmt.Errorf("%w: %s not in %dx%d grid", ErrOutOfRange, c, g.width, g.height)
}
