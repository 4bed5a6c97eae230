package engine

var (
	orthogonalOffsets = []Coordinate{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	diagonalOffsets   = []Coordinate{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
)

// SearchOptions configures a single search
type SearchOptions struct {
	AllowDiagonal bool
}

// SearchResult contains the outcome of a search
type SearchResult struct {
	Found bool
	// Path runs from start to goal inclusive; nil when not found
	Path []Coordinate
	// Closed lists coordinates in the order they were selected as current
	Closed    []Coordinate
	Expanded  int
	Opened    int
	GoalRange int
}

// searchNode is fixed at the moment its coordinate is first opened
type searchNode struct {
	rng       int
	heuristic float64
	weight    float64
	parent    *Coordinate
	seq       int
}

// searchContext is the per-call arena. Nothing in it outlives Search.
type searchContext struct {
	grid    *Grid
	goal    Coordinate
	offsets []Coordinate
	nodes   map[Coordinate]*searchNode
	open    []Coordinate
	closed  []Coordinate
	seq     int
}

// FindPath returns the start→goal route. found is false, with a nil
// error, when the goal cannot be reached.
func FindPath(g *Grid, start, goal Coordinate, allowDiagonal bool) ([]Coordinate, bool, error) {
	result, err := Search(g, start, goal, SearchOptions{AllowDiagonal: allowDiagonal})
	if err != nil {
		return nil, false, err
	}
	return result.Path, result.Found, nil
}

// Search runs the best-first search from start to goal.
//
// Each coordinate is opened at most once and its range, heuristic and
// parent are never revised afterwards. Every step costs 1, diagonal
// included, while the heuristic is Euclidean. The open coordinate with
// the highest weight, -(range+heuristic), is selected next; equal weights
// go to whichever was opened first.
func Search(g *Grid, start, goal Coordinate, opts SearchOptions) (*SearchResult, error) {
	if !g.InBounds(start) {
		return nil, g.outOfRange(start)
	}
	if !g.InBounds(goal) {
		return nil, g.outOfRange(goal)
	}

	if start == goal {
		return &SearchResult{
			Found:     true,
			Path:      []Coordinate{start},
			Closed:    []Coordinate{start},
			Expanded:  1,
			Opened:    1,
			GoalRange: 0,
		}, nil
	}

	sc := &searchContext{
		grid:    g,
		goal:    goal,
		offsets: orthogonalOffsets,
		nodes:   make(map[Coordinate]*searchNode),
	}
	if opts.AllowDiagonal {
		sc.offsets = diagonalOffsets
	}

	sc.openNode(start, 0, nil)
	sc.closeNode(0)

	current := start
	for {
		sc.expand(current)

		idx := sc.selectBest()
		if idx < 0 {
			return sc.result(false), nil
		}
		current = sc.closeNode(idx)

		if current == goal {
			return sc.result(true), nil
		}
	}
}

// available: in range, Free, neither closed nor open. Closed coordinates
// keep their node, so one map lookup covers both sets.
func (sc *searchContext) available(c Coordinate) bool {
	if !sc.grid.IsFree(c) {
		return false
	}
	_, seen := sc.nodes[c]
	return !seen
}

func (sc *searchContext) expand(current Coordinate) {
	rng := sc.nodes[current].rng + 1
	parent := current
	for _, off := range sc.offsets {
		next := Coordinate{X: current.X + off.X, Y: current.Y + off.Y}
		if sc.available(next) {
			sc.openNode(next, rng, &parent)
		}
	}
}

func (sc *searchContext) openNode(c Coordinate, rng int, parent *Coordinate) {
	h := EuclideanDistance(c, sc.goal)
	sc.nodes[c] = &searchNode{
		rng:       rng,
		heuristic: h,
		weight:    -(float64(rng) + h),
		parent:    parent,
		seq:       sc.seq,
	}
	sc.seq++
	sc.open = append(sc.open, c)
}

// selectBest returns the open-list index of the highest weight, the
// earliest opened entry winning ties, or -1 when the open list is empty.
func (sc *searchContext) selectBest() int {
	best := -1
	var top *searchNode
	for i, c := range sc.open {
		n := sc.nodes[c]
		if top == nil || n.weight > top.weight || (n.weight == top.weight && n.seq < top.seq) {
			best = i
			top = n
		}
	}
	return best
}

func (sc *searchContext) closeNode(idx int) Coordinate {
	c := sc.open[idx]
	sc.open = append(sc.open[:idx], sc.open[idx+1:]...)
	sc.closed = append(sc.closed, c)
	return c
}

func (sc *searchContext) result(found bool) *SearchResult {
	res := &SearchResult{
		Found:     found,
		Closed:    sc.closed,
		Expanded:  len(sc.closed),
		Opened:    len(sc.nodes),
		GoalRange: NoRange,
	}
	if found {
		res.Path = reconstructPath(sc.nodes, sc.goal)
		res.GoalRange = sc.nodes[sc.goal].rng
	}
	return res
}
