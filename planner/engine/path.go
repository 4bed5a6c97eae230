package engine

// reconstructPath walks parent links back from goal and returns the
// route in start→goal order.
func reconstructPath(nodes map[Coordinate]*searchNode, goal Coordinate) []Coordinate {
	n, ok := nodes[goal]
	if !ok {
		return nil
	}

	path := make([]Coordinate, n.rng+1)
	current := goal
	for i := len(path) - 1; i >= 0; i-- {
		path[i] = current
		node := nodes[current]
		if node.parent == nil {
			path = path[i:]
			break
		}
		current = *node.parent
	}
	return path
}

// PathIsContiguous reports whether every consecutive pair in path is one
// step apart under the connectivity
func PathIsContiguous(path []Coordinate, allowDiagonal bool) bool {
	for i := 1; i < len(path); i++ {
		if !Adjacent(path[i-1], path[i], allowDiagonal) {
			return false
		}
	}
	return true
}

// PathLength returns the number of moves along path
func PathLength(path []Coordinate) int {
	if len(path) == 0 {
		return 0
	}
	return len(path) - 1
}
