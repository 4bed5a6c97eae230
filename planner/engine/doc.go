// Package engine provides the core path-planning logic for the grid planner.
//
// The engine package implements:
//   - A rectangular Grid of Free and Obstacle cells
//   - Random obstacle placement without replacement
//   - Best-first path search over 4- or 8-connected neighbors
//   - Path reconstruction from parent links
//   - Planner preset loading and validation
//
// Core Types:
//
// Grid holds the cell states and is the only thing a search reads.
// Search returns a SearchResult carrying the path together with the order
// in which cells were finalized, which visualizers replay. PlannerConfig
// describes a preset loaded from JSON.
//
// Usage:
//
//	grid, err := engine.NewGrid(20, 15)
//	if err != nil {
//		log.Fatal(err)
//	}
//	engine.GenerateObstacles(grid, 60, nil)
//
//	path, found, err := engine.FindPath(grid,
//		engine.Coordinate{X: 0, Y: 0}, engine.Coordinate{X: 19, Y: 14}, false)
//
// Search Rules:
//
// A cell is opened once, with its step count, Euclidean distance to the
// goal and parent fixed at that moment; it is never reopened with a better
// parent. The next cell is the open one with the highest weight
// -(range+distance), ties going to the earliest opened. Diagonal moves
// cost one step like orthogonal ones. Paths are therefore not always the
// shortest possible. An unreachable goal is reported as not found rather
// than as an error.
package engine
