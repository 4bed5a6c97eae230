package engine

import (
	"math/rand"
	"time"
)

// GenerateObstacles turns min(count, free cells) distinct Free cells into
// Obstacles, chosen uniformly without replacement. It returns how many
// cells changed. A nil rng uses a time-seeded source.
func GenerateObstacles(g *Grid, count int, rng *rand.Rand) int {
	return GenerateObstaclesExcept(g, count, rng)
}

// GenerateObstaclesExcept behaves like GenerateObstacles but never picks
// any of the keep coordinates.
func GenerateObstaclesExcept(g *Grid, count int, rng *rand.Rand, keep ...Coordinate) int {
	candidates := g.CellsWithState(Free)
	if len(keep) > 0 {
		reserved := make(map[Coordinate]bool, len(keep))
		for _, c := range keep {
			reserved[c] = true
		}
		filtered := candidates[:0]
		for _, c := range candidates {
			if !reserved[c] {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	k := min(count, len(candidates))
	if k <= 0 {
		return 0
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// Partial shuffle: each pick draws against the remaining pool and the
	// chosen cell is swapped out of it.
	remaining := len(candidates)
	for i := 0; i < k; i++ {
		idx := rng.Intn(remaining)
		c := candidates[idx]
		g.cells[c.Y*g.width+c.X] = Obstacle
		remaining--
		candidates[idx] = candidates[remaining]
	}

	return k
}
