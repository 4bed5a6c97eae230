package engine

import "math"

// EuclideanDistance is the straight-line distance between two coordinates
func EuclideanDistance(a, b Coordinate) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// ManhattanDistance calculates the Manhattan distance between two coordinates
func ManhattanDistance(a, b Coordinate) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// ChebyshevDistance is the king-move distance between two coordinates
func ChebyshevDistance(a, b Coordinate) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// Adjacent reports whether b is one step from a under the connectivity
func Adjacent(a, b Coordinate, allowDiagonal bool) bool {
	if allowDiagonal {
		return ChebyshevDistance(a, b) == 1
	}
	return ManhattanDistance(a, b) == 1
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
