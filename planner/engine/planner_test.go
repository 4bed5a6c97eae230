package engine

import (
	"math/rand"
	"sync"
	"testing"
)

func TestNewPlanner(t *testing.T) {
	planner, err := NewPlanner(createTestConfig(), rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("Failed to create planner: %v", err)
	}
	if planner.Grid().Count(Obstacle) != 10 {
		t.Errorf("Expected 10 obstacles, got %d", planner.Grid().Count(Obstacle))
	}
	if len(planner.History()) != 0 {
		t.Error("Expected empty history")
	}
	if planner.LastSearch() != nil {
		t.Error("Expected no last search")
	}
}

func TestNewPlanner_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = ""

	if _, err := NewPlanner(config, nil); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewPlannerWithGrid(t *testing.T) {
	if _, err := NewPlannerWithGrid(nil, nil); err == nil {
		t.Error("Expected error for nil grid")
	}

	grid, _ := NewGrid(2, 2)
	planner, err := NewPlannerWithGrid(nil, grid)
	if err != nil {
		t.Fatalf("NewPlannerWithGrid failed: %v", err)
	}
	if planner.Config() == nil {
		t.Error("Expected default config")
	}
}

func TestPlanner_SearchRecordsHistory(t *testing.T) {
	grid, _ := NewGrid(3, 3)
	planner, _ := NewPlannerWithGrid(createTestConfig(), grid)

	result, record, err := planner.Search("run-1", Coordinate{0, 0}, Coordinate{2, 2}, true)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !result.Found || record.Steps != 2 || record.SearchNumber != 1 {
		t.Errorf("Unexpected record %+v", record)
	}

	planner.Search("run-2", Coordinate{0, 0}, Coordinate{2, 2}, false)

	history := planner.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[1].RunID != "run-2" || history[1].Steps != 4 || history[1].SearchNumber != 2 {
		t.Errorf("Unexpected second record %+v", history[1])
	}
	if last := planner.LastSearch(); last == nil || last.RunID != "run-2" {
		t.Errorf("Expected last search run-2, got %+v", last)
	}
}

func TestPlanner_FailedSearchIsNotRecorded(t *testing.T) {
	grid, _ := NewGrid(3, 3)
	planner, _ := NewPlannerWithGrid(createTestConfig(), grid)

	if _, _, err := planner.Search("bad", Coordinate{5, 5}, Coordinate{0, 0}, false); err == nil {
		t.Fatal("Expected out of range error")
	}
	if len(planner.History()) != 0 {
		t.Error("Errored search must not be recorded")
	}
}

func TestPlanner_ConcurrentSearches(t *testing.T) {
	planner, _ := NewPlanner(createTestConfig(), rand.New(rand.NewSource(8)))
	free := planner.Grid().CellsWithState(Free)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			planner.Search("", free[0], free[i%len(free)], i%2 == 0)
		}(i)
	}
	wg.Wait()

	history := planner.History()
	if len(history) != 16 {
		t.Fatalf("Expected 16 records, got %d", len(history))
	}
	seen := map[int]bool{}
	for _, r := range history {
		seen[r.SearchNumber] = true
	}
	if len(seen) != 16 {
		t.Error("Search numbers must be unique")
	}
}

func TestPlanner_SetHistory(t *testing.T) {
	grid, _ := NewGrid(2, 2)
	planner, _ := NewPlannerWithGrid(nil, grid)

	planner.SetHistory([]SearchRecord{{RunID: "a", SearchNumber: 1}})
	if len(planner.History()) != 1 {
		t.Error("Expected restored history")
	}
	planner.SetHistory(nil)
	if planner.History() == nil {
		t.Error("History must never be nil")
	}
}
