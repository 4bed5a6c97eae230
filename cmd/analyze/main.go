// Command analyze prints quick, human-readable statistics about the presets in
// the project's configs directory. For each preset it builds the grid, reports
// obstacle density, and runs corner-to-corner searches in both connectivities
// to highlight presets whose corners cannot reach each other.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/gridpath/planner/config"
	"github.com/wricardo/mcp-training/gridpath/planner/engine"
)

// ConnectivityReport is the outcome of one corner-to-corner search.
type ConnectivityReport struct {
	AllowDiagonal bool
	Found         bool
	Steps         int
	Expanded      int
}

// PresetReport summarizes a built preset.
type PresetReport struct {
	Name      string
	Width     int
	Height    int
	Obstacles int
	FreeCells int
	Start     engine.Coordinate
	Goal      engine.Coordinate
	Searches  []ConnectivityReport
}

// Density is the share of cells that are obstacles.
func (r *PresetReport) Density() float64 {
	total := r.Width * r.Height
	if total == 0 {
		return 0
	}
	return float64(r.Obstacles) / float64(total)
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "summarize planner presets and check corner reachability",
		ArgsUsage: "[preset ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing planner presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Seed for generated obstacles (0 uses each preset's own seed)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	presets := cmd.Args().Slice()
	if len(presets) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			presets = append(presets, info.ConfigID)
		}
	}

	seed := cmd.Int64("seed")
	for _, id := range presets {
		fmt.Printf("\n=== Analyzing %s ===\n", id)

		preset, err := manager.LoadConfig(id)
		if err != nil {
			fmt.Printf("Error loading preset: %v\n", err)
			continue
		}

		var rng *rand.Rand
		if seed != 0 {
			rng = rand.New(rand.NewSource(seed))
		}
		report, err := analyzePreset(preset, rng)
		if err != nil {
			fmt.Printf("Error building grid: %v\n", err)
			continue
		}
		printReport(os.Stdout, report)
	}
	return nil
}

// analyzePreset builds the preset's grid and searches between the first and
// last free cells in row-major order.
func analyzePreset(preset *engine.PlannerConfig, rng *rand.Rand) (*PresetReport, error) {
	grid, err := engine.BuildGrid(preset, rng)
	if err != nil {
		return nil, err
	}

	report := &PresetReport{
		Name:      preset.Name,
		Width:     grid.Width(),
		Height:    grid.Height(),
		Obstacles: grid.Count(engine.Obstacle),
		FreeCells: grid.Count(engine.Free),
	}

	free := grid.CellsWithState(engine.Free)
	if len(free) == 0 {
		return report, nil
	}
	report.Start = free[0]
	report.Goal = free[len(free)-1]

	for _, diagonal := range []bool{false, true} {
		result, err := engine.Search(grid, report.Start, report.Goal, engine.SearchOptions{AllowDiagonal: diagonal})
		if err != nil {
			return nil, err
		}
		report.Searches = append(report.Searches, ConnectivityReport{
			AllowDiagonal: diagonal,
			Found:         result.Found,
			Steps:         engine.PathLength(result.Path),
			Expanded:      result.Expanded,
		})
	}

	return report, nil
}

func printReport(w io.Writer, report *PresetReport) {
	fmt.Fprintf(w, "Name: %s\n", report.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", report.Width, report.Height)
	fmt.Fprintf(w, "Obstacles: %d (%.1f%%)\n", report.Obstacles, report.Density()*100)
	fmt.Fprintf(w, "Free Cells: %d\n", report.FreeCells)

	if len(report.Searches) == 0 {
		fmt.Fprintf(w, "WARNING: no free cells, nothing to search\n")
		return
	}

	fmt.Fprintf(w, "Corner search: %s → %s\n", report.Start, report.Goal)
	for _, search := range report.Searches {
		mode := "orthogonal"
		if search.AllowDiagonal {
			mode = "diagonal"
		}
		if search.Found {
			fmt.Fprintf(w, "  %-10s %d steps, %d cells expanded\n", mode, search.Steps, search.Expanded)
		} else {
			fmt.Fprintf(w, "  %-10s WARNING: unreachable after %d cells expanded\n", mode, search.Expanded)
		}
	}
}
