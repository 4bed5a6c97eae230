// Command validate provides a small CLI that validates planner preset JSON
// files in the ../configs directory. It checks:
//   - JSON structure and the preset's field ranges
//   - Fixed layouts: row count and width, allowed glyphs ('.' and '#')
//   - Obstacle count against the grid's cell count
//   - Connectivity: every free cell of a fixed layout is reachable from the
//     first free cell under the preset's connectivity
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/gridpath/planner/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.PlannerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidatePlannerConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	if len(config.Layout) == 0 {
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d", config.Width, config.Height)
		result.info("Generated obstacles: %d", config.ObstacleCount)
		result.info("Diagonal moves: %t", config.AllowDiagonal)
		return result
	}

	grid, err := engine.ParseLayout(config.Layout)
	if err != nil {
		result.fail("Invalid layout: %v", err)
		return result
	}

	connectivity := validateConnectivity(grid, config.AllowDiagonal)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d", grid.Width(), grid.Height())
		result.info("Layout obstacles: %d", grid.Count(engine.Obstacle))
		result.info("Diagonal moves: %t", config.AllowDiagonal)
	}

	return result
}

// validateConnectivity flood-fills from the first free cell and reports
// free cells the fill could not reach.
func validateConnectivity(grid *engine.Grid, allowDiagonal bool) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	free := grid.CellsWithState(engine.Free)
	if len(free) == 0 {
		result.fail("Layout has no free cells")
		return result
	}

	directions := []engine.Coordinate{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: 0, Y: 1}}
	if allowDiagonal {
		directions = append(directions,
			engine.Coordinate{X: -1, Y: -1}, engine.Coordinate{X: 1, Y: -1},
			engine.Coordinate{X: -1, Y: 1}, engine.Coordinate{X: 1, Y: 1})
	}

	visited := map[engine.Coordinate]bool{free[0]: true}
	queue := []engine.Coordinate{free[0]}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range directions {
			next := engine.Coordinate{X: current.X + dir.X, Y: current.Y + dir.Y}
			if !visited[next] && grid.IsFree(next) {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var unreachable []engine.Coordinate
	for _, c := range free {
		if !visited[c] {
			unreachable = append(unreachable, c)
		}
	}

	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d free cells unreachable from %s", len(unreachable), len(free), free[0])
		for i, c := range unreachable {
			if i == 5 {
				result.fail("... and %d more", len(unreachable)-5)
				break
			}
			result.fail("Unreachable: %s", c)
		}
	} else {
		result.info("Connectivity: all %d free cells reachable", len(free))
	}

	return result
}

// validateDir validates every *.json file in dir, printing a concise report.
// It returns false if any preset is invalid.
func validateDir(dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "validate planner preset files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Value: "../configs",
				Usage: "Directory containing planner presets",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			allValid, err := validateDir(cmd.String("config-dir"))
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				return cli.Exit("❌ Some configurations have errors", 1)
			}
			fmt.Println("✅ All configurations are valid!")
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
