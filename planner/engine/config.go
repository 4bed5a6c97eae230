package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PlannerConfig represents a planner preset loaded from JSON
type PlannerConfig struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	ObstacleCount int      `json:"obstacle_count"`
	AllowDiagonal bool     `json:"allow_diagonal"`
	StepDelayMs   int      `json:"step_delay_ms"`
	Seed          int64    `json:"seed,omitempty"`
	Layout        []string `json:"layout,omitempty"`
}

// ValidatePlannerConfig checks that a preset describes a buildable grid
func ValidatePlannerConfig(config *PlannerConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}

	if config.ObstacleCount < 0 {
		return fmt.Errorf("config validation: obstacle_count must not be negative, got %d", config.ObstacleCount)
	}
	if config.ObstacleCount >= config.Width*config.Height {
		return fmt.Errorf("config validation: obstacle_count must leave at least one free cell, got %d for a %dx%d grid",
			config.ObstacleCount, config.Width, config.Height)
	}

	if config.StepDelayMs < 0 || config.StepDelayMs > MaxStepDelayMs {
		return fmt.Errorf("config validation: step_delay_ms must be between 0 and %d, got %d", MaxStepDelayMs, config.StepDelayMs)
	}

	if len(config.Layout) > 0 {
		if len(config.Layout) != config.Height {
			return fmt.Errorf("config validation: layout must have %d rows to match height, got %d",
				config.Height, len(config.Layout))
		}
		for i, row := range config.Layout {
			if len(row) != config.Width {
				return fmt.Errorf("config validation: row %d must have %d characters to match width, got %d",
					i+1, config.Width, len(row))
			}
			for j, char := range row {
				if char != FreeGlyph && char != ObstacleGlyph {
					return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
				}
			}
		}
	}

	return nil
}

// LoadPlannerConfig loads a preset from a JSON file
func LoadPlannerConfig(filename string) (*PlannerConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config PlannerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidatePlannerConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultPlannerConfig returns the preset used when none is supplied
func DefaultPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		Name:          "default",
		Description:   "20x15 grid with scattered obstacles",
		Width:         20,
		Height:        15,
		ObstacleCount: 60,
		AllowDiagonal: false,
		StepDelayMs:   DefaultDelayMs,
	}
}

// BuildGrid creates the grid a preset describes. A fixed layout is used
// as-is; otherwise obstacles are generated once with rng, falling back to
// the preset seed and then the clock when rng is nil.
func BuildGrid(config *PlannerConfig, rng *rand.Rand) (*Grid, error) {
	if config == nil {
		config = DefaultPlannerConfig()
	}

	if len(config.Layout) > 0 {
		return ParseLayout(config.Layout)
	}

	grid, err := NewGrid(config.Width, config.Height)
	if err != nil {
		return nil, err
	}

	if rng == nil {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	GenerateObstacles(grid, config.ObstacleCount, rng)

	return grid, nil
}
