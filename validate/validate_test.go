package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/gridpath/planner/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasMessage(result ValidationResult, substr string) bool {
	for _, msg := range result.Errors {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidLayout(t *testing.T) {
	path := writeConfig(t, `{
		"name": "Test Layout",
		"width": 5,
		"height": 3,
		"allow_diagonal": false,
		"step_delay_ms": 20,
		"layout": [
			"..#..",
			"..#..",
			"....."
		]
	}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "preset.json" {
		t.Errorf("Expected base file name, got %s", result.File)
	}
	for _, want := range []string{"Name: Test Layout", "Grid: 5x3", "Layout obstacles: 2", "all 13 free cells reachable"} {
		if !hasMessage(result, want) {
			t.Errorf("Expected %q in %v", want, result.Errors)
		}
	}
}

func TestValidateConfig_GeneratedPreset(t *testing.T) {
	path := writeConfig(t, `{"name": "Gen", "width": 10, "height": 8, "obstacle_count": 12, "step_delay_ms": 40}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, got %v", result.Errors)
	}
	if !hasMessage(result, "Generated obstacles: 12") {
		t.Errorf("Expected generated obstacle count, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	result := validateConfig(writeConfig(t, `{"name": "broken",`))
	if result.Valid || !hasMessage(result, "Invalid JSON") {
		t.Errorf("Expected invalid JSON error, got %v", result.Errors)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/preset.json")
	if result.Valid || !hasMessage(result, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_RangeErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"no name", `{"width": 3, "height": 3}`, "name is required"},
		{"zero width", `{"name": "x", "width": 0, "height": 3}`, "width must be between"},
		{"all obstacles", `{"name": "x", "width": 2, "height": 2, "obstacle_count": 4}`, "at least one free cell"},
		{"negative delay", `{"name": "x", "width": 2, "height": 2, "step_delay_ms": -1}`, "step_delay_ms"},
		{"short layout", `{"name": "x", "width": 2, "height": 2, "layout": [".."]}`, "layout must have 2 rows"},
		{"bad glyph", `{"name": "x", "width": 2, "height": 1, "layout": [".R"]}`, "invalid character 'R'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writeConfig(t, tt.content))
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !hasMessage(result, tt.message) {
				t.Errorf("Expected %q in %v", tt.message, result.Errors)
			}
		})
	}
}

func TestValidateConfig_DisconnectedLayout(t *testing.T) {
	path := writeConfig(t, `{
		"name": "Split",
		"width": 3,
		"height": 3,
		"layout": ["..#", ".#.", "#.."]
	}`)

	result := validateConfig(path)
	if result.Valid {
		t.Fatal("Expected split layout to be invalid")
	}
	if !hasMessage(result, "3/6 free cells unreachable from (0,0)") {
		t.Errorf("Unexpected errors %v", result.Errors)
	}
}

func TestValidateConnectivity_DiagonalJoinsRegions(t *testing.T) {
	grid, _ := engine.ParseLayout([]string{".#", "#."})

	if result := validateConnectivity(grid, false); result.Valid {
		t.Error("Orthogonal fill should not cross the diagonal")
	}
	if result := validateConnectivity(grid, true); !result.Valid {
		t.Errorf("Diagonal fill should reach every cell, got %v", result.Errors)
	}
}

func TestValidateConnectivity_NoFreeCells(t *testing.T) {
	grid, _ := engine.ParseLayout([]string{"##"})

	result := validateConnectivity(grid, true)
	if result.Valid || !hasMessage(result, "no free cells") {
		t.Errorf("Expected no free cells error, got %v", result.Errors)
	}
}

func TestValidateConnectivity_TruncatesList(t *testing.T) {
	grid, _ := engine.ParseLayout([]string{
		".#......",
		"##......",
	})

	result := validateConnectivity(grid, false)
	if !hasMessage(result, "12/13 free cells unreachable") || !hasMessage(result, "... and 7 more") {
		t.Errorf("Unexpected errors %v", result.Errors)
	}
}

func TestValidateShippedPresets(t *testing.T) {
	if _, err := os.Stat("../configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	allValid, err := validateDir("../configs")
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if !allValid {
		t.Error("Shipped presets should all be valid")
	}
}

func TestValidateDir_Empty(t *testing.T) {
	if _, err := validateDir(t.TempDir()); err == nil {
		t.Error("Expected error for directory without presets")
	}
}
