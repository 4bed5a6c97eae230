// Package config provides preset management for the grid path planner.
//
// Presets are JSON files in the configs directory; the file name without
// .json is the preset id used when creating a session. A preset either
// describes a random grid (width, height, obstacle_count and an optional
// seed) or carries a fixed layout of '.' and '#' rows.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	maze, err := manager.LoadConfig("maze")
//	presets, err := manager.ListConfigs()
//
// The default preset is classic. When it is missing the first valid preset
// is used, and when the directory holds none the built-in
// engine.DefaultPlannerConfig is returned.
package config
