// Package service provides the business logic layer for the grid path planner.
//
// The service package implements:
//   - Multi-session grid management
//   - Preset loading with per-session overrides
//   - Path searches recorded in a per-session history
//
// Core Interfaces:
//
// PlannerService is the main service interface used by every transport.
// SessionManager stores sessions and ConfigManager loads presets; both are
// implemented in sibling packages so the service stays free of storage code.
//
// Architecture:
//
// Each session owns an engine.Planner built once from its preset. The grid
// is never modified after creation, so a session can serve any number of
// searches. FindPath assigns every search a UUID run id, persists the
// session, and returns the path together with a rendered grid.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	plannerService := service.NewPlannerService(sessionMgr, configMgr)
//
//	info, err := plannerService.CreateSession(ctx, service.CreateSessionRequest{ConfigID: "maze"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := plannerService.FindPath(ctx, info.ID, service.PathRequest{
//		Start: engine.Coordinate{X: 0, Y: 0},
//		Goal:  engine.Coordinate{X: 9, Y: 9},
//	})
//
// A search that finds no route is not an error: the result has Found set to
// false and an empty path. Errors are reserved for unknown sessions,
// out-of-range coordinates (engine.ErrOutOfRange) and invalid requests
// (ErrInvalidRequest).
package service
