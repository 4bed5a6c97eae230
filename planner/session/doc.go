// Package session provides session storage for the grid path planner.
//
// Manager keeps sessions in memory under case-insensitive 4-character hex
// IDs generated with crypto/rand. With a SessionPersistence attached every
// session is written through on creation and after each search, and a
// session missing from memory is reloaded on first access.
//
// FilePersistence stores one JSON file per session. The grid is saved as
// layout rows together with the preset and the search history, so a
// randomly generated grid comes back exactly as it was.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "maze", mazeConfig)
//
// CleanupExpiredSessions evicts idle sessions from memory only; their files
// stay on disk until Delete is called.
package session
