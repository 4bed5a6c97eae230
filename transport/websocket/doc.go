// Package websocket provides live updates for planner sessions.
//
// A central Hub owns every connection. Clients attach to one session with
// /ws?session=<id> and receive JSON messages whenever that session changes:
//   - grid_update: the session grid, sent when the session is created
//   - path_found / no_path: a finished search with its path, the order in
//     which cells were expanded and the preset's step delay, so a viewer can
//     replay the search frame by frame
//
// Clients are viewers only; anything they send is discarded.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.BroadcastPath(sessionID, &websocket.PathUpdate{...})
//
// Broadcasts are queued and never block the caller. When the queue is full
// the message is dropped and logged, and a client that cannot keep up is
// disconnected.
package websocket
