// Package api provides the HTTP REST API for the grid path planner.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session from a preset, with optional overrides
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session with its grid and last search
//   - DELETE /api/sessions/{id} - Delete a session
//
// Grid:
//   - GET /api/sessions/{id}/grid - Width, height, rows and counts
//   - GET /api/sessions/{id}/cells?state=free|obstacle - Cells in a state, row-major
//   - GET /api/sessions/{id}/cells/{x}/{y} - One cell and its free neighbors
//
// Path Search:
//   - POST /api/sessions/{id}/path - Search between two cells
//   - GET /api/sessions/{id}/history - Search history (?page=&limit=&order=)
//
// Configuration:
//   - GET /api/configs - List presets
//   - POST /api/configs - Save a preset
//   - GET /api/configs/{name} - Get one preset
//
// Live updates are served on /ws?session=<id>; see package websocket.
//
// A path request looks like:
//
//	{
//	  "start": {"x": 0, "y": 0},
//	  "goal": {"x": 9, "y": 9},
//	  "allow_diagonal": true,   // optional, defaults to the preset
//	  "include_trace": false    // optional, adds the expansion order
//	}
//
// An unreachable goal is a normal 200 response with "found": false.
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code repeated in the body:
//
//	{
//	  "error": "find path: coordinate out of range: (12,3) not in 10x10 grid",
//	  "code": 400
//	}
//
// Unknown sessions and presets map to 404, out-of-range coordinates and
// invalid requests to 400, anything else to 500.
package api
