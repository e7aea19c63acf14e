// Package server implements the live preview server.
//
// It serves a page of component markup over HTTP, opens one WebSocket
// session per browser tab, and streams DOM patch frames as component state
// changes on the server. Client events (clicks, input) arrive as JSON frames
// addressed by index paths into the document tree; the session replays them
// on the server-side document, the affected components re-render, and the
// resulting ops go back down the same socket.
//
// Each session runs its events on a single loop goroutine, so loader cycles
// never run concurrently for one document.
package server
