// Package api provides the HTTP server for the agent backend.
//
// # Architecture
//
// Go 1.22+ method routing with a layered middleware stack:
//
//	Recovery → Logging → RateLimit → Routes
//
// Health probes (/health, /ready) bypass the middleware stack via a
// top-level mux, keeping them fast and unauthenticated.
//
// # Endpoints
//
// Health probes (no middleware):
//   - GET /health - returns {"status":"ok"}
//   - GET /ready  - checks database connectivity
//
// Chat:
//   - POST   /api/chat - run one conversation turn, respond as SSE
//   - DELETE /api/chat - delete a chat and its messages
//
// Documents:
//   - GET /api/document - all versions of a document, oldest first
//
// Scraped records:
//   - POST /api/scraped-data - persist extracted team-member/deal records
//
// # Authentication
//
// Every /api route resolves the caller through auth.Provider (bearer
// token). Missing or unknown tokens get 401 before any work happens.
//
// # Error Handling
//
// Error responses use an envelope:
//
//	{"error": {"code": "...", "message": "..."}}
//
// The chat stream is the exception: once SSE headers are committed,
// failures arrive as a single opaque error event and the connection
// closes. Detail stays in the server logs.
//
// # SSE Streaming
//
// Chat responses stream as Server-Sent Events. Event names are the
// stream.EventType values: text-delta, reasoning, tool-call,
// tool-result, the artifact envelope (id, title, kind, clear,
// content-delta, finish), metadata, and error.
package api
