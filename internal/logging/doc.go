// Package logging provides slog helpers with canonical attribute keys so log
// entries stay queryable across the codebase.
//
// All output goes to stderr because stdout belongs to the stdio MCP transport.
package logging
