// Package calendar_tools implements the MCP tools the voice assistant calls
// to manage the user's calendar: scheduling a meeting and cancelling the
// meetings matching a title, date, and optional start time. All argument
// validation happens before any Calendar API call, and every message
// returned to the assistant is written to be spoken back to the user.
package calendar_tools
