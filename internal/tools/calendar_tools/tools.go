package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"voicecal/internal/calendar"
	"voicecal/internal/google"
	"voicecal/internal/logging"
	"voicecal/internal/server"
)

// Error messages surfaced to the assistant. They are spoken back to the
// user, so they stay human-readable.
const (
	msgAuthTimeout = "Authentication timed out after multiple attempts."
	msgAPITimeout  = "Calendar API request timed out. Please try again."
)

// RegisterCalendarTools registers the event tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	registerCreateEventTool(s, sc)
	registerCancelEventTool(s, sc)
}

// getCalendarClient retrieves or creates the calendar client. Authorization
// failures are translated into messages fit to speak back to the user.
func getCalendarClient(ctx context.Context, sc *server.ServerContext) (calendar.API, error) {
	client, err := sc.CalendarClient(ctx)
	if err != nil {
		if errors.Is(err, google.ErrAuthTimeout) {
			return nil, errors.New(msgAuthTimeout)
		}
		if errors.Is(err, google.ErrNoClientSecret) {
			return nil, fmt.Errorf("Error: credentials file not found at %s.", sc.Config().CredentialsPath)
		}
		return nil, fmt.Errorf("Authentication failed: %v", err)
	}
	return client, nil
}

// recordAPIOperation records the outcome of a single Calendar API call.
func recordAPIOperation(ctx context.Context, sc *server.ServerContext, operation string, err error, duration time.Duration) {
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	sc.Metrics().RecordAPIOperation(ctx, operation, status, duration)
}
