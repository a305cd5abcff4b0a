package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"voicecal/internal/calendar"
	"voicecal/internal/dispatch"
	"voicecal/internal/logging"
	"voicecal/internal/server"
	"voicecal/internal/tools/common"
)

// CancelRequest carries the validated inputs for cancelling meetings.
type CancelRequest struct {
	Title string
	Date  string // YYYY-MM-DD
	Time  string // HH:MM, empty to match any start time
}

// registerCancelEventTool registers the event cancellation tool with the MCP server
func registerCancelEventTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	cancelEventTool := mcp.NewTool("calendar_cancel_event",
		mcp.WithDescription("Cancel meetings on the user's Google Calendar by title and date"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the meeting to cancel"),
		),
		mcp.WithString("date",
			mcp.Description("Meeting date (YYYY-MM-DD). Defaults to today."),
		),
		mcp.WithString("time",
			mcp.Description("Start time in 24-hour HH:MM format. When set, only meetings starting at this time are cancelled."),
		),
	)

	s.AddTool(cancelEventTool, common.InstrumentedToolHandler("calendar_cancel_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCancelEvent(ctx, request, sc)
		}))
}

func handleCancelEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, err := parseCancelArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	message, err := CancelEvent(ctx, sc, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(message), nil
}

// parseCancelArgs validates raw tool arguments into a CancelRequest.
func parseCancelArgs(args map[string]interface{}) (CancelRequest, error) {
	var req CancelRequest

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return req, errors.New("title is required")
	}
	req.Title = title

	req.Date = time.Now().Format(dateLayout)
	if date, ok := args["date"].(string); ok && date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return req, fmt.Errorf("Invalid date '%s': expected YYYY-MM-DD", date)
		}
		req.Date = date
	}

	if clock, ok := args["time"].(string); ok && clock != "" {
		if _, _, err := parseClock(clock); err != nil {
			return req, err
		}
		req.Time = clock
	}

	return req, nil
}

// dayWindow returns the inclusive search window covering the whole day.
func dayWindow(date string) (timeMin, timeMax time.Time, err error) {
	day, parseErr := time.ParseInLocation(dateLayout, date, time.UTC)
	if parseErr != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("Invalid date '%s': expected YYYY-MM-DD", date)
	}
	timeMin = day
	timeMax = day.Add(24*time.Hour - time.Second)
	return timeMin, timeMax, nil
}

// filterByStartTime narrows events to those starting at the given clock
// time. All-day events carry no clock time and never match.
func filterByStartTime(events []calendar.EventSummary, hour, minute int) []calendar.EventSummary {
	var matched []calendar.EventSummary
	for _, e := range events {
		if e.StartsAt(hour, minute) {
			matched = append(matched, e)
		}
	}
	return matched
}

// cancelledMessage builds the confirmation for the given number of deletions.
func cancelledMessage(req CancelRequest, cancelled int) string {
	if cancelled == 1 {
		return fmt.Sprintf("Successfully cancelled the meeting '%s' on %s", req.Title, req.Date)
	}
	return fmt.Sprintf("Successfully cancelled %d occurrences of '%s' on %s", cancelled, req.Title, req.Date)
}

// CancelEvent finds and deletes the meetings the request describes, and
// returns a summary message. Deletions run in parallel and a failed deletion
// does not stop the remaining ones. It is shared by the MCP tool handler and
// the cancel subcommand.
func CancelEvent(ctx context.Context, sc *server.ServerContext, req CancelRequest) (string, error) {
	client, err := getCalendarClient(ctx, sc)
	if err != nil {
		return "", err
	}

	timeMin, timeMax, err := dayWindow(req.Date)
	if err != nil {
		return "", err
	}
	var hour, minute int
	if req.Time != "" {
		hour, minute, err = parseClock(req.Time)
		if err != nil {
			return "", err
		}
	}

	// Title matching is delegated to the remote free-text search, which also
	// scans descriptions, locations, and attendees.
	cfg := sc.Config()
	opStart := time.Now()
	events, err := dispatch.Call(ctx, sc.Pool(), cfg.APITimeout, func(ctx context.Context) ([]calendar.EventSummary, error) {
		return client.ListEvents(ctx, timeMin, timeMax, req.Title)
	})
	recordAPIOperation(ctx, sc, "list", err, time.Since(opStart))
	if err != nil {
		if calendar.IsTimeout(err) {
			return "", errors.New(msgAPITimeout)
		}
		return "", fmt.Errorf("Error cancelling calendar event: %v", err)
	}
	if len(events) == 0 {
		return fmt.Sprintf("No events found matching '%s' on %s", req.Title, req.Date), nil
	}

	matched := events
	if req.Time != "" {
		matched = filterByStartTime(events, hour, minute)
		if len(matched) == 0 {
			return fmt.Sprintf("No events found matching '%s' at %s on %s", req.Title, req.Time, req.Date), nil
		}
	}

	var cancelled atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(sc.Pool().Workers())
	for _, event := range matched {
		g.Go(func() error {
			delStart := time.Now()
			err := sc.Pool().Do(ctx, cfg.APITimeout, func(ctx context.Context) error {
				return client.DeleteEvent(ctx, event.ID)
			})
			recordAPIOperation(ctx, sc, "delete", err, time.Since(delStart))
			if err != nil {
				sc.Logger().Warn("failed to cancel event",
					logging.Operation("cancel_event"),
					logging.EventID(event.ID),
					logging.Err(err),
				)
				return nil
			}
			cancelled.Add(1)
			sc.Logger().Info("event cancelled",
				logging.Operation("cancel_event"),
				logging.EventID(event.ID),
			)
			return nil
		})
	}
	_ = g.Wait()

	n := int(cancelled.Load())
	if n == 0 {
		return "", errors.New("Failed to cancel any events")
	}
	return cancelledMessage(req, n), nil
}
