package calendar_tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"voicecal/internal/calendar"
	"voicecal/internal/dispatch"
	"voicecal/internal/logging"
	"voicecal/internal/server"
	"voicecal/internal/tools/common"
)

// Duration bounds for a single meeting, in minutes.
const (
	MinDurationMinutes     = 1
	MaxDurationMinutes     = 480
	DefaultDurationMinutes = 30
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// CreateRequest carries the validated inputs for scheduling a meeting.
type CreateRequest struct {
	Title           string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM, 24-hour
	DurationMinutes int
	Description     string
}

// registerCreateEventTool registers the event creation tool with the MCP server
func registerCreateEventTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Schedule a meeting on the user's Google Calendar"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Meeting title"),
		),
		mcp.WithString("date",
			mcp.Description("Meeting date (YYYY-MM-DD). Defaults to today."),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Start time in 24-hour HH:MM format, e.g. '14:30'"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.DefaultNumber(DefaultDurationMinutes),
			mcp.Min(MinDurationMinutes),
			mcp.Max(MaxDurationMinutes),
			mcp.Description("Meeting duration in minutes (1-480, default 30)"),
		),
		mcp.WithString("description",
			mcp.Description("Optional meeting description"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandler("calendar_create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	req, err := parseCreateArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	message, err := CreateEvent(ctx, sc, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(message), nil
}

// parseCreateArgs validates raw tool arguments into a CreateRequest. All
// validation happens here, before any remote call is made.
func parseCreateArgs(args map[string]interface{}) (CreateRequest, error) {
	var req CreateRequest

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

	clock, ok := args["time"].(string)
	if !ok || clock == "" {
		return req, errors.New("time is required (24-hour HH:MM)")
	}
	if _, _, err := parseClock(clock); err != nil {
		return req, err
	}
	req.Time = clock

	req.DurationMinutes = DefaultDurationMinutes
	if raw, ok := args["durationMinutes"]; ok {
		minutes, ok := raw.(float64)
		if !ok {
			return req, errors.New("durationMinutes must be a number")
		}
		req.DurationMinutes = int(minutes)
	}
	if req.DurationMinutes < MinDurationMinutes || req.DurationMinutes > MaxDurationMinutes {
		return req, fmt.Errorf("durationMinutes must be between %d and %d", MinDurationMinutes, MaxDurationMinutes)
	}

	if desc, ok := args["description"].(string); ok {
		req.Description = desc
	}

	return req, nil
}

// parseClock parses a 24-hour HH:MM string.
func parseClock(s string) (hour, minute int, err error) {
	t, parseErr := time.Parse(clockLayout, s)
	if parseErr != nil {
		return 0, 0, fmt.Errorf("Invalid time '%s': expected 24-hour HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// eventTimes computes the start and end of the meeting the request describes.
func eventTimes(req CreateRequest) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(dateLayout+" "+clockLayout, req.Date+" "+req.Time, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("Invalid date or time: %v", err)
	}
	end = start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	return start, end, nil
}

// CreateEvent schedules the meeting and returns a confirmation message. It
// is shared by the MCP tool handler and the create subcommand.
func CreateEvent(ctx context.Context, sc *server.ServerContext, req CreateRequest) (string, error) {
	if req.DurationMinutes < MinDurationMinutes || req.DurationMinutes > MaxDurationMinutes {
		return "", fmt.Errorf("durationMinutes must be between %d and %d", MinDurationMinutes, MaxDurationMinutes)
	}
	start, end, err := eventTimes(req)
	if err != nil {
		return "", err
	}

	client, err := getCalendarClient(ctx, sc)
	if err != nil {
		return "", err
	}

	input := calendar.EventInput{
		Summary:         req.Title,
		Description:     req.Description,
		Start:           start,
		End:             end,
		Reminders:       calendar.DefaultReminderOverrides(),
		NotifyAttendees: true,
	}
	if email := sc.Config().AttendeeEmail; email != "" {
		input.Attendees = []string{email}
	}

	cfg := sc.Config()
	opStart := time.Now()
	created, err := dispatch.Call(ctx, sc.Pool(), cfg.APITimeout, func(ctx context.Context) (*calendar.EventSummary, error) {
		return client.CreateEvent(ctx, input)
	})
	recordAPIOperation(ctx, sc, "insert", err, time.Since(opStart))
	if err != nil {
		if calendar.IsTimeout(err) {
			return "", errors.New(msgAPITimeout)
		}
		return "", fmt.Errorf("Error creating calendar event: %v", err)
	}

	sc.Logger().Info("event created",
		logging.Operation("create_event"),
		logging.EventID(created.ID),
	)

	return formatCreateMessage(req, created), nil
}

// formatCreateMessage builds the confirmation spoken back to the user.
func formatCreateMessage(req CreateRequest, created *calendar.EventSummary) string {
	return fmt.Sprintf("Meeting '%s' scheduled for %s at %s (Duration: %d minutes)\nCalendar link: %s",
		req.Title, req.Date, req.Time, req.DurationMinutes, created.HTMLLink)
}
