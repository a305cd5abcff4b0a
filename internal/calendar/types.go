package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Reminder delivery methods accepted by the Calendar API.
const (
	ReminderMethodEmail = "email"
	ReminderMethodPopup = "popup"
)

// ReminderOverride configures a single non-default event reminder.
type ReminderOverride struct {
	Method  string
	Minutes int64
}

// DefaultReminderOverrides returns the reminders attached to every event the
// assistant creates: an email a half hour out and a popup fifteen minutes out.
func DefaultReminderOverrides() []ReminderOverride {
	return []ReminderOverride{
		{Method: ReminderMethodEmail, Minutes: 30},
		{Method: ReminderMethodPopup, Minutes: 15},
	}
}

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string

	// Reminders replacing the calendar's defaults. Leave empty to keep the
	// calendar defaults.
	Reminders []ReminderOverride

	// NotifyAttendees sends email notifications about the event to all
	// attendees.
	NotifyAttendees bool
}

// EventSummary represents a simplified calendar event for listing
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Organizer   string
	Status      string
	HTMLLink    string
}

// StartsAt reports whether the event starts at the given hour and minute.
// All-day events carry no clock time and never match.
func (e EventSummary) StartsAt(hour, minute int) bool {
	if e.Start.IsZero() {
		return false
	}
	return e.Start.Hour() == hour && e.Start.Minute() == minute
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}

	if event.Start != nil {
		if event.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
				summary.Start = t
			}
		} else if event.Start.Date != "" {
			if t, err := time.Parse("2006-01-02", event.Start.Date); err == nil {
				summary.Start = t
			}
		}
	}

	if event.End != nil {
		if event.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
				summary.End = t
			}
		} else if event.End.Date != "" {
			if t, err := time.Parse("2006-01-02", event.End.Date); err == nil {
				summary.End = t
			}
		}
	}

	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	return summary
}
