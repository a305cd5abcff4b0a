package calendar_tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecal/internal/calendar"
)

func TestParseCancelArgs(t *testing.T) {
	req, err := parseCancelArgs(map[string]interface{}{
		"title": "Team sync",
		"date":  "2026-09-01",
		"time":  "14:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Team sync", req.Title)
	assert.Equal(t, "2026-09-01", req.Date)
	assert.Equal(t, "14:30", req.Time)
}

func TestParseCancelArgsDefaults(t *testing.T) {
	req, err := parseCancelArgs(map[string]interface{}{
		"title": "Standup",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), req.Date)
	assert.Empty(t, req.Time)
}

func TestParseCancelArgsRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing title",
			args: map[string]interface{}{},
		},
		{
			name: "malformed date",
			args: map[string]interface{}{"title": "Sync", "date": "tomorrow"},
		},
		{
			name: "malformed time",
			args: map[string]interface{}{"title": "Sync", "time": "noon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCancelArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestDayWindow(t *testing.T) {
	timeMin, timeMax, err := dayWindow("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), timeMin)
	assert.Equal(t, time.Date(2026, 9, 1, 23, 59, 59, 0, time.UTC), timeMax)

	_, _, err = dayWindow("not-a-date")
	assert.Error(t, err)
}

func TestFilterByStartTime(t *testing.T) {
	events := []calendar.EventSummary{
		{
			ID:    "evt-1",
			Start: time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:    "evt-2",
			Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			// All-day event, no clock time.
			ID: "evt-3",
		},
	}

	matched := filterByStartTime(events, 14, 30)
	require.Len(t, matched, 1)
	assert.Equal(t, "evt-1", matched[0].ID)

	assert.Empty(t, filterByStartTime(events, 17, 0))
}

func TestCancelEventDeletesAllOccurrences(t *testing.T) {
	fake := &fakeCalendar{
		listResult: []calendar.EventSummary{
			{ID: "evt-1", Summary: "Team sync", Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)},
			{ID: "evt-2", Summary: "Team sync", Start: time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)},
		},
	}
	sc := newToolContext(t, fake)

	msg, err := CancelEvent(context.Background(), sc, CancelRequest{Title: "Team sync", Date: "2026-09-01"})
	require.NoError(t, err)
	assert.Equal(t, "Successfully cancelled 2 occurrences of 'Team sync' on 2026-09-01", msg)
	assert.ElementsMatch(t, []string{"evt-1", "evt-2"}, fake.deletedIDs())
	assert.Equal(t, []string{"Team sync"}, fake.queries)
}

func TestCancelEventMatchesBeyondSummary(t *testing.T) {
	// The free-text search also matches descriptions, so a hit whose
	// summary does not contain the title is still cancelled.
	fake := &fakeCalendar{
		listResult: []calendar.EventSummary{
			{
				ID:          "evt-1",
				Summary:     "Weekly review",
				Description: "Budget planning follow-up",
				Start:       time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	sc := newToolContext(t, fake)

	msg, err := CancelEvent(context.Background(), sc, CancelRequest{Title: "Budget planning", Date: "2026-09-01"})
	require.NoError(t, err)
	assert.Equal(t, "Successfully cancelled the meeting 'Budget planning' on 2026-09-01", msg)
	assert.Equal(t, []string{"evt-1"}, fake.deletedIDs())
}

func TestCancelEventContinuesPastDeleteFailure(t *testing.T) {
	fake := &fakeCalendar{
		listResult: []calendar.EventSummary{
			{ID: "evt-1", Summary: "Team sync", Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)},
			{ID: "evt-2", Summary: "Team sync", Start: time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)},
		},
		failDelete: map[string]error{"evt-1": errors.New("backend error")},
	}
	sc := newToolContext(t, fake)

	msg, err := CancelEvent(context.Background(), sc, CancelRequest{Title: "Team sync", Date: "2026-09-01"})
	require.NoError(t, err)
	assert.Equal(t, "Successfully cancelled the meeting 'Team sync' on 2026-09-01", msg)
	assert.Equal(t, []string{"evt-2"}, fake.deletedIDs())
}

func TestCancelEventFailsWhenNothingDeleted(t *testing.T) {
	fake := &fakeCalendar{
		listResult: []calendar.EventSummary{
			{ID: "evt-1", Summary: "Team sync", Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)},
		},
		failDelete: map[string]error{"evt-1": errors.New("backend error")},
	}
	sc := newToolContext(t, fake)

	_, err := CancelEvent(context.Background(), sc, CancelRequest{Title: "Team sync", Date: "2026-09-01"})
	require.Error(t, err)
	assert.EqualError(t, err, "Failed to cancel any events")
}

func TestCancelEventNoSearchHits(t *testing.T) {
	// An empty search result reports without the time, even when a time
	// was requested.
	fake := &fakeCalendar{}
	sc := newToolContext(t, fake)

	msg, err := CancelEvent(context.Background(), sc, CancelRequest{Title: "Retro", Date: "2026-09-01", Time: "14:30"})
	require.NoError(t, err)
	assert.Equal(t, "No events found matching 'Retro' on 2026-09-01", msg)
	assert.Empty(t, fake.deletedIDs())
}

func TestCancelEventTimeFilterEmptiesResult(t *testing.T) {
	fake := &fakeCalendar{
		listResult: []calendar.EventSummary{
			{ID: "evt-1", Summary: "Retro", Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
	sc := newToolContext(t, fake)

	msg, err := CancelEvent(context.Background(), sc, CancelRequest{Title: "Retro", Date: "2026-09-01", Time: "14:30"})
	require.NoError(t, err)
	assert.Equal(t, "No events found matching 'Retro' at 14:30 on 2026-09-01", msg)
	assert.Empty(t, fake.deletedIDs())
}

func TestCancelEventListFailure(t *testing.T) {
	fake := &fakeCalendar{listErr: errors.New("backend unavailable")}
	sc := newToolContext(t, fake)

	_, err := CancelEvent(context.Background(), sc, CancelRequest{Title: "Retro", Date: "2026-09-01"})
	require.Error(t, err)
	assert.EqualError(t, err, "Error cancelling calendar event: backend unavailable")
}

func TestCancelledMessage(t *testing.T) {
	req := CancelRequest{Title: "Team sync", Date: "2026-09-01"}
	assert.Equal(t, "Successfully cancelled the meeting 'Team sync' on 2026-09-01", cancelledMessage(req, 1))
	assert.Equal(t, "Successfully cancelled 2 occurrences of 'Team sync' on 2026-09-01", cancelledMessage(req, 2))
}
