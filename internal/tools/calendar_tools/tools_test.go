package calendar_tools

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"voicecal/internal/calendar"
	"voicecal/internal/config"
	"voicecal/internal/server"
)

// fakeCalendar is an in-memory calendar.API used to drive the tool
// operations without a live Calendar service.
type fakeCalendar struct {
	mu sync.Mutex

	listResult []calendar.EventSummary
	listErr    error
	createErr  error
	failDelete map[string]error

	queries []string
	created []calendar.EventInput
	deleted []string
}

func (f *fakeCalendar) ListEvents(_ context.Context, _, _ time.Time, query string) ([]calendar.EventSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, input calendar.EventInput) (*calendar.EventSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, input)
	return &calendar.EventSummary{
		ID:       "evt-created",
		Summary:  input.Summary,
		Start:    input.Start,
		End:      input.End,
		HTMLLink: "https://www.google.com/calendar/event?eid=abc",
	}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failDelete[eventID]; ok {
		return err
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

func (f *fakeCalendar) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// newToolContext builds a ServerContext backed by the given fake client.
func newToolContext(t *testing.T, fake *fakeCalendar) *server.ServerContext {
	t.Helper()
	cfg := &config.Config{
		APITimeout:      time.Second,
		DispatchWorkers: 2,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	sc := server.NewServerContext(context.Background(), cfg, nil, nil, logger)
	t.Cleanup(sc.Shutdown)
	sc.SetCalendarClient(fake)
	return sc
}
