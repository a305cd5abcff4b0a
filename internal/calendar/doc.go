// Package calendar provides a thin client over the Google Calendar API,
// scoped to the single calendar the assistant manages. It exposes the three
// operations the voice tools need: listing a day's events, inserting an
// event with reminder overrides, and deleting an event.
package calendar
