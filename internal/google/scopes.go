package google

// CalendarScopes are the Google OAuth scopes requested during authorization.
//
// The scopes provide full access to calendars and events plus their
// read-only counterparts, so a credential issued for these scopes also
// serves any future read-only tooling without re-consent.
var CalendarScopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.events.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
}
