package domain

import "time"

// Session is the in-process record behind one cookie. Sessions are never a
// source of truth: restarting the server logs everyone out.
type Session struct {
	Token    string
	Username string
	// Password is held so report generation can open its own database
	// connection under the user's credentials, as the login did.
	Password string

	LastActivity time.Time
	// Filters remembers the screens' last selections (customer, month,
	// window) across requests within the session.
	Filters map[string]string
}

// Status is the non-refreshing view of a session used by the session
// check endpoint.
type Status struct {
	Valid            bool  `json:"valid"`
	RemainingSeconds int64 `json:"remaining_seconds"`
}
