package dispatch

import (
	"context"
	"time"
)

// LogEntry is one immutable record of a completed action.
type LogEntry struct {
	ID        string
	ActorID   string
	Action    string
	Target    string
	Result    string
	Timestamp time.Time
}

// ActionLog appends completed-action records. Appending is best-effort:
// the dispatcher logs failures and never rolls back the action.
type ActionLog interface {
	Append(ctx context.Context, e LogEntry) error
}
