package types

import "time"

// Reminder is the single due-date notice attached to an idea.
// An idea has at most one reminder; writes go through an upsert keyed by
// IdeaID.
type Reminder struct {
	ID        int64
	IdeaID    int64
	DueAt     int64   // Epoch seconds.
	Note      *string // Optional.
	IsDone    bool
	CreatedAt int64
	UpdatedAt *int64
}

// DueAtTime returns DueAt as time.Time.
func (r *Reminder) DueAtTime() time.Time {
	return time.Unix(r.DueAt, 0)
}

// Overdue reports whether the reminder is not done and due at or before now.
func (r *Reminder) Overdue(now int64) bool {
	return !r.IsDone && r.DueAt <= now
}
