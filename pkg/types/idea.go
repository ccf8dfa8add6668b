package types

import (
	"strings"
	"time"
)

// IdeaStatus is the workflow column an idea sits in.
type IdeaStatus string

// Idea statuses. The string value is the persisted encoding.
const (
	StatusInbox    IdeaStatus = "inbox"
	StatusDraft    IdeaStatus = "draft"
	StatusDoing    IdeaStatus = "doing"
	StatusDone     IdeaStatus = "done"
	StatusArchived IdeaStatus = "archived"

	// StatusAll is a listing filter that matches every status. It is never
	// persisted.
	StatusAll IdeaStatus = "all"
)

// IdeaStatuses lists the persistable statuses in board order.
var IdeaStatuses = []IdeaStatus{
	StatusInbox,
	StatusDraft,
	StatusDoing,
	StatusDone,
	StatusArchived,
}

// validIdeaStatuses is the set of persistable status values.
var validIdeaStatuses = map[IdeaStatus]bool{
	StatusInbox:    true,
	StatusDraft:    true,
	StatusDoing:    true,
	StatusDone:     true,
	StatusArchived: true,
}

// Valid reports whether s is a persistable status.
func (s IdeaStatus) Valid() bool {
	return validIdeaStatuses[s]
}

// ParseIdeaStatus parses caller input case-insensitively.
// Returns ErrInvalidStatus for anything outside the five statuses.
func ParseIdeaStatus(raw string) (IdeaStatus, error) {
	s := IdeaStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// IdeaStatusFromDB decodes a persisted status. Unknown or malformed values
// fall back to StatusInbox so a stray row never breaks a listing.
func IdeaStatusFromDB(raw string) IdeaStatus {
	s := IdeaStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return StatusInbox
	}
	return s
}

// Priority is an ordinal from 1 (highest) to 4 (lowest).
type Priority int

// Priority levels, matching the CHECK constraint on idea.priority.
const (
	PriorityHighest Priority = 1
	PriorityHigh    Priority = 2
	PriorityMedium  Priority = 3
	PriorityLowest  Priority = 4
)

// Valid reports whether p is within 1..4.
func (p Priority) Valid() bool {
	return p >= PriorityHighest && p <= PriorityLowest
}

// PriorityFromInt decodes a persisted priority. Values outside 1..4 fall
// back to PriorityLowest.
func PriorityFromInt(n int) Priority {
	p := Priority(n)
	if !p.Valid() {
		return PriorityLowest
	}
	return p
}

// Idea is the primary trackable unit.
type Idea struct {
	ID            int64      // Store-assigned, monotonic.
	Title         string     // Required, non-empty.
	Body          string     // Free text, may be empty.
	Priority      Priority   // 1..4, 1 is highest.
	Status        IdeaStatus // One of IdeaStatuses.
	EffortMinutes *int       // Optional estimate, non-negative.
	CreatedAt     int64      // Epoch seconds, assigned on insert, immutable.
	UpdatedAt     *int64     // Epoch seconds, maintained by the store.
	DeletedAt     *int64     // Epoch seconds; non-nil means the idea is in the trash.
}

// InTrash reports whether the idea has been soft-deleted.
func (i *Idea) InTrash() bool {
	return i.DeletedAt != nil
}

// CreatedAtTime returns CreatedAt as time.Time.
func (i *Idea) CreatedAtTime() time.Time {
	return time.Unix(i.CreatedAt, 0)
}

// Validate checks the caller-controlled fields before anything touches
// storage. Returns the first violated rule as an ErrValidation sentinel.
func (i *Idea) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrInvalidTitle
	}
	if !i.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !i.Status.Valid() {
		return ErrInvalidStatus
	}
	return ValidateEffort(i.EffortMinutes)
}

// ValidateEffort accepts nil or a non-negative minute count.
func ValidateEffort(minutes *int) error {
	if minutes != nil && *minutes < 0 {
		return ErrInvalidEffort
	}
	return nil
}
