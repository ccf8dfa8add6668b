package types

import "context"

// Finders return (nil, nil) when no row matches. Mutations return the
// number of affected rows; zero means the target did not exist.

// IdeaRepository persists ideas and their trash lifecycle.
type IdeaRepository interface {
	// ListAll returns active ideas, newest first.
	ListAll(ctx context.Context) ([]Idea, error)

	// ListByStatus returns active ideas in status, newest first.
	// StatusAll or an empty status behaves like ListAll.
	ListByStatus(ctx context.Context, status IdeaStatus) ([]Idea, error)

	// ListTrash returns trashed ideas, most recently trashed first.
	ListTrash(ctx context.Context) ([]Idea, error)

	// ListByTag returns active ideas carrying tagID, newest first.
	ListByTag(ctx context.Context, tagID int64) ([]Idea, error)

	FindByID(ctx context.Context, id int64) (*Idea, error)

	// Insert stores idea and returns the new id. ID, CreatedAt,
	// UpdatedAt and DeletedAt on the argument are ignored.
	Insert(ctx context.Context, idea Idea) (int64, error)

	// InsertReturning inserts idea and returns the stored row.
	InsertReturning(ctx context.Context, idea Idea) (*Idea, error)

	// Update writes title, body, priority, status and effort.
	Update(ctx context.Context, idea Idea) (int64, error)

	ChangeStatus(ctx context.Context, id int64, status IdeaStatus) (int64, error)
	SetEffort(ctx context.Context, id int64, minutes *int) (int64, error)

	// Search matches query case-insensitively as a literal substring of
	// title or body. Trashed ideas are excluded. A blank query lists all.
	Search(ctx context.Context, query string) ([]Idea, error)

	MoveToTrash(ctx context.Context, id int64) (int64, error)
	Restore(ctx context.Context, id int64) (int64, error)

	// Purge permanently deletes the idea. Tag links, the reminder and
	// attachment rows go with it; managed attachment files are removed
	// best-effort.
	Purge(ctx context.Context, id int64) (int64, error)
}

// TagRepository persists tags and idea-tag associations.
type TagRepository interface {
	// ListAll returns tags ordered by name, case-insensitively.
	ListAll(ctx context.Context) ([]Tag, error)

	FindByID(ctx context.Context, id int64) (*Tag, error)

	// Insert returns ErrDuplicateName when a tag with the same name
	// ignoring case already exists.
	Insert(ctx context.Context, tag Tag) (int64, error)
	Update(ctx context.Context, tag Tag) (int64, error)

	// Delete removes the tag and all of its associations.
	Delete(ctx context.Context, id int64) (int64, error)

	ListForIdea(ctx context.Context, ideaID int64) ([]Tag, error)

	// Attach links a tag to an idea. Linking twice is a no-op.
	Attach(ctx context.Context, ideaID, tagID int64) error
	Detach(ctx context.Context, ideaID, tagID int64) (int64, error)

	// EnsureExists returns the tag named name ignoring case, creating it
	// when missing.
	EnsureExists(ctx context.Context, name string) (*Tag, error)

	// ReplaceAllForIdea makes names the complete tag set of the idea.
	// Either every change applies or none does.
	ReplaceAllForIdea(ctx context.Context, ideaID int64, names []string) error
}

// ReminderRepository persists at most one reminder per idea and answers
// due-date queries.
type ReminderRepository interface {
	FindByIdeaID(ctx context.Context, ideaID int64) (*Reminder, error)

	// Upsert creates the idea's reminder or replaces its due time and
	// note. Returns the reminder id, which is stable across updates.
	Upsert(ctx context.Context, ideaID, dueAt int64, note *string) (int64, error)

	Delete(ctx context.Context, ideaID int64) (int64, error)

	// FindDueOrUpcoming returns reminders that are not done and due at or
	// before now+horizonSeconds, ordered by due time.
	FindDueOrUpcoming(ctx context.Context, now, horizonSeconds int64) ([]Reminder, error)

	// FindDue is FindDueOrUpcoming at the current time with the
	// configured horizon.
	FindDue(ctx context.Context) ([]Reminder, error)

	MarkDone(ctx context.Context, id int64) (int64, error)

	// Snooze moves the due time to now plus minutes. Zero minutes uses
	// Config.DefaultSnoozeMinutes; negative minutes are ErrInvalidSnooze.
	Snooze(ctx context.Context, id int64, minutes int) (int64, error)
}

// AttachmentStore copies files into the managed attachments tree and
// records them.
type AttachmentStore interface {
	ListForIdea(ctx context.Context, ideaID int64) ([]Attachment, error)
	FindByID(ctx context.Context, id int64) (*Attachment, error)

	// InsertFromSource copies sourcePath into the idea's attachment
	// directory and records the copy.
	InsertFromSource(ctx context.Context, ideaID int64, sourcePath string) (*Attachment, error)

	// Insert records an attachment whose file is already in the managed
	// tree.
	Insert(ctx context.Context, a Attachment) (int64, error)

	// DeleteByID removes the row, then the managed file best-effort.
	DeleteByID(ctx context.Context, id int64) (int64, error)
}

// SettingsRepository is a string key/value store.
type SettingsRepository interface {
	// Get returns the stored value, or def when the key is absent.
	Get(ctx context.Context, key, def string) (string, error)
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) (int64, error)
}
