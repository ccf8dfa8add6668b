// This file implements the reminder repository and its due-date queries.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/mindstore/pkg/types"
)

var _ types.ReminderRepository = (*remindersTable)(nil)

// remindersTable implements ReminderRepository.
type remindersTable struct {
	backend *Backend
}

const reminderColumns = "id, idea_id, due_at, note, is_done, created_at, updated_at"

func scanReminder(row rowScanner) (*types.Reminder, error) {
	var (
		r         types.Reminder
		note      sql.NullString
		isDone    int
		updatedAt sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.IdeaID, &r.DueAt, &note, &isDone, &r.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	r.Note = stringPtr(note)
	r.IsDone = isDone != 0
	r.UpdatedAt = int64Ptr(updatedAt)
	return &r, nil
}

// FindByIdeaID returns the idea's reminder or nil when it has none.
func (t *remindersTable) FindByIdeaID(ctx context.Context, ideaID int64) (*types.Reminder, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	query := "SELECT " + reminderColumns + " FROM reminder WHERE idea_id = ?"
	r, err := scanReminder(db.QueryRowContext(ctx, query, ideaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find reminder", query, err)
	}
	return r, nil
}

// Upsert creates the idea's reminder or, when one exists, replaces its due
// time and note in place. The done flag and id of an existing reminder are
// kept.
func (t *remindersTable) Upsert(ctx context.Context, ideaID, dueAt int64, note *string) (int64, error) {
	if dueAt <= 0 {
		return 0, types.ErrInvalidDueAt
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	const stmt = `INSERT INTO reminder (idea_id, due_at, note, is_done, created_at)
VALUES (?, ?, ?, 0, ?)
ON CONFLICT(idea_id) DO UPDATE SET due_at = excluded.due_at, note = excluded.note
RETURNING id`
	var id int64
	if err := db.QueryRowContext(ctx, stmt, ideaID, dueAt, nullString(note), t.backend.nowUnix()).Scan(&id); err != nil {
		return 0, storageErr("upsert reminder", stmt, err)
	}
	return id, nil
}

// Delete removes the idea's reminder.
func (t *remindersTable) Delete(ctx context.Context, ideaID int64) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	return execAffected(ctx, db, "delete reminder", "DELETE FROM reminder WHERE idea_id = ?", ideaID)
}

// FindDueOrUpcoming returns open reminders that are overdue at now or due
// within horizonSeconds after it, earliest first.
func (t *remindersTable) FindDueOrUpcoming(ctx context.Context, now, horizonSeconds int64) ([]types.Reminder, error) {
	if horizonSeconds < 0 {
		return nil, types.ErrInvalidHorizon
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return findDueOrUpcoming(ctx, db, now, horizonSeconds)
}

func findDueOrUpcoming(ctx context.Context, q querier, now, horizonSeconds int64) ([]types.Reminder, error) {
	query := "SELECT " + reminderColumns + ` FROM reminder
WHERE is_done = 0 AND (due_at <= ? OR (due_at > ? AND due_at <= ?))
ORDER BY due_at ASC, id ASC`
	rows, err := q.QueryContext(ctx, query, now, now, now+horizonSeconds)
	if err != nil {
		return nil, storageErr("find due reminders", query, err)
	}
	defer rows.Close()

	out := []types.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, storageErr("find due reminders", query, err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("find due reminders", query, err)
	}
	return out, nil
}

// FindDue answers FindDueOrUpcoming for the current time and the
// configured horizon.
func (t *remindersTable) FindDue(ctx context.Context) ([]types.Reminder, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	horizon := int64(t.backend.config.ReminderHorizon.Seconds())
	return findDueOrUpcoming(ctx, db, t.backend.nowUnix(), horizon)
}

// MarkDone closes a reminder.
func (t *remindersTable) MarkDone(ctx context.Context, id int64) (int64, error) {
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	return execAffected(ctx, db, "mark reminder done", "UPDATE reminder SET is_done = 1 WHERE id = ?", id)
}

// Snooze moves a reminder to minutes from now, or to the configured
// default snooze when minutes is zero. The new time is relative to the
// current clock, not to the old due time.
func (t *remindersTable) Snooze(ctx context.Context, id int64, minutes int) (int64, error) {
	if minutes < 0 {
		return 0, types.ErrInvalidSnooze
	}
	db, release, err := t.backend.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	if minutes == 0 {
		minutes = t.backend.config.DefaultSnoozeMinutes
	}
	dueAt := t.backend.nowUnix() + int64(minutes)*60
	return execAffected(ctx, db, "snooze reminder", "UPDATE reminder SET due_at = ? WHERE id = ?", dueAt, id)
}
