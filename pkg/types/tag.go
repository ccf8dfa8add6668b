package types

import "time"

// Tag is a user-defined label. Names are unique case-insensitively; the
// repository enforces this with a lookup before every insert.
type Tag struct {
	ID        int64
	Name      string
	Color     *string // Optional, e.g. "#8BC34A".
	CreatedAt int64
}

// CreatedAtTime returns CreatedAt as time.Time.
func (t *Tag) CreatedAtTime() time.Time {
	return time.Unix(t.CreatedAt, 0)
}
