package types

import "time"

// Attachment records a file copied into the managed attachments tree.
// FilePath always points at the managed copy under attachments/<IdeaID>/,
// never at the caller's original source file.
type Attachment struct {
	ID        int64
	IdeaID    int64
	FileName  string
	FilePath  string  // Absolute path of the managed copy.
	MimeType  *string // Best-effort, nil when detection failed.
	SizeBytes *int64  // Best-effort, nil when the size could not be read.
	CreatedAt int64
}

// CreatedAtTime returns CreatedAt as time.Time.
func (a *Attachment) CreatedAtTime() time.Time {
	return time.Unix(a.CreatedAt, 0)
}
