package types

import "time"

// Session tracks one uploaded-but-not-yet-processed image for a chat user.
// At most one session exists per user; a newer upload replaces the older one.
type Session struct {
	UserID          int64
	ChatID          int64
	Path            string // temp file holding the downloaded photo
	PromptMessageID int64  // the tier-selection prompt, edited or deleted on completion
	CreatedAt       time.Time
}
