package domain

import "time"

// RepliedThread records a conversation thread that has already received an
// automated reply. Its existence is the idempotence boundary: a thread with
// a row here is never replied to again, regardless of message content.
// Rows are created exactly once, right after a reply send succeeds, and are
// never updated or deleted by the sync pipeline.
type RepliedThread struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	ThreadID     string    `json:"thread_id" gorm:"uniqueIndex;not null"`
	EmailAddress string    `json:"email_address"`
	Subject      string    `json:"subject"`
	MessageID    string    `json:"message_id"`
	RepliedAt    time.Time `json:"replied_at"`
	CreatedAt    time.Time `json:"created_at"`
}
