package domain

import "time"

// SyncCursor tracks the last-seen Gmail history id per mailbox account.
// At most one row exists per account (upsert semantics). The cursor is
// advanced only after a history batch has been fully processed, so a crash
// between fetch and processing re-fetches the same range instead of
// skipping it.
type SyncCursor struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	AccountID     string     `json:"account_id" gorm:"uniqueIndex;not null"`
	LastHistoryID string     `json:"last_history_id"`
	LastSyncedAt  time.Time  `json:"last_synced_at"`
	WatchExpiry   *time.Time `json:"watch_expiry,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
