package repository

import (
	"time"

	syncdomain "invoiceai-backend/internal/sync/domain"
)

// SyncCursorRepository persists the per-account history cursor
type SyncCursorRepository interface {
	// Find returns the cursor for an account, or nil if none exists yet
	Find(accountID string) (*syncdomain.SyncCursor, error)

	// Advance upserts the cursor for an account with the given history id
	// and stamps last-synced-at
	Advance(accountID, historyID string) error

	// SetWatchExpiry records when the account's push watch subscription expires
	SetWatchExpiry(accountID string, expiry time.Time) error

	// FindExpiringWatches returns cursors whose armed watch expires before
	// the given deadline. Cursors that never held a watch are not included.
	FindExpiringWatches(deadline time.Time) ([]syncdomain.SyncCursor, error)
}
