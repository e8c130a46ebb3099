package repository

import (
	syncdomain "invoiceai-backend/internal/sync/domain"
)

// RepliedThreadRepository is the dedupe ledger for automated replies
type RepliedThreadRepository interface {
	// HasReplied checks whether a thread already has a ledger entry
	HasReplied(threadID string) (bool, error)

	// Record inserts a ledger entry if absent (atomic check-and-set on the
	// thread id unique index). Returns true if the entry already existed,
	// meaning another cycle replied first.
	// Returns: (alreadyReplied bool, error)
	Record(entry *syncdomain.RepliedThread) (bool, error)
}
