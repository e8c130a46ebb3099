package repository

import (
	"errors"
	"time"

	syncdomain "invoiceai-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syncCursorRepository implements SyncCursorRepository interface
type syncCursorRepository struct {
	db *gorm.DB
}

// NewSyncCursorRepository creates a new instance of syncCursorRepository
func NewSyncCursorRepository(db *gorm.DB) SyncCursorRepository {
	return &syncCursorRepository{
		db: db,
	}
}

func (r *syncCursorRepository) Find(accountID string) (*syncdomain.SyncCursor, error) {
	var cursor syncdomain.SyncCursor
	err := r.db.Where("account_id = ?", accountID).First(&cursor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cursor, nil
}

func (r *syncCursorRepository) Advance(accountID, historyID string) error {
	var cursor syncdomain.SyncCursor
	err := r.db.Where("account_id = ?", accountID).First(&cursor).Error

	now := time.Now()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cursor = syncdomain.SyncCursor{
			ID:            uuid.New().String(),
			AccountID:     accountID,
			LastHistoryID: historyID,
			LastSyncedAt:  now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return r.db.Create(&cursor).Error
	} else if err != nil {
		return err
	}

	cursor.LastHistoryID = historyID
	cursor.LastSyncedAt = now
	cursor.UpdatedAt = now
	return r.db.Save(&cursor).Error
}

func (r *syncCursorRepository) SetWatchExpiry(accountID string, expiry time.Time) error {
	var cursor syncdomain.SyncCursor
	err := r.db.Where("account_id = ?", accountID).First(&cursor).Error

	now := time.Now()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cursor = syncdomain.SyncCursor{
			ID:          uuid.New().String(),
			AccountID:   accountID,
			WatchExpiry: &expiry,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return r.db.Create(&cursor).Error
	} else if err != nil {
		return err
	}

	cursor.WatchExpiry = &expiry
	cursor.UpdatedAt = now
	return r.db.Save(&cursor).Error
}

// FindExpiringWatches only considers rows that have held a watch. Accounts
// whose cursor exists purely from sync-seeding are never auto-armed; push
// starts when the operator calls the watch endpoint.
func (r *syncCursorRepository) FindExpiringWatches(deadline time.Time) ([]syncdomain.SyncCursor, error) {
	var cursors []syncdomain.SyncCursor
	err := r.db.Where("watch_expiry IS NOT NULL AND watch_expiry < ?", deadline).Find(&cursors).Error
	if err != nil {
		return nil, err
	}
	return cursors, nil
}
