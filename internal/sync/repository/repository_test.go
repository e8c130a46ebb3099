package repository

import (
	"testing"
	"time"

	syncdomain "invoiceai-backend/internal/sync/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&syncdomain.SyncCursor{}, &syncdomain.RepliedThread{})
	require.NoError(t, err)

	return db
}

func TestSyncCursorAdvanceCreatesThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncCursorRepository(db)

	cursor, err := repo.Find("acc-1")
	require.NoError(t, err)
	assert.Nil(t, cursor, "no cursor before first advance")

	require.NoError(t, repo.Advance("acc-1", "100"))

	cursor, err = repo.Find("acc-1")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "100", cursor.LastHistoryID)
	firstID := cursor.ID

	require.NoError(t, repo.Advance("acc-1", "200"))

	cursor, err = repo.Find("acc-1")
	require.NoError(t, err)
	assert.Equal(t, "200", cursor.LastHistoryID)
	assert.Equal(t, firstID, cursor.ID, "advance updates in place, never a second row")

	var count int64
	db.Model(&syncdomain.SyncCursor{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSyncCursorSetWatchExpiry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncCursorRepository(db)

	expiry := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.SetWatchExpiry("acc-1", expiry))

	cursor, err := repo.Find("acc-1")
	require.NoError(t, err)
	require.NotNil(t, cursor)
	require.NotNil(t, cursor.WatchExpiry)
	assert.WithinDuration(t, expiry, *cursor.WatchExpiry, time.Second)
}

func TestFindExpiringWatches(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSyncCursorRepository(db)

	// acc-1 expires soon, acc-2 far in the future, acc-3 never armed
	require.NoError(t, repo.SetWatchExpiry("acc-1", time.Now().Add(1*time.Hour)))
	require.NoError(t, repo.SetWatchExpiry("acc-2", time.Now().Add(100*time.Hour)))
	require.NoError(t, repo.Advance("acc-3", "50"))

	cursors, err := repo.FindExpiringWatches(time.Now().Add(24 * time.Hour))
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, c := range cursors {
		ids[c.AccountID] = true
	}
	assert.True(t, ids["acc-1"], "expiring watch should be returned")
	assert.False(t, ids["acc-2"], "healthy watch should be left alone")
	assert.False(t, ids["acc-3"], "an account that never armed a watch must not be auto-armed")
}

func TestRepliedThreadRecordIsInsertIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepliedThreadRepository(db)

	replied, err := repo.HasReplied("t1")
	require.NoError(t, err)
	assert.False(t, replied)

	already, err := repo.Record(&syncdomain.RepliedThread{
		ThreadID:     "t1",
		EmailAddress: "vendor@supplier.test",
		Subject:      "Invoice 42",
		MessageID:    "sent-1",
	})
	require.NoError(t, err)
	assert.False(t, already, "first record wins")

	replied, err = repo.HasReplied("t1")
	require.NoError(t, err)
	assert.True(t, replied)

	already, err = repo.Record(&syncdomain.RepliedThread{
		ThreadID:  "t1",
		MessageID: "sent-2",
	})
	require.NoError(t, err)
	assert.True(t, already, "second record for the same thread reports the existing row")

	var count int64
	db.Model(&syncdomain.RepliedThread{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// The original row is untouched
	var entry syncdomain.RepliedThread
	require.NoError(t, db.Where("thread_id = ?", "t1").First(&entry).Error)
	assert.Equal(t, "sent-1", entry.MessageID)
}
