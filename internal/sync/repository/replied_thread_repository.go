package repository

import (
	"errors"
	"time"

	syncdomain "invoiceai-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// repliedThreadRepository implements RepliedThreadRepository interface
type repliedThreadRepository struct {
	db *gorm.DB
}

// NewRepliedThreadRepository creates a new instance of repliedThreadRepository
func NewRepliedThreadRepository(db *gorm.DB) RepliedThreadRepository {
	return &repliedThreadRepository{
		db: db,
	}
}

func (r *repliedThreadRepository) HasReplied(threadID string) (bool, error) {
	var entry syncdomain.RepliedThread
	err := r.db.Where("thread_id = ?", threadID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Record uses FirstOrCreate to check and create in one query, so two
// overlapping sync cycles for the same account cannot both write a row.
func (r *repliedThreadRepository) Record(entry *syncdomain.RepliedThread) (bool, error) {
	now := time.Now()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.RepliedAt.IsZero() {
		entry.RepliedAt = now
	}
	entry.CreatedAt = now

	// The thread id is the only search condition; everything else is a
	// creation attribute. Mixing the generated id or timestamps into the
	// lookup would make it miss the existing row and hit the unique index.
	var existing syncdomain.RepliedThread
	result := r.db.Where("thread_id = ?", entry.ThreadID).Attrs(*entry).FirstOrCreate(&existing)
	if result.Error != nil {
		return false, result.Error
	}

	// RowsAffected == 0 means the row was already there
	alreadyReplied := result.RowsAffected == 0

	return alreadyReplied, nil
}
