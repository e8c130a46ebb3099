package scheduler

import (
	"context"
	"log"
	"time"

	syncrepo "invoiceai-backend/internal/sync/repository"
	"invoiceai-backend/internal/sync/usecase"
)

// WatchRenewalScheduler re-arms mailbox watches before they expire. A
// Gmail watch lives about seven days; without renewal push notifications
// silently stop.
type WatchRenewalScheduler struct {
	cursorRepo  syncrepo.SyncCursorRepository
	syncUsecase usecase.SyncUsecase
	interval    time.Duration
	stopChan    chan struct{}
}

// NewWatchRenewalScheduler creates a new scheduler
func NewWatchRenewalScheduler(
	cursorRepo syncrepo.SyncCursorRepository,
	syncUsecase usecase.SyncUsecase,
	interval time.Duration,
) *WatchRenewalScheduler {
	return &WatchRenewalScheduler{
		cursorRepo:  cursorRepo,
		syncUsecase: syncUsecase,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *WatchRenewalScheduler) Start() {
	log.Printf("[WatchScheduler] Starting watch renewal scheduler (interval: %s)", s.interval)

	go func() {
		// Run immediately on start
		s.renewExpiringWatches()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.renewExpiringWatches()
			case <-s.stopChan:
				log.Println("[WatchScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *WatchRenewalScheduler) Stop() {
	close(s.stopChan)
}

// renewExpiringWatches re-arms every watch expiring within the next day
func (s *WatchRenewalScheduler) renewExpiringWatches() {
	deadline := time.Now().Add(24 * time.Hour)

	cursors, err := s.cursorRepo.FindExpiringWatches(deadline)
	if err != nil {
		log.Printf("[WatchScheduler] Error finding expiring watches: %v", err)
		return
	}

	if len(cursors) == 0 {
		return
	}

	log.Printf("[WatchScheduler] Found %d watches needing renewal", len(cursors))

	for _, cursor := range cursors {
		expiry, err := s.syncUsecase.StartWatch(context.Background(), cursor.AccountID)
		if err != nil {
			log.Printf("[WatchScheduler] Error renewing watch for account %s: %v", cursor.AccountID, err)
			continue
		}
		log.Printf("[WatchScheduler] Renewed watch for account %s (expires: %s)", cursor.AccountID, expiry.Format(time.RFC3339))
	}
}
