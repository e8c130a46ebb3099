package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	accountdomain "invoiceai-backend/internal/account/domain"
	accountrepo "invoiceai-backend/internal/account/repository"
	invoicerepo "invoiceai-backend/internal/invoice/repository"
	syncrepo "invoiceai-backend/internal/sync/repository"
	"invoiceai-backend/pkg/extract"

	"golang.org/x/oauth2"
)

// syncUsecase implements SyncUsecase
type syncUsecase struct {
	accountRepo    accountrepo.AccountRepository
	cursorRepo     syncrepo.SyncCursorRepository
	repliedRepo    syncrepo.RepliedThreadRepository
	invoiceRepo    invoicerepo.InvoiceRepository
	provider       MailProvider
	store          ObjectStore
	extractor      extract.InvoiceExtractor
	notifier       Notifier
	topicName      string
	extractTimeout time.Duration
}

// NewSyncUsecase wires the change-sync pipeline. notifier and invoiceRepo
// may be nil; the pipeline degrades to reply-and-ledger only.
func NewSyncUsecase(
	accountRepo accountrepo.AccountRepository,
	cursorRepo syncrepo.SyncCursorRepository,
	repliedRepo syncrepo.RepliedThreadRepository,
	invoiceRepo invoicerepo.InvoiceRepository,
	provider MailProvider,
	store ObjectStore,
	extractor extract.InvoiceExtractor,
	notifier Notifier,
	topicName string,
	extractTimeout time.Duration,
) SyncUsecase {
	return &syncUsecase{
		accountRepo:    accountRepo,
		cursorRepo:     cursorRepo,
		repliedRepo:    repliedRepo,
		invoiceRepo:    invoiceRepo,
		provider:       provider,
		store:          store,
		extractor:      extractor,
		notifier:       notifier,
		topicName:      topicName,
		extractTimeout: extractTimeout,
	}
}

// tokenRefreshCallback persists refreshed OAuth tokens on the account row
func (u *syncUsecase) tokenRefreshCallback(account *accountdomain.MailboxAccount) accountdomain.TokenUpdateFunc {
	return func(newToken *oauth2.Token) error {
		account.AccessToken = newToken.AccessToken
		if newToken.RefreshToken != "" {
			account.RefreshToken = newToken.RefreshToken
		}
		return u.accountRepo.Update(account)
	}
}

func (u *syncUsecase) ProcessNotification(ctx context.Context, emailAddress, fallbackHistoryID string) error {
	account, err := u.accountRepo.FindByEmail(emailAddress)
	if err != nil {
		return fmt.Errorf("error finding account for %s: %w", emailAddress, err)
	}
	if account == nil {
		return fmt.Errorf("account not found for %s", emailAddress)
	}

	onTokenRefresh := u.tokenRefreshCallback(account)

	cursor, err := u.cursorRepo.Find(account.ID)
	if err != nil {
		return fmt.Errorf("error loading sync cursor: %w", err)
	}

	startHistoryID := ""
	if cursor != nil && cursor.LastHistoryID != "" {
		startHistoryID = cursor.LastHistoryID
	} else if fallbackHistoryID != "" {
		startHistoryID = fallbackHistoryID
	}

	// No usable start token: seed the cursor from the mailbox profile so
	// the next notification has a baseline to diff against
	if startHistoryID == "" {
		_, currentHistoryID, err := u.provider.GetProfile(ctx, account.AccessToken, account.RefreshToken, onTokenRefresh)
		if err != nil {
			return fmt.Errorf("error seeding cursor from profile: %w", err)
		}
		log.Printf("[Sync] Seeding cursor for %s at historyId %s", emailAddress, currentHistoryID)
		return u.cursorRepo.Advance(account.ID, currentHistoryID)
	}

	events, latestHistoryID, err := u.provider.ListHistory(ctx, account.AccessToken, account.RefreshToken, startHistoryID, onTokenRefresh)
	if err != nil {
		return fmt.Errorf("error listing history from %s: %w", startHistoryID, err)
	}

	if len(events) > 0 {
		u.ProcessHistories(ctx, account, events)
	}

	// The cursor advances only after the batch has been processed, so a
	// crash mid-batch re-fetches the same range instead of skipping it
	if err := u.cursorRepo.Advance(account.ID, latestHistoryID); err != nil {
		return fmt.Errorf("error advancing cursor: %w", err)
	}

	log.Printf("[Sync] Processed %d change events for %s, cursor now %s", len(events), emailAddress, latestHistoryID)
	return nil
}

func (u *syncUsecase) StartWatch(ctx context.Context, accountID string) (time.Time, error) {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return time.Time{}, err
	}
	if account == nil {
		return time.Time{}, fmt.Errorf("account not found: %s", accountID)
	}

	onTokenRefresh := u.tokenRefreshCallback(account)

	expiry, historyID, err := u.provider.Watch(ctx, account.AccessToken, account.RefreshToken, u.topicName, onTokenRefresh)
	if err != nil {
		return time.Time{}, err
	}

	if err := u.cursorRepo.SetWatchExpiry(account.ID, expiry); err != nil {
		return time.Time{}, fmt.Errorf("error recording watch expiry: %w", err)
	}

	// Seed the cursor from the watch response if no sync has happened yet
	cursor, err := u.cursorRepo.Find(account.ID)
	if err != nil {
		return time.Time{}, err
	}
	if cursor == nil || cursor.LastHistoryID == "" {
		if err := u.cursorRepo.Advance(account.ID, historyID); err != nil {
			return time.Time{}, err
		}
	}

	return expiry, nil
}

func (u *syncUsecase) SyncNow(ctx context.Context, accountID string) error {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account not found: %s", accountID)
	}
	return u.ProcessNotification(ctx, account.Email, "")
}
