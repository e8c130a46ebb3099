package usecase

import (
	"context"
	"time"

	accountdomain "invoiceai-backend/internal/account/domain"
	syncdomain "invoiceai-backend/internal/sync/domain"
)

// MailProvider is the mailbox provider client used by the sync pipeline.
// Authentication and token refresh live behind this interface; the pipeline
// only passes credentials through.
type MailProvider interface {
	// ListHistory returns the change events since startHistoryID plus the
	// mailbox's current history id
	ListHistory(ctx context.Context, accessToken, refreshToken, startHistoryID string, onTokenRefresh accountdomain.TokenUpdateFunc) ([]syncdomain.ChangeEvent, string, error)

	// GetThreadMessageIDs returns the message ids of a thread, oldest first
	GetThreadMessageIDs(ctx context.Context, accessToken, refreshToken, threadID string, onTokenRefresh accountdomain.TokenUpdateFunc) ([]string, error)

	// GetRawMessage returns the full RFC822 bytes of a message
	GetRawMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh accountdomain.TokenUpdateFunc) ([]byte, error)

	// SendReply sends a raw MIME message into an existing thread and
	// returns the sent message id
	SendReply(ctx context.Context, accessToken, refreshToken, threadID string, rawMime []byte, onTokenRefresh accountdomain.TokenUpdateFunc) (string, error)

	// GetProfile returns the mailbox address and current history id
	GetProfile(ctx context.Context, accessToken, refreshToken string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error)

	// Watch arms push notifications; returns expiry and the history id at
	// watch time
	Watch(ctx context.Context, accessToken, refreshToken string, topicName string, onTokenRefresh accountdomain.TokenUpdateFunc) (time.Time, string, error)
}

// ObjectStore persists attachment bytes under a key
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Notifier publishes best-effort operator notifications
type Notifier interface {
	NotifyInvoiceIngested(ctx context.Context, senderAddress, subject, invoiceID string) error
}

// SyncUsecase drives the mailbox change-sync pipeline
type SyncUsecase interface {
	// ProcessNotification resolves the change history for a mailbox and
	// processes the resulting events. fallbackHistoryID is the token from
	// the push notification, used when no cursor is stored yet.
	ProcessNotification(ctx context.Context, emailAddress, fallbackHistoryID string) error

	// ProcessHistories runs the thread processor over a batch of change
	// events. Per-thread errors are logged and do not abort the batch.
	ProcessHistories(ctx context.Context, account *accountdomain.MailboxAccount, events []syncdomain.ChangeEvent)

	// StartWatch arms provider push notifications for an account
	StartWatch(ctx context.Context, accountID string) (time.Time, error)

	// SyncNow triggers an immediate resolve-and-process cycle, bypassing
	// the debouncer
	SyncNow(ctx context.Context, accountID string) error
}
