package domain

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenUpdateFunc is called whenever the OAuth token source refreshed the
// access token, so the new credentials can be persisted.
type TokenUpdateFunc func(token *oauth2.Token) error

// MailboxAccount represents one authorized Gmail mailbox. Accounts are
// registered through the accounts API with tokens from the consent flow;
// the sync pipeline only reads them (and persists refreshed tokens via
// TokenUpdateFunc).
type MailboxAccount struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
