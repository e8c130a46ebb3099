package repository

import (
	accountdomain "invoiceai-backend/internal/account/domain"
)

// AccountRepository defines data access for mailbox accounts
type AccountRepository interface {
	Create(account *accountdomain.MailboxAccount) error
	FindByEmail(email string) (*accountdomain.MailboxAccount, error)
	FindByID(id string) (*accountdomain.MailboxAccount, error)
	Update(account *accountdomain.MailboxAccount) error
}
