package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	accountdomain "invoiceai-backend/internal/account/domain"
	invoicedomain "invoiceai-backend/internal/invoice/domain"
	syncdomain "invoiceai-backend/internal/sync/domain"
)

// fakeProvider is an in-memory MailProvider
type fakeProvider struct {
	events          []syncdomain.ChangeEvent
	latestHistoryID string
	listErr         error
	listCalls       []string

	threads  map[string][]string // threadID -> message ids
	messages map[string][]byte   // messageID -> raw RFC822

	sendErr     error
	sentReplies []sentReply

	profileEmail     string
	profileHistoryID string

	watchExpiry    time.Time
	watchHistoryID string
	watchCalls     int
}

type sentReply struct {
	threadID string
	raw      []byte
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		threads:  make(map[string][]string),
		messages: make(map[string][]byte),
	}
}

func (f *fakeProvider) ListHistory(ctx context.Context, accessToken, refreshToken, startHistoryID string, onTokenRefresh accountdomain.TokenUpdateFunc) ([]syncdomain.ChangeEvent, string, error) {
	f.listCalls = append(f.listCalls, startHistoryID)
	if f.listErr != nil {
		return nil, "", f.listErr
	}
	return f.events, f.latestHistoryID, nil
}

func (f *fakeProvider) GetThreadMessageIDs(ctx context.Context, accessToken, refreshToken, threadID string, onTokenRefresh accountdomain.TokenUpdateFunc) ([]string, error) {
	ids, ok := f.threads[threadID]
	if !ok {
		return nil, fmt.Errorf("thread not found: %s", threadID)
	}
	return ids, nil
}

func (f *fakeProvider) GetRawMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh accountdomain.TokenUpdateFunc) ([]byte, error) {
	raw, ok := f.messages[messageID]
	if !ok {
		return nil, fmt.Errorf("message not found: %s", messageID)
	}
	return raw, nil
}

func (f *fakeProvider) SendReply(ctx context.Context, accessToken, refreshToken, threadID string, rawMime []byte, onTokenRefresh accountdomain.TokenUpdateFunc) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sentReplies = append(f.sentReplies, sentReply{threadID: threadID, raw: rawMime})
	return fmt.Sprintf("sent-%d", len(f.sentReplies)), nil
}

func (f *fakeProvider) GetProfile(ctx context.Context, accessToken, refreshToken string, onTokenRefresh accountdomain.TokenUpdateFunc) (string, string, error) {
	return f.profileEmail, f.profileHistoryID, nil
}

func (f *fakeProvider) Watch(ctx context.Context, accessToken, refreshToken string, topicName string, onTokenRefresh accountdomain.TokenUpdateFunc) (time.Time, string, error) {
	f.watchCalls++
	return f.watchExpiry, f.watchHistoryID, nil
}

// fakeStore records object puts
type fakeStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

// fakeExtractor returns a fixed extraction result
type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractInvoice(ctx context.Context, pdf []byte, filename string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeNotifier records operator pushes
type fakeNotifier struct {
	calls int
}

func (f *fakeNotifier) NotifyInvoiceIngested(ctx context.Context, senderAddress, subject, invoiceID string) error {
	f.calls++
	return nil
}

// fakeAccountRepo holds accounts in memory
type fakeAccountRepo struct {
	accounts []*accountdomain.MailboxAccount
}

func (f *fakeAccountRepo) Create(account *accountdomain.MailboxAccount) error {
	f.accounts = append(f.accounts, account)
	return nil
}

func (f *fakeAccountRepo) FindByEmail(email string) (*accountdomain.MailboxAccount, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByID(id string) (*accountdomain.MailboxAccount, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) Update(account *accountdomain.MailboxAccount) error {
	return nil
}

// fakeCursorRepo holds one cursor per account
type fakeCursorRepo struct {
	cursors map[string]*syncdomain.SyncCursor
}

func newFakeCursorRepo() *fakeCursorRepo {
	return &fakeCursorRepo{cursors: make(map[string]*syncdomain.SyncCursor)}
}

func (f *fakeCursorRepo) Find(accountID string) (*syncdomain.SyncCursor, error) {
	return f.cursors[accountID], nil
}

func (f *fakeCursorRepo) Advance(accountID, historyID string) error {
	cursor, ok := f.cursors[accountID]
	if !ok {
		cursor = &syncdomain.SyncCursor{AccountID: accountID}
		f.cursors[accountID] = cursor
	}
	cursor.LastHistoryID = historyID
	cursor.LastSyncedAt = time.Now()
	return nil
}

func (f *fakeCursorRepo) SetWatchExpiry(accountID string, expiry time.Time) error {
	cursor, ok := f.cursors[accountID]
	if !ok {
		cursor = &syncdomain.SyncCursor{AccountID: accountID}
		f.cursors[accountID] = cursor
	}
	cursor.WatchExpiry = &expiry
	return nil
}

func (f *fakeCursorRepo) FindExpiringWatches(deadline time.Time) ([]syncdomain.SyncCursor, error) {
	var out []syncdomain.SyncCursor
	for _, c := range f.cursors {
		if c.WatchExpiry != nil && c.WatchExpiry.Before(deadline) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// fakeRepliedRepo mimics the insert-if-absent ledger
type fakeRepliedRepo struct {
	entries map[string]*syncdomain.RepliedThread
}

func newFakeRepliedRepo() *fakeRepliedRepo {
	return &fakeRepliedRepo{entries: make(map[string]*syncdomain.RepliedThread)}
}

func (f *fakeRepliedRepo) HasReplied(threadID string) (bool, error) {
	_, ok := f.entries[threadID]
	return ok, nil
}

func (f *fakeRepliedRepo) Record(entry *syncdomain.RepliedThread) (bool, error) {
	if _, ok := f.entries[entry.ThreadID]; ok {
		return true, nil
	}
	f.entries[entry.ThreadID] = entry
	return false, nil
}

// fakeInvoiceRepo collects created invoices
type fakeInvoiceRepo struct {
	invoices []*invoicedomain.Invoice
}

func (f *fakeInvoiceRepo) Create(invoice *invoicedomain.Invoice) error {
	invoice.ID = fmt.Sprintf("inv-%d", len(f.invoices)+1)
	f.invoices = append(f.invoices, invoice)
	return nil
}

func (f *fakeInvoiceRepo) FindByID(id string) (*invoicedomain.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) List(limit, offset int) ([]invoicedomain.Invoice, int64, error) {
	var out []invoicedomain.Invoice
	for _, inv := range f.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoiceRepo) UpdateStatus(id, status string) error {
	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.Status = status
		}
	}
	return nil
}

// buildRawEmail constructs a minimal RFC822 message, optionally carrying a
// PDF attachment
func buildRawEmail(from, subject, messageID string, pdf []byte) []byte {
	if pdf == nil {
		return []byte("From: " + from + "\r\n" +
			"To: billing@acme.test\r\n" +
			"Subject: " + subject + "\r\n" +
			"Message-Id: <" + messageID + ">\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
			"\r\n" +
			"Hello\r\n")
	}

	encoded := base64.StdEncoding.EncodeToString(pdf)
	return []byte("From: " + from + "\r\n" +
		"To: billing@acme.test\r\n" +
		"Subject: " + subject + "\r\n" +
		"Message-Id: <" + messageID + ">\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"frontier\"\r\n" +
		"\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		"Please find the invoice attached.\r\n" +
		"--frontier\r\n" +
		"Content-Type: application/pdf\r\n" +
		"Content-Disposition: attachment; filename=\"invoice.pdf\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		encoded + "\r\n" +
		"--frontier--\r\n")
}
