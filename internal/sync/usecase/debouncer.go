package usecase

import (
	"context"
	"log"
	"sync"
	"time"
)

// ResolveFunc is invoked once per debounce window with the most recent
// history token seen for a mailbox
type ResolveFunc func(ctx context.Context, emailAddress, historyID string) error

// pendingNotification is one armed debounce-window entry
type pendingNotification struct {
	historyID string
	timer     *time.Timer
}

// Debouncer coalesces bursts of push notifications per mailbox: only the
// trailing edge fires, carrying the latest history token. State for
// different mailboxes is independent; notifications are never coalesced
// across mailboxes.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*pendingNotification
	resolve ResolveFunc
}

// NewDebouncer creates a debouncer with the given window. One instance is
// created at process start and shared by the webhook handler and the
// Pub/Sub subscriber.
func NewDebouncer(window time.Duration, resolve ResolveFunc) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]*pendingNotification),
		resolve: resolve,
	}
}

// OnNotification records one inbound notification. The first notification
// for a mailbox arms the window; later ones within the window replace the
// token and re-arm it.
func (d *Debouncer) OnNotification(emailAddress, historyID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[emailAddress]; ok {
		p.historyID = historyID
		p.timer.Reset(d.window)
		return
	}

	p := &pendingNotification{historyID: historyID}
	p.timer = time.AfterFunc(d.window, func() {
		d.fire(emailAddress)
	})
	d.pending[emailAddress] = p
}

// fire runs when a mailbox's window elapses with no further notifications.
// The entry is discarded before resolving, so a failed resolution never
// poisons the next window.
func (d *Debouncer) fire(emailAddress string) {
	d.mu.Lock()
	p, ok := d.pending[emailAddress]
	if !ok {
		// A notification raced the timer and the entry was already
		// consumed by an earlier fire
		d.mu.Unlock()
		return
	}
	historyID := p.historyID
	delete(d.pending, emailAddress)
	d.mu.Unlock()

	log.Printf("[Sync] Debounce window elapsed for %s (historyId: %s)", emailAddress, historyID)

	if err := d.resolve(context.Background(), emailAddress, historyID); err != nil {
		log.Printf("[Sync] Error resolving changes for %s: %v", emailAddress, err)
	}
}
