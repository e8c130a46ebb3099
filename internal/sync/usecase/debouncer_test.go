package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolveCall struct {
	emailAddress string
	historyID    string
}

type resolveRecorder struct {
	mu    sync.Mutex
	calls []resolveCall
	err   error
}

func (r *resolveRecorder) resolve(ctx context.Context, emailAddress, historyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, resolveCall{emailAddress: emailAddress, historyID: historyID})
	return r.err
}

func (r *resolveRecorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *resolveRecorder) lastCall() resolveCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func (r *resolveRecorder) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *resolveRecorder) snapshot() []resolveCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]resolveCall(nil), r.calls...)
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	rec := &resolveRecorder{}
	d := NewDebouncer(100*time.Millisecond, rec.resolve)

	d.OnNotification("a@example.com", "10")
	time.Sleep(20 * time.Millisecond)
	d.OnNotification("a@example.com", "11")
	time.Sleep(20 * time.Millisecond)
	d.OnNotification("a@example.com", "15")

	time.Sleep(250 * time.Millisecond)

	require.Equal(t, 1, rec.callCount(), "burst should resolve exactly once")
	assert.Equal(t, "a@example.com", rec.lastCall().emailAddress)
	assert.Equal(t, "15", rec.lastCall().historyID, "should carry the latest token")
}

func TestDebouncerFiresAgainAfterWindow(t *testing.T) {
	rec := &resolveRecorder{}
	d := NewDebouncer(50*time.Millisecond, rec.resolve)

	d.OnNotification("a@example.com", "10")
	time.Sleep(150 * time.Millisecond)

	d.OnNotification("a@example.com", "20")
	time.Sleep(150 * time.Millisecond)

	require.Equal(t, 2, rec.callCount())
	assert.Equal(t, "20", rec.lastCall().historyID)
}

func TestDebouncerIndependentMailboxes(t *testing.T) {
	rec := &resolveRecorder{}
	d := NewDebouncer(50*time.Millisecond, rec.resolve)

	d.OnNotification("a@example.com", "10")
	d.OnNotification("b@example.com", "99")

	time.Sleep(150 * time.Millisecond)

	require.Equal(t, 2, rec.callCount(), "mailboxes must not coalesce with each other")

	seen := map[string]string{}
	for _, call := range rec.snapshot() {
		seen[call.emailAddress] = call.historyID
	}
	assert.Equal(t, "10", seen["a@example.com"])
	assert.Equal(t, "99", seen["b@example.com"])
}

func TestDebouncerFailureDoesNotPoisonNextWindow(t *testing.T) {
	rec := &resolveRecorder{err: errors.New("history feed unavailable")}
	d := NewDebouncer(50*time.Millisecond, rec.resolve)

	d.OnNotification("a@example.com", "10")
	time.Sleep(150 * time.Millisecond)

	require.Equal(t, 1, rec.callCount())

	// A later notification must still arm a fresh window and resolve
	rec.setErr(nil)
	d.OnNotification("a@example.com", "11")
	time.Sleep(150 * time.Millisecond)

	require.Equal(t, 2, rec.callCount())
	assert.Equal(t, "11", rec.lastCall().historyID)
}
