package delivery

import (
	"net/http"
	"time"

	"invoiceai-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

// NotificationSink receives raw inbound notifications; the debouncer
// implements it
type NotificationSink interface {
	OnNotification(emailAddress, historyID string)
}

// GmailNotification is the push payload delivered to the webhook (payload
// unwrapping enabled on the subscription)
type GmailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    string `json:"historyId"`
}

type SyncHandler struct {
	sink        NotificationSink
	syncUsecase usecase.SyncUsecase
}

func NewSyncHandler(sink NotificationSink, syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{
		sink:        sink,
		syncUsecase: syncUsecase,
	}
}

// HandlePushNotification accepts a provider push notification and feeds it
// into the debouncer. The response never waits for the debounce window or
// the downstream sync. The status is always 2xx, including for bad
// payloads: the provider redelivers on non-2xx, which would turn one
// malformed notification into a storm.
func (h *SyncHandler) HandlePushNotification(c *gin.Context) {
	var notification GmailNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	if notification.EmailAddress == "" || notification.HistoryID == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "emailAddress and historyId are required"})
		return
	}

	h.sink.OnNotification(notification.EmailAddress, notification.HistoryID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// StartWatch arms provider push notifications for an account
func (h *SyncHandler) StartWatch(c *gin.Context) {
	accountID := c.Param("id")

	expiry, err := h.syncUsecase.StartWatch(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "watch started",
		"expiry":  expiry.Format(time.RFC3339),
	})
}

// SyncNow triggers an immediate sync cycle for an account, bypassing the
// debouncer
func (h *SyncHandler) SyncNow(c *gin.Context) {
	accountID := c.Param("id")

	if err := h.syncUsecase.SyncNow(c.Request.Context(), accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sync completed"})
}
