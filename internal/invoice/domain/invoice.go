package domain

import "time"

// Invoice statuses. New invoices start as pending; review happens in the
// dashboard, outside this service.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Invoice is one ingested vendor invoice: the PDF attachment pulled from a
// mail thread, stored in object storage, with the AI extraction result.
type Invoice struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	ThreadID      string    `json:"thread_id" gorm:"index;not null"`
	SenderAddress string    `json:"sender_address" gorm:"index"`
	Subject       string    `json:"subject"`
	Filename      string    `json:"filename"`
	StorageKey    string    `json:"storage_key"`
	ExtractedText string    `json:"extracted_text"`
	Status        string    `json:"status" gorm:"default:pending"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
