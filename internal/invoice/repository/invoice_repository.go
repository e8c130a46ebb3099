package repository

import (
	"errors"
	"time"

	invoicedomain "invoiceai-backend/internal/invoice/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// invoiceRepository implements InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new instance of invoiceRepository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{
		db: db,
	}
}

func (r *invoiceRepository) Create(invoice *invoicedomain.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.Status == "" {
		invoice.Status = invoicedomain.StatusPending
	}
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = time.Now()
	return r.db.Create(invoice).Error
}

func (r *invoiceRepository) FindByID(id string) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := r.db.Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(limit, offset int) ([]invoicedomain.Invoice, int64, error) {
	var invoices []invoicedomain.Invoice
	var total int64

	if err := r.db.Model(&invoicedomain.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&invoicedomain.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}
