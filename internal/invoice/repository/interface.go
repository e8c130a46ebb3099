package repository

import (
	invoicedomain "invoiceai-backend/internal/invoice/domain"
)

// InvoiceRepository defines data access for ingested invoices
type InvoiceRepository interface {
	Create(invoice *invoicedomain.Invoice) error
	FindByID(id string) (*invoicedomain.Invoice, error)
	List(limit, offset int) ([]invoicedomain.Invoice, int64, error)
	UpdateStatus(id, status string) error
}
