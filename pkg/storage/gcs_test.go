package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachmentKey(t *testing.T) {
	key := AttachmentKey("vendor@supplier.test", "t1", "invoice-42.pdf")
	assert.Equal(t, "invoices/vendor@supplier.test/t1/invoice-42.pdf", key)
}

func TestAttachmentKeyFlattensPathSegments(t *testing.T) {
	key := AttachmentKey("vendor@supplier.test", "t1", "../../other/invoice.pdf")
	assert.Equal(t, "invoices/vendor@supplier.test/t1/invoice.pdf", key)

	key = AttachmentKey("a/b@supplier.test", "t1", "nested/dir/invoice.pdf")
	assert.Equal(t, "invoices/b@supplier.test/t1/invoice.pdf", key)

	key = AttachmentKey("vendor@supplier.test", "t1", "C:\\docs\\invoice.pdf")
	assert.Equal(t, "invoices/vendor@supplier.test/t1/invoice.pdf", key)
}

func TestAttachmentKeyEmptySegment(t *testing.T) {
	key := AttachmentKey("vendor@supplier.test", "t1", "/")
	assert.Equal(t, "invoices/vendor@supplier.test/t1/_", key)
}
