// Package mailparse extracts reply metadata and PDF attachments from raw
// RFC822 messages fetched from the mailbox provider.
package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	_ "github.com/emersion/go-message/charset"
)

const pdfContentType = "application/pdf"

// Attachment is a decoded attachment part
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ParsedEmail carries the metadata needed to thread a reply plus any
// attachments found in the message
type ParsedEmail struct {
	Subject     string
	From        string
	MessageID   string
	InReplyTo   string
	References  []string
	Attachments []Attachment
}

// Parse decodes a raw RFC822 message
func Parse(raw []byte) (*ParsedEmail, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unable to parse message: %v", err)
	}

	parsed := &ParsedEmail{}

	if subject, err := mr.Header.Subject(); err == nil {
		parsed.Subject = subject
	}
	if addrs, err := mr.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		parsed.From = addrs[0].Address
	}
	if id, err := mr.Header.MessageID(); err == nil {
		parsed.MessageID = id
	}
	if ids, err := mr.Header.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		parsed.InReplyTo = ids[0]
	}
	if refs, err := mr.Header.MsgIDList("References"); err == nil {
		parsed.References = refs
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			// A malformed part should not discard what was already
			// extracted from the rest of the message
			break
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, _ := header.Filename()
		contentType, _, _ := header.ContentType()

		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		parsed.Attachments = append(parsed.Attachments, Attachment{
			Filename:    filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	return parsed, nil
}

// PDFAttachments filters the message's attachments by PDF content type
func (p *ParsedEmail) PDFAttachments() []Attachment {
	var pdfs []Attachment
	for _, a := range p.Attachments {
		if strings.EqualFold(a.ContentType, pdfContentType) {
			pdfs = append(pdfs, a)
		}
	}
	return pdfs
}

// IsFrom reports whether the message sender matches the given address
// (case-insensitive)
func (p *ParsedEmail) IsFrom(address string) bool {
	return strings.EqualFold(p.From, address)
}
