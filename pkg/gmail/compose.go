package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// ReplyOptions describes a threaded text reply
type ReplyOptions struct {
	From       string
	To         string
	Subject    string
	Text       string
	InReplyTo  string
	References []string
}

// ComposeReply builds the raw RFC822 bytes for a threaded plain-text reply.
// In-Reply-To and References carry the original message's identifiers so
// mail clients keep the reply inside the conversation.
func ComposeReply(opts ReplyOptions) []byte {
	var msg bytes.Buffer

	msg.WriteString(fmt.Sprintf("From: %s\r\n", opts.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", opts.To))

	// Encode subject to handle non-ASCII characters (RFC 2047)
	encodedSubject := fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(opts.Subject)))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", encodedSubject))

	if opts.InReplyTo != "" {
		msg.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", angled(opts.InReplyTo)))
	}
	if len(opts.References) > 0 || opts.InReplyTo != "" {
		refs := make([]string, 0, len(opts.References)+1)
		for _, r := range opts.References {
			refs = append(refs, angled(r))
		}
		if opts.InReplyTo != "" {
			refs = append(refs, angled(opts.InReplyTo))
		}
		msg.WriteString(fmt.Sprintf("References: %s\r\n", strings.Join(refs, " ")))
	}

	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(opts.Text)
	msg.WriteString("\r\n")

	return msg.Bytes()
}

func angled(id string) string {
	if strings.HasPrefix(id, "<") {
		return id
	}
	return "<" + id + ">"
}
