package usecase

import (
	"context"
	"log"

	accountdomain "invoiceai-backend/internal/account/domain"
	invoicedomain "invoiceai-backend/internal/invoice/domain"
	syncdomain "invoiceai-backend/internal/sync/domain"
	"invoiceai-backend/pkg/gmail"
	"invoiceai-backend/pkg/mailparse"
	"invoiceai-backend/pkg/storage"
)

// apologyText is sent as the reply body when extraction fails. The reply
// must still go out: it is what writes the ledger entry and keeps the
// no-duplicate-reply guarantee.
const apologyText = "Thank you for your invoice. We were unable to process it automatically; our team will review it manually and get back to you."

const replySubjectPrefix = "[Invoice AI] Re: "

// ProcessHistories filters a batch of change events down to candidate
// threads and processes each one. Per-thread errors are logged with a
// truncated thread id and do not abort the rest of the batch.
func (u *syncUsecase) ProcessHistories(ctx context.Context, account *accountdomain.MailboxAccount, events []syncdomain.ChangeEvent) {
	// Collect distinct thread ids from inbound inbox messages, in
	// discovery order. A SENT label disqualifies the message even if it
	// also carries INBOX: mail the account sent itself is never a reason
	// to reply.
	seen := make(map[string]bool)
	var threadIDs []string
	for _, event := range events {
		if event.Kind != syncdomain.EventMessageAdded {
			continue
		}
		if !event.HasLabel("INBOX") || event.HasLabel("SENT") {
			continue
		}
		if event.ThreadID == "" || seen[event.ThreadID] {
			continue
		}
		seen[event.ThreadID] = true
		threadIDs = append(threadIDs, event.ThreadID)
	}

	for _, threadID := range threadIDs {
		if err := u.processThread(ctx, account, threadID); err != nil {
			log.Printf("[Sync] Error processing thread %s: %v", shortID(threadID), err)
		}
	}
}

// processThread handles one candidate thread: dedupe check, PDF hunt,
// storage, extraction, reply, ledger write. The ledger write strictly
// follows the send; if the send fails no row is written and the thread
// stays eligible for the next cycle.
func (u *syncUsecase) processThread(ctx context.Context, account *accountdomain.MailboxAccount, threadID string) error {
	replied, err := u.repliedRepo.HasReplied(threadID)
	if err != nil {
		return err
	}
	if replied {
		return nil
	}

	onTokenRefresh := u.tokenRefreshCallback(account)

	messageIDs, err := u.provider.GetThreadMessageIDs(ctx, account.AccessToken, account.RefreshToken, threadID, onTokenRefresh)
	if err != nil {
		return err
	}

	// Find the first message that is not our own and carries a PDF
	// attachment
	var meta *mailparse.ParsedEmail
	var pdf *mailparse.Attachment
	for _, messageID := range messageIDs {
		raw, err := u.provider.GetRawMessage(ctx, account.AccessToken, account.RefreshToken, messageID, onTokenRefresh)
		if err != nil {
			log.Printf("[Sync] Error fetching message %s in thread %s: %v", shortID(messageID), shortID(threadID), err)
			continue
		}

		parsed, err := mailparse.Parse(raw)
		if err != nil {
			log.Printf("[Sync] Error parsing message %s: %v", shortID(messageID), err)
			continue
		}

		if parsed.IsFrom(account.Email) {
			continue
		}

		pdfs := parsed.PDFAttachments()
		if len(pdfs) == 0 {
			continue
		}

		meta = parsed
		pdf = &pdfs[0]
		break
	}

	// No qualifying message yet: skip without a ledger write so the
	// thread stays a candidate if a later message brings an attachment
	if meta == nil || pdf == nil {
		return nil
	}

	filename := pdf.Filename
	if filename == "" {
		filename = "invoice.pdf"
	}

	key := storage.AttachmentKey(meta.From, threadID, filename)
	if err := u.store.Put(ctx, key, pdf.Data, "application/pdf"); err != nil {
		return err
	}

	// Extraction failure degrades to the apology; it must never abort
	// the reply
	extractCtx, cancel := context.WithTimeout(ctx, u.extractTimeout)
	text, err := u.extractor.ExtractInvoice(extractCtx, pdf.Data, filename)
	cancel()
	if err != nil {
		log.Printf("[Sync] Extraction failed for thread %s: %v", shortID(threadID), err)
		text = apologyText
	}

	rawReply := gmail.ComposeReply(gmail.ReplyOptions{
		From:       account.Email,
		To:         meta.From,
		Subject:    replySubjectPrefix + meta.Subject,
		Text:       text,
		InReplyTo:  meta.MessageID,
		References: meta.References,
	})

	replyID, err := u.provider.SendReply(ctx, account.AccessToken, account.RefreshToken, threadID, rawReply, onTokenRefresh)
	if err != nil {
		return err
	}

	// Commit point: the ledger row makes the thread "handled"
	alreadyReplied, err := u.repliedRepo.Record(&syncdomain.RepliedThread{
		ThreadID:     threadID,
		EmailAddress: meta.From,
		Subject:      meta.Subject,
		MessageID:    replyID,
	})
	if err != nil {
		return err
	}
	if alreadyReplied {
		log.Printf("[Sync] Thread %s was recorded by a concurrent cycle", shortID(threadID))
		return nil
	}

	log.Printf("[Sync] Replied to thread %s (from: %s)", shortID(threadID), meta.From)

	if u.invoiceRepo != nil {
		invoice := &invoicedomain.Invoice{
			ThreadID:      threadID,
			SenderAddress: meta.From,
			Subject:       meta.Subject,
			Filename:      filename,
			StorageKey:    key,
			ExtractedText: text,
		}
		if err := u.invoiceRepo.Create(invoice); err != nil {
			log.Printf("[Sync] Error recording invoice for thread %s: %v", shortID(threadID), err)
		} else if u.notifier != nil {
			if err := u.notifier.NotifyInvoiceIngested(ctx, meta.From, meta.Subject, invoice.ID); err != nil {
				log.Printf("[Sync] Error sending push notification: %v", err)
			}
		}
	}

	return nil
}

// shortID truncates provider ids for log readability
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
