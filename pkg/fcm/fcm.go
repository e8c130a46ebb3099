// Package fcm sends best-effort operator push notifications when an
// invoice is ingested. The client is optional; a nil *Client disables
// notifications without affecting the pipeline.
package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
	topic           string
}

// NewClient creates a new FCM client using the provided credentials file.
// Notifications are published to the given topic; dashboard clients
// subscribe to it.
func NewClient(credentialsFile, topic string) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
		topic:           topic,
	}, nil
}

// NotifyInvoiceIngested publishes an "invoice received" push to the
// operator topic. Safe to call on a nil client.
func (c *Client) NotifyInvoiceIngested(ctx context.Context, senderAddress, subject, invoiceID string) error {
	if c == nil {
		return nil
	}

	body := subject
	if body == "" {
		body = "(no subject)"
	}

	message := &messaging.Message{
		Topic: c.topic,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("Invoice from %s", senderAddress),
			Body:  body,
		},
		Data: map[string]string{
			"type":         "invoice_ingested",
			"invoice_id":   invoiceID,
			"sender":       senderAddress,
			"click_action": "/invoices/" + invoiceID,
		},
	}

	response, err := c.messagingClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	log.Printf("[FCM] Message sent successfully: %s", response)
	return nil
}
