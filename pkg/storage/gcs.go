// Package storage persists invoice attachments to Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Client wraps a GCS bucket handle
type Client struct {
	bucket *gcs.BucketHandle
}

// NewClient creates a storage client for the given bucket
func NewClient(ctx context.Context, bucketName, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &Client{
		bucket: client.Bucket(bucketName),
	}, nil
}

// Put writes an object. Writing the same key twice overwrites, which is the
// intended behavior for re-processed attachments.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := c.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %v", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %v", key, err)
	}
	return nil
}

// AttachmentKey builds the object key for an invoice attachment, scoped by
// sender, thread and filename. Each segment is flattened so a crafted
// filename or address cannot introduce extra path levels in the key.
func AttachmentKey(senderAddress, threadID, filename string) string {
	return fmt.Sprintf("invoices/%s/%s/%s", keySegment(senderAddress), keySegment(threadID), keySegment(filename))
}

func keySegment(s string) string {
	s = path.Base(strings.ReplaceAll(s, "\\", "/"))
	if s == "." || s == "/" {
		return "_"
	}
	return s
}
