package dal

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// ReportBucket writes report artifacts into one GCS bucket.
type ReportBucket struct {
	bucket *storage.BucketHandle
	name   string
}

func NewReportBucket(client *storage.Client, bucketName string) *ReportBucket {
	return &ReportBucket{
		bucket: client.Bucket(bucketName),
		name:   bucketName,
	}
}

func (b *ReportBucket) Upload(ctx context.Context, objectPath, contentType string, data []byte) error {
	w := b.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", b.name, objectPath, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close gs://%s/%s: %w", b.name, objectPath, err)
	}

	return nil
}
