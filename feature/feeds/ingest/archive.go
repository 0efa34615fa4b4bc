package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"

	"refdesk/core/storage"
)

// Archiver stores raw feed bodies for later inspection. Archiving is best
// effort: a failure is logged by the syncer and never affects the sync.
type Archiver interface {
	Archive(ctx context.Context, feedID string, body []byte) error
}

// BucketArchiver writes each fetched feed body to object storage, one
// object per fetch, keyed by feed id and fetch time.
type BucketArchiver struct {
	client storage.Client
	bucket string
	now    func() time.Time
}

func NewBucketArchiver(client storage.Client, bucket string) *BucketArchiver {
	return &BucketArchiver{client: client, bucket: bucket, now: time.Now}
}

func (a *BucketArchiver) Archive(ctx context.Context, feedID string, body []byte) error {
	key := fmt.Sprintf("feeds/%s/%s.ics", feedID, a.now().UTC().Format("20060102T150405Z"))
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/calendar",
	})
	if err != nil {
		return fmt.Errorf("archive feed body: %w", err)
	}
	return nil
}
