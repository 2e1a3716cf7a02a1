package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"festa-events-pipeline/internal/models"
)

// Archive stores JSON snapshots of pipeline runs in S3: the adapted events of
// a run and, optionally, the raw feed payload for later inspection of
// rejected records.
type Archive struct {
	client *s3.Client
	bucket string
}

// ArchiveUploadResult describes one stored snapshot.
type ArchiveUploadResult struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// archivedRun wraps a run's events with its metadata.
type archivedRun struct {
	RunID      string          `json:"run_id"`
	ArchivedAt time.Time       `json:"archived_at"`
	Count      int             `json:"count"`
	Events     []*models.Event `json:"events"`
}

// NewArchive creates an archive using the default AWS credential chain. The
// bucket name comes from FESTA_ARCHIVE_BUCKET when set.
func NewArchive(ctx context.Context) (*Archive, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	bucket := os.Getenv("FESTA_ARCHIVE_BUCKET")
	if bucket == "" {
		bucket = "festa-events-archive"
	}

	return &Archive{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// UploadEvents stores a run's adapted events as one JSON object under
// runs/<runID>/events.json.
func (a *Archive) UploadEvents(ctx context.Context, runID string, events []*models.Event) (*ArchiveUploadResult, error) {
	payload := archivedRun{
		RunID:      runID,
		ArchivedAt: time.Now(),
		Count:      len(events),
		Events:     events,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events to JSON: %w", err)
	}
	return a.upload(ctx, fmt.Sprintf("runs/%s/events.json", runID), data)
}

// UploadRawFeed stores the raw feed records of a run under
// runs/<runID>/feed.json so rejected records can be inspected later.
func (a *Archive) UploadRawFeed(ctx context.Context, runID string, graph []models.RawEvent) (*ArchiveUploadResult, error) {
	data, err := json.Marshal(map[string]interface{}{"@graph": graph})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw feed to JSON: %w", err)
	}
	return a.upload(ctx, fmt.Sprintf("runs/%s/feed.json", runID), data)
}

func (a *Archive) upload(ctx context.Context, key string, data []byte) (*ArchiveUploadResult, error) {
	key = strings.TrimPrefix(key, "/")

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"uploaded-by": "festa-events-pipeline",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &ArchiveUploadResult{
		Key:        key,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
	}, nil
}
