package blobstore

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCS implements Store on a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCS wraps an existing client. It verifies the bucket is reachable so
// a misconfigured bucket name fails at startup, not mid-ingest.
func NewGCS(ctx context.Context, client *storage.Client, bucket string, logger *zap.Logger) (*GCS, error) {
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		return nil, fmt.Errorf("blobstore: bucket %q not accessible: %w", bucket, err)
	}
	return &GCS{client: client, bucket: bucket, logger: logger}, nil
}

func (g *GCS) put(ctx context.Context, path, contentType string, data []byte) (string, error) {
	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("blobstore: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("blobstore: close %s: %w", path, err)
	}
	uri := fmt.Sprintf("gs://%s/%s", g.bucket, path)
	g.logger.Debug("blob stored", zap.String("uri", uri), zap.Int("bytes", len(data)))
	return uri, nil
}

// PutJSON stores v as a JSON document.
func (g *GCS) PutJSON(ctx context.Context, path string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("blobstore: marshal %s: %w", path, err)
	}
	return g.put(ctx, path, "application/json", data)
}

// PutText stores plain text.
func (g *GCS) PutText(ctx context.Context, path string, text string) (string, error) {
	return g.put(ctx, path, "text/plain; charset=utf-8", []byte(text))
}
