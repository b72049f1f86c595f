// Package blobstore persists raw API payloads. The raw layer is written
// before any warehouse mutation so a payload can always be replayed.
package blobstore

import "context"

// Store is the blob storage seam. Put methods return the URI of the
// stored object.
type Store interface {
	// PutJSON marshals v and stores it at path with a JSON content type.
	PutJSON(ctx context.Context, path string, v any) (string, error)
	// PutText stores plain text at path.
	PutText(ctx context.Context, path string, text string) (string, error)
}
