// Package storage keeps uploaded RFQ files: drawings, attachments and
// quotation images.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL is where clients fetch the object.
	URL(key string) string
}

// Open returns the store selected by backend: "local" (default) or "gcs".
func Open(ctx context.Context, backend, localDir, publicPrefix, bucket, credentialsFile string) (Store, error) {
	switch backend {
	case "", "local":
		return NewLocal(localDir, publicPrefix)
	case "gcs":
		return NewGCS(ctx, bucket, credentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Key builds an object key under the org and project for an uploaded file.
// The filename is reduced to its base name.
func Key(orgID, projectID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return path.Join(safeSegment(orgID), safeSegment(projectID), uuid.New().String()+"-"+name)
}

func safeSegment(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_").Replace(s)
	if s == "" {
		return "_"
	}
	return s
}
