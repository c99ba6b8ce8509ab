// Package storage abstracts the asset blob store. Refs are either plain
// local filesystem paths or gs://bucket/key remote references; both forms
// are accepted everywhere a ref is expected.
package storage

import (
	"context"
	"fmt"
	"strings"
)

const gsScheme = "gs://"

// Store lists, fetches and publishes blobs for one backing location.
type Store interface {
	// List returns the basenames of the blobs directly under dir.
	List(ctx context.Context, dir string) ([]string, error)
	// Download copies the blob at ref into the local file dest.
	Download(ctx context.Context, ref, dest string) error
	// Upload stores data under key and returns a retrieval handle: a
	// time-limited signed URL when signing is possible, otherwise a bare
	// remote ref string. Callers must accept either form.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// IsRemote reports whether ref addresses the remote blob store.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, gsScheme)
}

// ParseRef splits a gs://bucket/key ref into bucket and key.
func ParseRef(ref string) (bucket, key string, err error) {
	if !IsRemote(ref) {
		return "", "", fmt.Errorf("not a remote ref: %s", ref)
	}
	rest := strings.TrimPrefix(ref, gsScheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid remote ref format: %s", ref)
	}
	return parts[0], parts[1], nil
}

// RemoteRef builds a gs:// ref from a bucket and key parts.
func RemoteRef(bucket string, parts ...string) string {
	return gsScheme + bucket + "/" + strings.Join(parts, "/")
}
