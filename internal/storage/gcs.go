package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS backs the Store interface with one Google Cloud Storage bucket.
// Refs passed to List/Download may still be local paths or refs into other
// buckets; the ref itself decides which bucket is touched.
type GCS struct {
	client *gcs.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Close() error { return g.client.Close() }

// List returns blob basenames under dir, which may be a gs://bucket/prefix
// ref or a bare prefix inside the configured bucket. Pseudo-directory
// entries are skipped.
func (g *GCS) List(ctx context.Context, dir string) ([]string, error) {
	bucket, prefix := g.bucket, dir
	if IsRemote(dir) {
		var err error
		bucket, prefix, err = ParseRef(dir)
		if err != nil {
			return nil, err
		}
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	it := g.client.Bucket(bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing gs://%s/%s: %w", bucket, prefix, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		name := attrs.Name[strings.LastIndex(attrs.Name, "/")+1:]
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (g *GCS) Download(ctx context.Context, ref, dest string) error {
	bucket, key, err := ParseRef(ref)
	if err != nil {
		return err
	}
	r, err := g.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("opening %s: %w", ref, err)
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("downloading %s: %w", ref, err)
	}
	return nil
}

// Upload writes data under key in the configured bucket and returns a V4
// signed URL valid for one hour. When the active credentials cannot sign
// (no private key, e.g. user application-default credentials) it degrades
// to the bare gs:// ref, matching the documented Upload contract.
func (g *GCS) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	obj := g.client.Bucket(g.bucket).Object(key)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	url, err := g.client.Bucket(g.bucket).SignedURL(key, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(time.Hour),
	})
	if err != nil {
		if isSigningUnavailable(err) {
			return RemoteRef(g.bucket, key), nil
		}
		return "", fmt.Errorf("signing URL for %s: %w", key, err)
	}
	return url, nil
}

func isSigningUnavailable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "private key") || strings.Contains(msg, "credentials")
}
