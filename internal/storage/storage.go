package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// MaxImageBytes caps a single product image upload.
const MaxImageBytes = 5 << 20

// GCSImageStore writes product images to a Firebase Storage bucket and hands out
// token-protected download URLs.
type GCSImageStore struct {
	client *storage.Client
	bucket string
}

func NewGCSImageStore(ctx context.Context, bucket, credentialsFile string) (*GCSImageStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: new client: %w", err)
	}
	return &GCSImageStore{client: client, bucket: bucket}, nil
}

func (s *GCSImageStore) Upload(ctx context.Context, sellerID uint64, filename, contentType string, r io.Reader) (string, error) {
	objectPath := ObjectPath(sellerID, filename, uuid.NewString())
	token := uuid.NewString()

	// Cancelling ctx aborts the upload without committing the object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	n, err := io.Copy(w, io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("storage: write %s: %w", objectPath, err)
	}
	if n > MaxImageBytes {
		cancel()
		_ = w.Close()
		return "", fmt.Errorf("storage: image exceeds %d bytes", MaxImageBytes)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: close %s: %w", objectPath, err)
	}
	return DownloadURL(s.bucket, objectPath, token), nil
}

func (s *GCSImageStore) Close() error {
	return s.client.Close()
}

// ObjectPath places an upload under the seller's prefix with a random name,
// keeping only the original extension.
func ObjectPath(sellerID uint64, filename, id string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		ext = ""
	}
	return fmt.Sprintf("products/%d/%s%s", sellerID, id, ext)
}

func DownloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), token)
}
