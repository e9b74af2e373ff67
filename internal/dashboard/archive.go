package dashboard

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Archiver stores exported report files.
type Archiver interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
}

type GCSArchiver struct {
	client *storage.Client
	bucket string
}

// NewGCSArchiver uses the given service account JSON, or application
// default credentials when it is empty.
func NewGCSArchiver(ctx context.Context, bucket, credJSON string) (*GCSArchiver, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not accessible: %w", bucket, err)
	}
	return &GCSArchiver{client: client, bucket: bucket}, nil
}

func (a *GCSArchiver) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	wc := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("upload %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", objectName, err)
	}
	return nil
}

func (a *GCSArchiver) Close() error {
	return a.client.Close()
}
