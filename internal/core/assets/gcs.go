package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS 写 Google Cloud Storage；引用为对象的公网 URL
type GCS struct {
	client *gcs.Client
	bucket string
	prefix string
}

// NewGCS credsPath 为空时使用 ADC
func NewGCS(ctx context.Context, bucket, prefix, credsPath string) (*GCS, error) {
	var (
		c   *gcs.Client
		err error
	)
	if credsPath == "" {
		c, err = gcs.NewClient(ctx)
	} else {
		c, err = gcs.NewClient(ctx, option.WithCredentialsFile(credsPath))
	}
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{client: c, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *GCS) Close() error { return s.client.Close() }

func (s *GCS) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	obj := path.Join(s.prefix, path.Base(name))
	wc := s.client.Bucket(s.bucket).Object(obj).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // 小文件不分块
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("upload object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return PublicURL(s.bucket, obj), nil
}

func (s *GCS) Delete(ctx context.Context, ref string) error {
	obj, ok := ObjectPath(s.bucket, ref)
	if !ok {
		return fmt.Errorf("not an object of bucket %s: %s", s.bucket, ref)
	}
	err := s.client.Bucket(s.bucket).Object(obj).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

// ObjectPath PublicURL 的逆操作
func ObjectPath(bucket, ref string) (string, bool) {
	prefix := PublicURL(bucket, "")
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	obj := strings.TrimPrefix(ref, prefix)
	return obj, obj != ""
}
