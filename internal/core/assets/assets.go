// Package assets stores uploaded images outside of the database.
//
// Writes and deletes here are not part of any database transaction; callers
// treat cleanup as best effort.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"places-api/pkg/utils"
)

var (
	ErrTooLarge        = errors.New("image too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// 允许的图片类型 -> 扩展名
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

type Store interface {
	// Save 写入并返回可持久化的引用（本地路径或公网 URL）
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Image 已校验的上传图片
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadImage 读取并嗅探内容类型；maxBytes<=0 不限制
func ReadImage(r io.Reader, maxBytes int64) (*Image, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	ext, ok := allowedImageTypes[mt.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}
	return &Image{Name: utils.NewID() + ext, ContentType: mt.String(), Data: data}, nil
}

// SaveImage 校验后写入 store
func SaveImage(ctx context.Context, s Store, r io.Reader, maxBytes int64) (string, error) {
	img, err := ReadImage(r, maxBytes)
	if err != nil {
		return "", err
	}
	return s.Save(ctx, img.Name, img.ContentType, bytes.NewReader(img.Data))
}
