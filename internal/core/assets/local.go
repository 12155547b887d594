package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Local 写本地磁盘；引用形如 uploads/images/<uuid>.png，由静态路由对外提供
type Local struct {
	Dir string // 磁盘目录
	Ref string // 引用前缀（相对路径），为空时取 Dir
}

func NewLocal(dir, ref string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if ref == "" {
		ref = filepath.ToSlash(dir)
	}
	return &Local{Dir: dir, Ref: ref}, nil
}

func (s *Local) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = filepath.Base(name)
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close asset: %w", err)
	}
	return path.Join(s.Ref, name), nil
}

// Delete 只取引用的文件名部分，防止路径穿越；文件不存在视为成功
func (s *Local) Delete(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, path.Base(filepath.ToSlash(ref))))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
