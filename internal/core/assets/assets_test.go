package assets

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 最小合法 PNG 头
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89,
}

func TestReadImageAcceptsPNG(t *testing.T) {
	img, err := ReadImage(bytes.NewReader(pngBytes), 1024)
	if err != nil {
		t.Fatalf("ReadImage: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("content type = %q", img.ContentType)
	}
	if !strings.HasSuffix(img.Name, ".png") {
		t.Fatalf("name = %q, want .png suffix", img.Name)
	}
}

func TestReadImageRejectsText(t *testing.T) {
	_, err := ReadImage(strings.NewReader("hello world"), 1024)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestReadImageRejectsOversize(t *testing.T) {
	_, err := ReadImage(bytes.NewReader(pngBytes), 8)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestLocalSaveAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "images")
	s, err := NewLocal(dir, "uploads/images")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ref, err := SaveImage(context.Background(), s, bytes.NewReader(pngBytes), 0)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if !strings.HasPrefix(ref, "uploads/images/") {
		t.Fatalf("ref = %q", ref)
	}
	onDisk := filepath.Join(dir, filepath.Base(ref))
	got, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(got, pngBytes) {
		t.Fatal("saved content differs")
	}

	if err := s.Delete(context.Background(), ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	// 重复删除不报错
	if err := s.Delete(context.Background(), ref); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestLocalDeleteStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewLocal(filepath.Join(root, "images"), "")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	_ = s.Delete(context.Background(), "../keep.txt")
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("file outside upload dir was touched: %v", err)
	}
}

func TestObjectPathRoundTrip(t *testing.T) {
	url := PublicURL("bucket-a", "images/x.png")
	obj, ok := ObjectPath("bucket-a", url)
	if !ok || obj != "images/x.png" {
		t.Fatalf("ObjectPath = %q, %v", obj, ok)
	}
	if _, ok := ObjectPath("bucket-b", url); ok {
		t.Fatal("expected mismatch for other bucket")
	}
}
