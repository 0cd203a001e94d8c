package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	key := JoinKey("documents", "/12/", "approval_3.txt")
	if key != "documents/12/approval_3.txt" {
		t.Fatalf("JoinKey = %q", key)
	}
	if err := s.Put(ctx, key, strings.NewReader("signed"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "signed" {
		t.Fatalf("Get = %q", got)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrObjectNotFound", err)
	}
	// deleting twice is not an error
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestLocalStoreKeyCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)
	p, err := s.resolve("../../etc/passwd")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(p, root) {
		t.Fatalf("resolved path %q escapes %q", p, root)
	}
	if _, err := s.resolve("/"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSniffImage(t *testing.T) {
	if ct, err := SniffImage(pngBytes(t, 4, 4)); err != nil || ct != "image/png" {
		t.Fatalf("SniffImage(png) = %q, %v", ct, err)
	}
	if _, err := SniffImage([]byte("%PDF-1.4 not an image")); err == nil {
		t.Fatal("expected unsupported type error")
	}
	if _, err := SniffImage(nil); err == nil {
		t.Fatal("expected empty file error")
	}
	big := make([]byte, MaxImageBytes+1)
	if _, err := SniffImage(big); err == nil {
		t.Fatal("expected size error")
	}
}

func TestToWebPProducesWebP(t *testing.T) {
	out, err := ToWebP(pngBytes(t, 1200, 300), DefaultSignatureWebP)
	if err != nil {
		t.Fatalf("ToWebP: %v", err)
	}
	if len(out) < 12 || string(out[0:4]) != "RIFF" || string(out[8:12]) != "WEBP" {
		t.Fatalf("output is not a WebP container")
	}
}
