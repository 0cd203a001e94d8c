// file: internals/helpers/storage/blob.go
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sudoneoox/Picton/internals/configs"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore holds rendered documents and signature images.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// New picks the implementation from STORAGE_DRIVER ("local" or "oss").
func New(cfg configs.Config) (BlobStore, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "", "local":
		return NewLocalStore(cfg.StorageDir), nil
	case "oss":
		return NewOSSStoreFromEnv(cfg.StoragePrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// JoinKey builds a slash separated object key, dropping empty parts.
func JoinKey(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			clean = append(clean, p)
		}
	}
	return path.Join(clean...)
}

/* =======================================================================
   Local filesystem
======================================================================= */

type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) resolve(key string) (string, error) {
	key = path.Clean("/" + key)
	if key == "/" {
		return "", fmt.Errorf("empty key")
	}
	return filepath.Join(s.Root, filepath.FromSlash(key)), nil
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return b, err
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + strings.TrimLeft(key, "/")
}

// PutBytes is a convenience over Put.
func PutBytes(ctx context.Context, s BlobStore, key string, b []byte, contentType string) error {
	return s.Put(ctx, key, bytes.NewReader(b), contentType)
}
