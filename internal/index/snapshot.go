package index

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rampgpt/rampgpt/internal/storage"
)

// DownloadSnapshot copies the index object at key into path, replacing
// any existing file atomically.
func DownloadSnapshot(ctx context.Context, store storage.ObjectStore, key, path string) error {
	body, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch index snapshot %q: %w", key, err)
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.db")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write index snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

// UploadSnapshot stores the built index file under key.
func UploadSnapshot(ctx context.Context, store storage.ObjectStore, key, path string) (storage.ObjectInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("open index file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("stat index file: %w", err)
	}

	info, err := store.Put(ctx, key, file, stat.Size(), storage.PutOptions{ContentType: "application/vnd.sqlite3"})
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("upload index snapshot %q: %w", key, err)
	}
	return info, nil
}
