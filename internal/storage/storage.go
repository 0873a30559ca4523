package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

type PutOptions struct {
	ContentType string
}

// ObjectStore distributes similarity-index snapshots between the offline
// indexer and the API service.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
}

var keyComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildIndexSnapshotKey names a versioned index upload. The indexer also
// copies the same bytes to the stable "latest" key the API reads at startup.
func BuildIndexSnapshotKey(builtAt time.Time, exampleCount int) (string, error) {
	if exampleCount < 0 {
		return "", fmt.Errorf("example count must be >= 0")
	}
	ts := builtAt.UTC()
	name := fmt.Sprintf("index-%d-%d.db", ts.Unix(), exampleCount)
	if !keyComponentPattern.MatchString(name) {
		return "", fmt.Errorf("invalid index snapshot name: %q", name)
	}
	return path.Join(
		"index",
		fmt.Sprintf("date=%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		name,
	), nil
}
