// Package artifact keeps copies of generated workbooks and archives on the
// local filesystem or in an S3-compatible bucket.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/scidesk/internal/config"
	"github.com/JonMunkholm/scidesk/internal/core"
)

// Open returns the store selected by cfg.Driver. The "none" driver returns
// a nil store, which disables archiving.
func Open(ctx context.Context, cfg config.ArtifactConfig) (core.ArtifactStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "none":
		return nil, nil
	case "fs":
		return NewFS(cfg.Dir)
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("artifact: unknown driver %q", cfg.Driver)
	}
}

// FS stores artifacts below a root directory.
type FS struct {
	root string
}

// NewFS creates the root directory if needed.
func NewFS(root string) (*FS, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact: directory required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("artifact: create root: %w", err)
	}
	return &FS{root: root}, nil
}

// Put writes data to root/key. Keys may not escape the root.
func (f *FS) Put(ctx context.Context, key string, data []byte, contentType string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("artifact: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("artifact: write %s: %w", key, err)
	}
	return nil
}

func (f *FS) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact: invalid key %q", key)
	}
	return filepath.Join(f.root, clean), nil
}
