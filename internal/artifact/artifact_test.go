package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/scidesk/internal/config"
)

func TestFS_Put(t *testing.T) {
	root := t.TempDir()
	store, err := NewFS(root)
	if err != nil {
		t.Fatalf("NewFS() error = %v", err)
	}

	if err := store.Put(context.Background(), "exports/2026-10-16/data.xlsx", []byte("xlsx"), ""); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "exports", "2026-10-16", "data.xlsx"))
	if err != nil || string(got) != "xlsx" {
		t.Errorf("stored file = %q, %v", got, err)
	}
}

func TestFS_RejectsEscapingKeys(t *testing.T) {
	store, _ := NewFS(t.TempDir())
	for _, key := range []string{"", "../x", "/etc/passwd", "a/../../x"} {
		if err := store.Put(context.Background(), key, nil, ""); err == nil {
			t.Errorf("Put(%q) error = nil, want error", key)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.ArtifactConfig{Driver: "none"})
	if err != nil || s != nil {
		t.Errorf("Open(none) = %v, %v; want nil, nil", s, err)
	}

	s, err = Open(ctx, config.ArtifactConfig{Driver: "fs", Dir: t.TempDir()})
	if _, ok := s.(*FS); err != nil || !ok {
		t.Errorf("Open(fs) = %T, %v", s, err)
	}

	if _, err := Open(ctx, config.ArtifactConfig{Driver: "s3"}); err == nil {
		t.Error("Open(s3 without bucket) error = nil, want error")
	}
	if _, err := Open(ctx, config.ArtifactConfig{Driver: "ftp"}); err == nil {
		t.Error("Open(ftp) error = nil, want error")
	}
}
