package cache

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "png", []byte("\x89PNG"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "png")
	if err != nil || !hit || string(data) != "\x89PNG" {
		t.Fatalf("Get(png) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "png"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "png"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "png"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, hit, err := c.Get(ctx, "short"); err != nil || hit {
		t.Errorf("expired entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheStoresRawBytes(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)

	png := []byte("\x89PNG\r\n\x1a\n\x00\xff binary")
	if err := c.Set(ctx, "png", png, time.Hour); err != nil {
		t.Fatal(err)
	}

	onDisk, err := os.ReadFile(fc.path("png") + ArtifactExt)
	if err != nil {
		t.Fatalf("read artifact file: %v", err)
	}
	if diff := cmp.Diff(png, onDisk); diff != "" {
		t.Errorf("artifact file is not the raw bytes (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(fc.path("png") + MetaExt)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var meta artifactMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if meta.Size != len(png) || meta.SHA256 != Hash(png) {
		t.Errorf("record = %+v, want size %d and checksum of the artifact", meta, len(png))
	}
	if meta.ExpiresAt.IsZero() {
		t.Error("record should carry the expiry")
	}

	if err := c.Set(ctx, "forever", png, 0); err != nil {
		t.Fatal(err)
	}
	raw, err = os.ReadFile(fc.path("forever") + MetaExt)
	if err != nil {
		t.Fatal(err)
	}
	meta = artifactMeta{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatal(err)
	}
	if !meta.ExpiresAt.IsZero() {
		t.Errorf("zero ttl stored expiry %v", meta.ExpiresAt)
	}
}

func TestFileCacheInconsistentEntryIsMiss(t *testing.T) {
	tests := []struct {
		name  string
		spoil func(t *testing.T, base string)
	}{
		{"corrupt record", func(t *testing.T, base string) {
			writeFile(t, base+MetaExt, "{not json")
		}},
		{"truncated artifact", func(t *testing.T, base string) {
			writeFile(t, base+ArtifactExt, "\x89PN")
		}},
		{"altered artifact", func(t *testing.T, base string) {
			writeFile(t, base+ArtifactExt, "\x89PNG\r\n\x1a\nXX")
		}},
		{"missing artifact", func(t *testing.T, base string) {
			if err := os.Remove(base + ArtifactExt); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, err := NewFileCache(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			base := c.(*FileCache).path("entry")
			if err := c.Set(ctx, "entry", []byte("\x89PNG\r\n\x1a\n"), 0); err != nil {
				t.Fatal(err)
			}
			tt.spoil(t, base)

			if _, hit, err := c.Get(ctx, "entry"); err != nil || hit {
				t.Errorf("Get() = hit %v, err %v; want miss", hit, err)
			}
			for _, p := range []string{base + MetaExt, base + ArtifactExt} {
				if _, err := os.Stat(p); !os.IsNotExist(err) {
					t.Errorf("%s should be removed", filepath.Base(p))
				}
			}
		})
	}
}

func TestFileCacheDeleteRemovesBothFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("svg"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}

	var left []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			left = append(left, path)
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("files left after Delete: %v", left)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	h4, err := HashReader(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("HashReader error: %v", err)
	}
	if h4 != h1 {
		t.Error("HashReader should match Hash for the same bytes")
	}
}

func TestArtifactKey(t *testing.T) {
	h := Hash([]byte("digraph { a -> b }"))

	k1 := ArtifactKey(h, "png", "dot")
	k2 := ArtifactKey(h, "svg", "dot")
	k3 := ArtifactKey(h, "png", "dot", "-Kneato")

	if k1 == k2 {
		t.Error("Different formats should produce different keys")
	}
	if k1 == k3 {
		t.Error("Different renderer args should produce different keys")
	}
	if k1 != ArtifactKey(h, "png", "dot") {
		t.Error("ArtifactKey should be deterministic")
	}
	if !strings.HasPrefix(k1, "artifact:") {
		t.Errorf("ArtifactKey should be prefixed: %s", k1)
	}
}

func TestFileCacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.(*FileCache).Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("NewFileCache should create %s", dir)
	}
}
