package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// File extensions of the two files making up one entry.
const (
	ArtifactExt = ".bin"
	MetaExt     = ".meta"
)

// FileCache keeps each artifact as a raw file under dir, exactly the bytes the
// renderer produced. A small JSON record beside it holds the expiry and a
// checksum; an artifact without a matching record is never served.
type FileCache struct {
	dir string
}

// NewFileCache opens a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// artifactMeta describes the artifact file it sits next to.
type artifactMeta struct {
	Size      int       `json:"size"`
	SHA256    string    `json:"sha256"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (m artifactMeta) expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}

// Get returns the artifact stored under key. Expired, truncated or otherwise
// inconsistent entries are removed and reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	base := c.path(key)

	raw, err := os.ReadFile(base + MetaExt)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var meta artifactMeta
	if err := json.Unmarshal(raw, &meta); err != nil || meta.expired(time.Now()) {
		c.remove(base)
		return nil, false, nil
	}

	data, err := os.ReadFile(base + ArtifactExt)
	if errors.Is(err, fs.ErrNotExist) {
		c.remove(base)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(data) != meta.Size || Hash(data) != meta.SHA256 {
		c.remove(base)
		return nil, false, nil
	}
	return data, true, nil
}

// Set writes the artifact first and its record second, each through a rename,
// so a reader never sees a record for a partly written artifact.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	meta := artifactMeta{Size: len(data), SHA256: Hash(data)}
	if ttl > 0 {
		meta.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	base := c.path(key)
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return err
	}
	if err := writeAtomic(base+ArtifactExt, data); err != nil {
		return err
	}
	return writeAtomic(base+MetaExt, raw)
}

// Delete removes both files of the entry.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	base := c.path(key)
	// Record first: an orphaned artifact is harmless, an orphaned record is a miss anyway
	for _, p := range []string{base + MetaExt, base + ArtifactExt} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// Dir returns the directory holding the cache entries.
func (c *FileCache) Dir() string {
	return c.dir
}

// path returns the entry path without extension, fanned out by the first two
// hex digits of the key hash.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:])
}

func (c *FileCache) remove(base string) {
	_ = os.Remove(base + MetaExt)
	_ = os.Remove(base + ArtifactExt)
}

func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ Cache = (*FileCache)(nil)
