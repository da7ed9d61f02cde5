package resource

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MetadataExt is appended to an asset path to name its metadata file.
const MetadataExt = ".meta"

// Metadata describes one imported asset.
type Metadata struct {
	GUID   string            `yaml:"guid"`
	Kind   string            `yaml:"kind"`
	Import map[string]string `yaml:"import,omitempty"`
}

// Cache tracks the assets a scene references and their metadata files.
type Cache struct {
	s *store[Metadata]
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string, log *zap.Logger) *Cache {
	return &Cache{s: newStore[Metadata](dir, func(p string) string { return p + MetadataExt }, log)}
}

// Add registers an asset with fresh metadata, or returns the existing metadata.
func (c *Cache) Add(path string) *Metadata {
	if m, ok := c.s.get(path); ok {
		return m
	}
	m := defaultMetadata(path)
	c.s.set(path, m)
	return m
}

// Get returns the metadata for path.
func (c *Cache) Get(path string) (*Metadata, bool) {
	return c.s.get(path)
}

// MarkDirty flags path for the next SaveMetadata.
func (c *Cache) MarkDirty(path string) bool {
	return c.s.markDirty(path)
}

// FilePaths returns the registered asset paths in registration order.
func (c *Cache) FilePaths() []string {
	return c.s.paths()
}

// Dirty returns the number of entries with unsaved metadata.
func (c *Cache) Dirty() int {
	return c.s.dirtyCount()
}

// SaveMetadata writes modified metadata files.
func (c *Cache) SaveMetadata() error {
	return c.s.save()
}

// Load registers paths, reading their metadata files. Assets without a metadata
// file get defaults and are marked dirty.
func (c *Cache) Load(ctx context.Context, paths []string) error {
	return c.s.load(ctx, paths, defaultMetadata)
}

// Read reads the metadata of paths without registering them. Pass the batch to
// Commit to register it.
func (c *Cache) Read(ctx context.Context, paths []string) (*Batch[Metadata], error) {
	return c.s.read(ctx, paths, defaultMetadata)
}

// Commit registers a batch returned by Read.
func (c *Cache) Commit(b *Batch[Metadata]) {
	c.s.commit(b)
}

// Clear forgets every asset.
func (c *Cache) Clear() {
	c.s.clear()
}

func defaultMetadata(path string) *Metadata {
	kind := strings.TrimPrefix(filepath.Ext(path), ".")
	if kind == "" {
		kind = "asset"
	}
	return &Metadata{GUID: uuid.NewString(), Kind: kind}
}
