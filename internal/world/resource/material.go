package resource

import (
	"context"

	"go.uber.org/zap"
)

// Material is a render material stored as a yaml file.
type Material struct {
	Name     string             `yaml:"name"`
	Shader   string             `yaml:"shader"`
	Color    [4]float32         `yaml:"color"`
	Textures map[string]string  `yaml:"textures,omitempty"`
	Params   map[string]float32 `yaml:"params,omitempty"`
}

// MaterialPool holds the materials a scene references.
type MaterialPool struct {
	s *store[Material]
}

// NewMaterialPool creates a pool rooted at dir.
func NewMaterialPool(dir string, log *zap.Logger) *MaterialPool {
	return &MaterialPool{s: newStore[Material](dir, func(p string) string { return p }, log)}
}

// Set adds or replaces a material and marks it for saving.
func (p *MaterialPool) Set(path string, m *Material) {
	p.s.set(path, m)
}

// Get returns the material at path.
func (p *MaterialPool) Get(path string) (*Material, bool) {
	return p.s.get(path)
}

// MarkDirty flags path for the next SaveMetadata.
func (p *MaterialPool) MarkDirty(path string) bool {
	return p.s.markDirty(path)
}

// FilePaths returns material paths in registration order.
func (p *MaterialPool) FilePaths() []string {
	return p.s.paths()
}

// Dirty returns the number of materials with unsaved changes.
func (p *MaterialPool) Dirty() int {
	return p.s.dirtyCount()
}

// SaveMetadata writes modified material files.
func (p *MaterialPool) SaveMetadata() error {
	return p.s.save()
}

// Load reads material files. A missing file is an error.
func (p *MaterialPool) Load(ctx context.Context, paths []string) error {
	return p.s.load(ctx, paths, nil)
}

// Read reads material files without adding them. A missing file is an error.
func (p *MaterialPool) Read(ctx context.Context, paths []string) (*Batch[Material], error) {
	return p.s.read(ctx, paths, nil)
}

// Commit adds a batch returned by Read.
func (p *MaterialPool) Commit(b *Batch[Material]) {
	p.s.commit(b)
}

// Clear forgets every material.
func (p *MaterialPool) Clear() {
	p.s.clear()
}
