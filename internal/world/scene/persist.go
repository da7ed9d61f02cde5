package scene

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-scene/internal/world/entity"
	"github.com/Faultbox/midgard-scene/internal/world/resource"
	"github.com/Faultbox/midgard-scene/pkg/formats"
)

// ErrNotFound is returned by Load when the scene file does not exist.
// It is always joined with fs.ErrNotExist.
var ErrNotFound = errors.New("scene not found")

// NormalizePath appends the scene extension if path lacks it.
func (s *Scene) NormalizePath(path string) string {
	if s.HasExtension(path) {
		return path
	}
	return path + s.opts.Extension
}

// Save flushes modified resource and material metadata, then writes the manifest
// and every entity to path. The file is replaced atomically.
func (s *Scene) Save(path string) error {
	start := time.Now()
	path = s.NormalizePath(path)

	if err := s.resources.SaveMetadata(); err != nil {
		return fmt.Errorf("saving resource metadata: %w", err)
	}
	if err := s.materials.SaveMetadata(); err != nil {
		return fmt.Errorf("saving material metadata: %w", err)
	}

	manifest := formats.SceneManifest{
		ResourcePaths: s.resources.FilePaths(),
		MaterialPaths: s.materials.FilePaths(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	err = formats.WriteScene(w, manifest, s.pool.Serialize)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing scene %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	s.log.Info("scene saved",
		zap.String("path", path),
		zap.Int("entities", s.pool.Count()),
		zap.Int("resources", len(manifest.ResourcePaths)),
		zap.Int("materials", len(manifest.MaterialPaths)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Load replaces the scene with the contents of path and resolves it.
//
// A missing file returns ErrNotFound and leaves the scene untouched, as does a file
// whose header, manifest or entity checksum is invalid, whose referenced resources
// or materials cannot be read, or whose entities fail to decode. Assets are read in
// parallel and entities decoded into a scratch pool; only then is the scene cleared
// and the results committed.
func (s *Scene) Load(ctx context.Context, path string) error {
	start := time.Now()
	path = s.NormalizePath(path)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sr, err := formats.NewSceneReader(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	manifest, err := sr.ReadManifest()
	if err != nil {
		return fmt.Errorf("reading %s manifest: %w", path, err)
	}
	dec, err := sr.ReadEntities()
	if err != nil {
		return fmt.Errorf("reading %s entities: %w", path, err)
	}

	var (
		resources *resource.Batch[resource.Metadata]
		materials *resource.Batch[resource.Material]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resources, err = s.resources.Read(gctx, manifest.ResourcePaths)
		return err
	})
	g.Go(func() (err error) {
		materials, err = s.materials.Read(gctx, manifest.MaterialPaths)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading %s assets: %w", path, err)
	}

	decoded := entity.NewPool()
	if err := decoded.Deserialize(dec, s.registry); err != nil {
		return fmt.Errorf("decoding %s entities: %w", path, err)
	}

	s.Clear()
	s.resources.Commit(resources)
	s.materials.Commit(materials)
	for _, e := range decoded.All() {
		s.pool.Add(e)
	}

	s.Resolve()

	s.log.Info("scene loaded",
		zap.String("path", path),
		zap.Uint16("version", sr.Version),
		zap.Int("entities", s.pool.Count()),
		zap.Int("resources", len(manifest.ResourcePaths)),
		zap.Int("materials", len(manifest.MaterialPaths)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// SaveAsync runs Save on a new goroutine. The channel receives the result and is
// closed. The pool must not be mutated until it does.
func (s *Scene) SaveAsync(path string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.Save(path)
	}()
	return done
}

// LoadAsync runs Load on a new goroutine. The channel receives the result and is
// closed. The scene must not be resolved or mutated until it does.
func (s *Scene) LoadAsync(ctx context.Context, path string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.Load(ctx, path)
	}()
	return done
}

// HasExtension reports whether path already ends with the scene extension.
func (s *Scene) HasExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), s.opts.Extension)
}
