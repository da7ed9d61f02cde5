// Package formats provides the binary scene file format.
//
// Layout (little-endian):
//
//	magic    [4]byte "SCNE"
//	version  uint16
//	manifest resource paths, material paths (v1 adds a third, unused list)
//	entities uint32 byte length, entity region, uint64 xxhash of the region
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Scene format errors.
var (
	ErrInvalidSceneMagic       = errors.New("invalid scene magic: expected 'SCNE'")
	ErrUnsupportedSceneVersion = errors.New("unsupported scene version")
	ErrTruncatedSceneData      = errors.New("truncated scene data")
	ErrChecksumMismatch        = errors.New("scene entity region checksum mismatch")
)

const (
	// SceneMagic identifies scene files.
	SceneMagic = "SCNE"

	// SceneVersion is the version written by WriteScene.
	SceneVersion uint16 = 2

	// SceneVersionLegacy carries a third manifest list that is read and discarded.
	SceneVersionLegacy uint16 = 1

	// maxEntityRegion caps the entity region size accepted on read.
	maxEntityRegion = 1 << 30
)

// SceneManifest lists files a scene depends on, in save order.
type SceneManifest struct {
	ResourcePaths []string
	MaterialPaths []string
}

// WriteScene writes a complete scene file: header, manifest, then the entity
// region produced by writeEntities, followed by its checksum.
func WriteScene(w io.Writer, manifest SceneManifest, writeEntities func(*Encoder) error) error {
	var region bytes.Buffer
	if err := writeEntities(NewEncoder(&region)); err != nil {
		return fmt.Errorf("encoding entities: %w", err)
	}

	enc := NewEncoder(w)
	enc.WriteBytes([]byte(SceneMagic))
	enc.WriteUint16(SceneVersion)
	enc.WriteStrings(manifest.ResourcePaths)
	enc.WriteStrings(manifest.MaterialPaths)

	enc.WriteUint32(uint32(region.Len()))
	enc.WriteBytes(region.Bytes())
	enc.WriteUint64(xxhash.Sum64(region.Bytes()))

	return enc.Err()
}

// SceneReader reads a scene file in a single forward pass.
type SceneReader struct {
	dec     *Decoder
	Version uint16
}

// NewSceneReader validates the header.
func NewSceneReader(r io.Reader) (*SceneReader, error) {
	dec := NewDecoder(r)

	magic := make([]byte, len(SceneMagic))
	dec.ReadBytes(magic)
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if string(magic) != SceneMagic {
		return nil, ErrInvalidSceneMagic
	}

	version := dec.ReadUint16()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if version != SceneVersion && version != SceneVersionLegacy {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSceneVersion, version)
	}

	return &SceneReader{dec: dec, Version: version}, nil
}

// ReadManifest reads the path lists. Must be called before ReadEntities.
func (sr *SceneReader) ReadManifest() (SceneManifest, error) {
	var m SceneManifest
	m.ResourcePaths = sr.dec.ReadStrings()
	m.MaterialPaths = sr.dec.ReadStrings()
	if sr.Version == SceneVersionLegacy {
		_ = sr.dec.ReadStrings() // mesh paths, no longer used
	}
	if err := sr.dec.Err(); err != nil {
		return SceneManifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	return m, nil
}

// ReadEntities reads and verifies the entity region, returning a decoder over it.
func (sr *SceneReader) ReadEntities() (*Decoder, error) {
	n := sr.dec.ReadUint32()
	if err := sr.dec.Err(); err != nil {
		return nil, fmt.Errorf("reading entity region: %w", err)
	}
	if n > maxEntityRegion {
		return nil, fmt.Errorf("%w: entity region of %d bytes", ErrTruncatedSceneData, n)
	}

	region := make([]byte, n)
	sr.dec.ReadBytes(region)
	sum := sr.dec.ReadUint64()
	if err := sr.dec.Err(); err != nil {
		return nil, fmt.Errorf("reading entity region: %w", err)
	}
	if xxhash.Sum64(region) != sum {
		return nil, ErrChecksumMismatch
	}

	return NewDecoder(bytes.NewReader(region)), nil
}
