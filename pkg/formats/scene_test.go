package formats

import (
	"bytes"
	"errors"
	"testing"

	gmath "github.com/Faultbox/midgard-scene/pkg/math"
)

func writeTestScene(t *testing.T, manifest SceneManifest) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := WriteScene(&buf, manifest, func(enc *Encoder) error {
		enc.WriteString("entity")
		enc.WriteVec3(gmath.Vec3{X: 1, Y: 2, Z: 3})
		enc.WriteQuat(gmath.QuatIdentity())
		enc.WriteBool(true)
		return enc.Err()
	})
	if err != nil {
		t.Fatalf("WriteScene: %v", err)
	}
	return buf.Bytes()
}

func TestSceneRoundTrip(t *testing.T) {
	manifest := SceneManifest{
		ResourcePaths: []string{"assets/models/crate.model", "assets/textures/crate.png"},
		MaterialPaths: []string{"assets/materials/wood.material"},
	}
	data := writeTestScene(t, manifest)

	sr, err := NewSceneReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewSceneReader: %v", err)
	}
	if sr.Version != SceneVersion {
		t.Errorf("version = %d, want %d", sr.Version, SceneVersion)
	}

	got, err := sr.ReadManifest()
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(got.ResourcePaths) != 2 || got.ResourcePaths[0] != manifest.ResourcePaths[0] || got.ResourcePaths[1] != manifest.ResourcePaths[1] {
		t.Errorf("resource paths = %v, want %v", got.ResourcePaths, manifest.ResourcePaths)
	}
	if len(got.MaterialPaths) != 1 || got.MaterialPaths[0] != manifest.MaterialPaths[0] {
		t.Errorf("material paths = %v, want %v", got.MaterialPaths, manifest.MaterialPaths)
	}

	dec, err := sr.ReadEntities()
	if err != nil {
		t.Fatalf("ReadEntities: %v", err)
	}
	if name := dec.ReadString(); name != "entity" {
		t.Errorf("name = %q", name)
	}
	if v := dec.ReadVec3(); v != (gmath.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("vec = %v", v)
	}
	if q := dec.ReadQuat(); q != gmath.QuatIdentity() {
		t.Errorf("quat = %v", q)
	}
	if !dec.ReadBool() {
		t.Error("bool = false")
	}
	if err := dec.Err(); err != nil {
		t.Errorf("decode error: %v", err)
	}
}

func TestSceneLegacyManifest(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteBytes([]byte(SceneMagic))
	enc.WriteUint16(SceneVersionLegacy)
	enc.WriteStrings([]string{"a.model"})
	enc.WriteStrings([]string{"b.material"})
	enc.WriteStrings([]string{"c.mesh"})
	enc.WriteUint32(0)
	enc.WriteUint64(0xef46db3751d8e999) // xxhash of empty input

	sr, err := NewSceneReader(&buf)
	if err != nil {
		t.Fatalf("NewSceneReader: %v", err)
	}
	m, err := sr.ReadManifest()
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(m.ResourcePaths) != 1 || m.ResourcePaths[0] != "a.model" {
		t.Errorf("resource paths = %v", m.ResourcePaths)
	}
	if len(m.MaterialPaths) != 1 || m.MaterialPaths[0] != "b.material" {
		t.Errorf("material paths = %v", m.MaterialPaths)
	}
	if _, err := sr.ReadEntities(); err != nil {
		t.Errorf("ReadEntities after legacy manifest: %v", err)
	}
}

func TestSceneHeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty data", []byte{}, ErrTruncatedSceneData},
		{"truncated magic", []byte("SC"), ErrTruncatedSceneData},
		{"invalid magic", []byte("XXXX\x02\x00"), ErrInvalidSceneMagic},
		{"missing version", []byte("SCNE"), ErrTruncatedSceneData},
		{"future version", []byte("SCNE\x09\x00"), ErrUnsupportedSceneVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSceneReader(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSceneChecksumMismatch(t *testing.T) {
	data := writeTestScene(t, SceneManifest{})

	// Flip a byte inside the entity region: header(6) + two empty lists(8) + length(4)
	data[6+8+4] ^= 0xff

	sr, err := NewSceneReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewSceneReader: %v", err)
	}
	if _, err := sr.ReadManifest(); err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if _, err := sr.ReadEntities(); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("got %v, want ErrChecksumMismatch", err)
	}
}

func TestSceneTruncatedEntities(t *testing.T) {
	data := writeTestScene(t, SceneManifest{ResourcePaths: []string{"x"}})

	sr, err := NewSceneReader(bytes.NewReader(data[:len(data)-4]))
	if err != nil {
		t.Fatalf("NewSceneReader: %v", err)
	}
	if _, err := sr.ReadManifest(); err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if _, err := sr.ReadEntities(); !errors.Is(err, ErrTruncatedSceneData) {
		t.Errorf("got %v, want ErrTruncatedSceneData", err)
	}
}
