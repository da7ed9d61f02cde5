package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	gmath "github.com/Faultbox/midgard-scene/pkg/math"
)

// maxStringLen guards against corrupt length prefixes.
const maxStringLen = 1 << 20

// Encoder writes little-endian primitives. The first error is sticky:
// later writes become no-ops and Err reports it.
type Encoder struct {
	w   io.Writer
	err error
	buf [8]byte
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first write error.
func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

// WriteUint8 writes a single byte.
func (e *Encoder) WriteUint8(v uint8) {
	e.buf[0] = v
	e.write(e.buf[:1])
}

// WriteBool writes a bool as one byte.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.WriteUint8(1)
		return
	}
	e.WriteUint8(0)
}

// WriteUint16 writes a uint16.
func (e *Encoder) WriteUint16(v uint16) {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	e.write(e.buf[:2])
}

// WriteUint32 writes a uint32.
func (e *Encoder) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

// WriteInt32 writes an int32.
func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

// WriteUint64 writes a uint64.
func (e *Encoder) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.write(e.buf[:8])
}

// WriteFloat32 writes an IEEE-754 float32.
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}

// WriteBytes writes raw bytes without a length prefix.
func (e *Encoder) WriteBytes(p []byte) {
	e.write(p)
}

// WriteString writes a uint32 length followed by the bytes.
func (e *Encoder) WriteString(s string) {
	e.WriteUint32(uint32(len(s)))
	e.write([]byte(s))
}

// WriteStrings writes a uint32 count followed by each string.
func (e *Encoder) WriteStrings(list []string) {
	e.WriteUint32(uint32(len(list)))
	for _, s := range list {
		e.WriteString(s)
	}
}

// WriteVec3 writes X, Y, Z.
func (e *Encoder) WriteVec3(v gmath.Vec3) {
	e.WriteFloat32(v.X)
	e.WriteFloat32(v.Y)
	e.WriteFloat32(v.Z)
}

// WriteQuat writes X, Y, Z, W.
func (e *Encoder) WriteQuat(q gmath.Quat) {
	e.WriteFloat32(q.X)
	e.WriteFloat32(q.Y)
	e.WriteFloat32(q.Z)
	e.WriteFloat32(q.W)
}

// WriteColor writes an RGBA color.
func (e *Encoder) WriteColor(c [4]float32) {
	for _, v := range c {
		e.WriteFloat32(v)
	}
}

// Decoder reads little-endian primitives with a sticky error.
// Short reads surface as ErrTruncatedSceneData.
type Decoder struct {
	r   io.Reader
	err error
	buf [8]byte
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Err returns the first read error.
func (d *Decoder) Err() error {
	return d.err
}

// Fail records err unless an earlier error is already set.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) read(p []byte) bool {
	if d.err != nil {
		return false
	}
	if _, err := io.ReadFull(d.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			d.err = ErrTruncatedSceneData
		} else {
			d.err = err
		}
		return false
	}
	return true
}

// ReadUint8 reads a single byte.
func (d *Decoder) ReadUint8() uint8 {
	if !d.read(d.buf[:1]) {
		return 0
	}
	return d.buf[0]
}

// ReadBool reads a one-byte bool.
func (d *Decoder) ReadBool() bool {
	return d.ReadUint8() != 0
}

// ReadUint16 reads a uint16.
func (d *Decoder) ReadUint16() uint16 {
	if !d.read(d.buf[:2]) {
		return 0
	}
	return binary.LittleEndian.Uint16(d.buf[:2])
}

// ReadUint32 reads a uint32.
func (d *Decoder) ReadUint32() uint32 {
	if !d.read(d.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(d.buf[:4])
}

// ReadInt32 reads an int32.
func (d *Decoder) ReadInt32() int32 {
	return int32(d.ReadUint32())
}

// ReadUint64 reads a uint64.
func (d *Decoder) ReadUint64() uint64 {
	if !d.read(d.buf[:8]) {
		return 0
	}
	return binary.LittleEndian.Uint64(d.buf[:8])
}

// ReadFloat32 reads an IEEE-754 float32.
func (d *Decoder) ReadFloat32() float32 {
	return math.Float32frombits(d.ReadUint32())
}

// ReadBytes fills p with raw bytes.
func (d *Decoder) ReadBytes(p []byte) {
	d.read(p)
}

// ReadString reads a length-prefixed string.
func (d *Decoder) ReadString() string {
	n := d.ReadUint32()
	if d.err != nil {
		return ""
	}
	if n > maxStringLen {
		d.Fail(fmt.Errorf("%w: string length %d", ErrTruncatedSceneData, n))
		return ""
	}
	p := make([]byte, n)
	if !d.read(p) {
		return ""
	}
	return string(p)
}

// ReadStrings reads a counted list of strings.
func (d *Decoder) ReadStrings() []string {
	n := d.ReadUint32()
	if d.err != nil {
		return nil
	}
	if n > maxStringLen {
		d.Fail(fmt.Errorf("%w: list length %d", ErrTruncatedSceneData, n))
		return nil
	}
	list := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		s := d.ReadString()
		if d.err != nil {
			return nil
		}
		list = append(list, s)
	}
	return list
}

// ReadVec3 reads X, Y, Z.
func (d *Decoder) ReadVec3() gmath.Vec3 {
	return gmath.Vec3{X: d.ReadFloat32(), Y: d.ReadFloat32(), Z: d.ReadFloat32()}
}

// ReadQuat reads X, Y, Z, W.
func (d *Decoder) ReadQuat() gmath.Quat {
	return gmath.Quat{X: d.ReadFloat32(), Y: d.ReadFloat32(), Z: d.ReadFloat32(), W: d.ReadFloat32()}
}

// ReadColor reads an RGBA color.
func (d *Decoder) ReadColor() [4]float32 {
	return [4]float32{d.ReadFloat32(), d.ReadFloat32(), d.ReadFloat32(), d.ReadFloat32()}
}
