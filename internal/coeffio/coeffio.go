// Package coeffio stores coefficient pyramids as zstd-compressed binary
// files.
//
// Layout of the uncompressed payload (little endian):
//
//	magic "GWVP" | version u16 | flags u16 | mode u8 | dims u8
//	name len u16 | name | rows u32 | cols u32 | entries u16
//	per entry: bands u8, per band: rows u32 | cols u32 | samples
//	approximations u16 | bands as above
//
// Samples are float64, or float32 when the Float32 flag is set.
package coeffio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	wavelet "github.com/tphakala/go-wavelet"
)

// Errors returned by Decode.
var (
	ErrBadMagic           = errors.New("not a coefficient file")
	ErrUnsupportedVersion = errors.New("unsupported coefficient file version")
	ErrCorrupt            = errors.New("corrupt coefficient file")
)

const (
	magic         = "GWVP"
	formatVersion = 1

	flagStationary   = 1 << 0
	flagNonSeparable = 1 << 1
	flagBatched      = 1 << 2
	flagFloat32      = 1 << 3

	bytesFloat64 = 8
	bytesFloat32 = 4

	// maxDecodedBytes caps the decompressed payload: 128M float64 samples.
	maxDecodedBytes = 1 << 30
)

// Options controls encoding.
type Options struct {
	// Level is the zstd compression level. Zero selects zstd.SpeedDefault.
	Level zstd.EncoderLevel

	// Float32 stores samples in single precision, halving the payload at
	// the cost of ~1e-7 relative error.
	Float32 bool
}

var decPool = sync.Pool{
	New: func() any {
		return newDecoder(maxDecodedBytes)
	},
}

// Encode serializes and compresses p.
func Encode(p *wavelet.Pyramid, opts Options) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: pyramid is nil", wavelet.ErrInconsistentPyramid)
	}
	payload, err := marshal(p, opts.Float32)
	if err != nil {
		return nil, err
	}

	level := opts.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	if _, err := enc.Write(payload); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses and parses a pyramid written by Encode. The result
// is structurally sound but not checked against its wavelet; wavelet.Reconstruct
// performs that validation.
func Decode(data []byte) (*wavelet.Pyramid, error) {
	dec, ok := decPool.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		return nil, errors.New("zstd decoder unavailable")
	}
	defer decPool.Put(dec)

	payload, err := decompress(dec, data)
	if err != nil {
		return nil, err
	}
	return unmarshal(payload)
}

func newDecoder(limit uint64) *zstd.Decoder {
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(limit))
	return dec
}

func decompress(dec *zstd.Decoder, data []byte) ([]byte, error) {
	payload, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return payload, nil
}

// Write encodes p to w.
func Write(w io.Writer, p *wavelet.Pyramid, opts Options) error {
	data, err := Encode(p, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Read decodes a pyramid from r.
func Read(r io.Reader) (*wavelet.Pyramid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// SaveFile writes p to path.
func SaveFile(path string, p *wavelet.Pyramid, opts Options) error {
	data, err := Encode(p, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save coefficients: %w", err)
	}
	return nil
}

// LoadFile reads a pyramid from path.
func LoadFile(path string) (*wavelet.Pyramid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load coefficients: %w", err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

func marshal(p *wavelet.Pyramid, single bool) ([]byte, error) {
	if len(p.Wavelet) > math.MaxUint16 || len(p.Coeffs) > math.MaxUint16 || len(p.Approximations) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: pyramid too large to encode", wavelet.ErrInconsistentPyramid)
	}

	var flags uint16
	if p.Stationary {
		flags |= flagStationary
	}
	if p.NonSeparable {
		flags |= flagNonSeparable
	}
	if p.Batched {
		flags |= flagBatched
	}
	if single {
		flags |= flagFloat32
	}

	le := binary.LittleEndian
	buf := make([]byte, 0, 64+p.NumCoefficients()*bytesFloat64)
	buf = append(buf, magic...)
	buf = le.AppendUint16(buf, formatVersion)
	buf = le.AppendUint16(buf, flags)
	buf = append(buf, byte(p.Mode), byte(p.Dimensionality))
	buf = le.AppendUint16(buf, uint16(len(p.Wavelet)))
	buf = append(buf, p.Wavelet...)
	buf = le.AppendUint32(buf, uint32(p.Shape.Rows))
	buf = le.AppendUint32(buf, uint32(p.Shape.Cols))

	buf = le.AppendUint16(buf, uint16(len(p.Coeffs)))
	for k, bands := range p.Coeffs {
		if len(bands) > math.MaxUint8 {
			return nil, fmt.Errorf("%w: entry %d has %d bands", wavelet.ErrInconsistentPyramid, k, len(bands))
		}
		buf = append(buf, byte(len(bands)))
		for _, b := range bands {
			var err error
			if buf, err = appendBand(buf, b, single); err != nil {
				return nil, fmt.Errorf("entry %d: %w", k, err)
			}
		}
	}

	buf = le.AppendUint16(buf, uint16(len(p.Approximations)))
	for j, b := range p.Approximations {
		var err error
		if buf, err = appendBand(buf, b, single); err != nil {
			return nil, fmt.Errorf("approximation %d: %w", j+1, err)
		}
	}
	return buf, nil
}

func appendBand(buf []byte, b wavelet.Band, single bool) ([]byte, error) {
	if len(b.Data) != b.Rows*b.Cols {
		return nil, fmt.Errorf("%w: %d samples for %dx%d band", wavelet.ErrInconsistentPyramid, len(b.Data), b.Rows, b.Cols)
	}
	le := binary.LittleEndian
	buf = le.AppendUint32(buf, uint32(b.Rows))
	buf = le.AppendUint32(buf, uint32(b.Cols))
	for _, v := range b.Data {
		if single {
			buf = le.AppendUint32(buf, math.Float32bits(float32(v)))
		} else {
			buf = le.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return buf, nil
}

// reader walks the payload with bounds checks.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) take(n int, label string) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, fmt.Errorf("%w: truncated while reading %s", ErrCorrupt, label)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8(label string) (int, error) {
	b, err := r.take(1, label)
	if err != nil {
		return 0, err
	}
	return int(b[0]), nil
}

func (r *reader) u16(label string) (int, error) {
	b, err := r.take(2, label)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint16(b)), nil
}

func (r *reader) u32(label string) (int, error) {
	b, err := r.take(4, label)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) band(single bool) (wavelet.Band, error) {
	rows, err := r.u32("band rows")
	if err != nil {
		return wavelet.Band{}, err
	}
	cols, err := r.u32("band cols")
	if err != nil {
		return wavelet.Band{}, err
	}
	width := bytesFloat64
	if single {
		width = bytesFloat32
	}
	n := rows * cols
	if rows > 0 && n/rows != cols {
		return wavelet.Band{}, fmt.Errorf("%w: band %dx%d overflows", ErrCorrupt, rows, cols)
	}
	raw, err := r.take(n*width, "band samples")
	if err != nil {
		return wavelet.Band{}, err
	}

	b := wavelet.Band{Rows: rows, Cols: cols, Data: make([]float64, n)}
	le := binary.LittleEndian
	for i := range b.Data {
		if single {
			b.Data[i] = float64(math.Float32frombits(le.Uint32(raw[i*width:])))
		} else {
			b.Data[i] = math.Float64frombits(le.Uint64(raw[i*width:]))
		}
	}
	return b, nil
}

func unmarshal(data []byte) (*wavelet.Pyramid, error) {
	r := &reader{data: data}
	m, err := r.take(len(magic), "magic")
	if err != nil || string(m) != magic {
		return nil, ErrBadMagic
	}
	v, err := r.u16("version")
	if err != nil {
		return nil, err
	}
	if v != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	flags, err := r.u16("flags")
	if err != nil {
		return nil, err
	}
	mode, err := r.u8("mode")
	if err != nil {
		return nil, err
	}
	dims, err := r.u8("dimensionality")
	if err != nil {
		return nil, err
	}
	nameLen, err := r.u16("name length")
	if err != nil {
		return nil, err
	}
	name, err := r.take(nameLen, "name")
	if err != nil {
		return nil, err
	}
	rows, err := r.u32("rows")
	if err != nil {
		return nil, err
	}
	cols, err := r.u32("cols")
	if err != nil {
		return nil, err
	}

	single := flags&flagFloat32 != 0
	p := &wavelet.Pyramid{
		Wavelet:        string(name),
		Mode:           wavelet.Mode(mode),
		Stationary:     flags&flagStationary != 0,
		NonSeparable:   flags&flagNonSeparable != 0,
		Batched:        flags&flagBatched != 0,
		Dimensionality: dims,
		Shape:          wavelet.Shape{Rows: rows, Cols: cols},
	}

	entries, err := r.u16("entry count")
	if err != nil {
		return nil, err
	}
	p.Coeffs = make([][]wavelet.Band, entries)
	for k := range p.Coeffs {
		nb, err := r.u8("band count")
		if err != nil {
			return nil, err
		}
		p.Coeffs[k] = make([]wavelet.Band, nb)
		for b := range nb {
			if p.Coeffs[k][b], err = r.band(single); err != nil {
				return nil, fmt.Errorf("entry %d band %d: %w", k, b, err)
			}
		}
	}

	approxCount, err := r.u16("approximation count")
	if err != nil {
		return nil, err
	}
	if approxCount > 0 {
		p.Approximations = make([]wavelet.Band, approxCount)
		for j := range p.Approximations {
			if p.Approximations[j], err = r.band(single); err != nil {
				return nil, fmt.Errorf("approximation %d: %w", j+1, err)
			}
		}
	}

	if r.pos != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-r.pos)
	}
	return p, nil
}
