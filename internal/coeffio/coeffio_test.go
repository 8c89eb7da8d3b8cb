package coeffio

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wavelet "github.com/tphakala/go-wavelet"
	"github.com/tphakala/go-wavelet/internal/testutil"
)

func decomposed(t *testing.T) map[string]*wavelet.Pyramid {
	t.Helper()

	x := testutil.RandomSignal(1, 256)
	dwt, err := wavelet.Wavedec(x, "db4", 4, wavelet.ModeSymmetric)
	require.NoError(t, err)
	swt, err := wavelet.SWT(x, "sym3", 3)
	require.NoError(t, err)

	img, err := wavelet.NewSignal2D(32, 48, testutil.RandomSignal(2, 32*48))
	require.NoError(t, err)
	dwt2, err := wavelet.Wavedec2(img, "bior2.2", 2, wavelet.ModePeriodization)
	require.NoError(t, err)

	batch, err := wavelet.NewBatch([][]float64{x[:128], x[128:]})
	require.NoError(t, err)
	tr, err := wavelet.New(batch, &wavelet.Config{Wavelet: "haar", Levels: 3, Batched: true})
	require.NoError(t, err)
	require.NoError(t, tr.Forward())

	return map[string]*wavelet.Pyramid{
		"dwt":     dwt,
		"swt":     swt,
		"dwt2":    dwt2,
		"batched": tr.Coefficients(),
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for name, p := range decomposed(t) {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(p, Options{})
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, p, got)

			_, err = wavelet.Reconstruct(got)
			require.NoError(t, err)
		})
	}
}

func TestEncodeDecode_Float32(t *testing.T) {
	p := decomposed(t)["dwt2"]

	full, err := Encode(p, Options{})
	require.NoError(t, err)
	half, err := Encode(p, Options{Float32: true, Level: zstd.SpeedBestCompression})
	require.NoError(t, err)
	assert.Less(t, len(half), len(full))

	got, err := Decode(half)
	require.NoError(t, err)
	require.Len(t, got.Coeffs, len(p.Coeffs))
	for k := range p.Coeffs {
		for b := range p.Coeffs[k] {
			testutil.AssertAllClose(t, p.Coeffs[k][b].Data, got.Coeffs[k][b].Data, 1e-6, "entry %d band %d", k, b)
		}
	}
}

func TestSaveLoadFile(t *testing.T) {
	p := decomposed(t)["swt"]
	path := filepath.Join(t.TempDir(), "coeffs.gwv")

	require.NoError(t, SaveFile(path, p, Options{}))
	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.gwv"))
	require.Error(t, err)
}

func TestReadWrite(t *testing.T) {
	p := decomposed(t)["dwt"]
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, Options{}))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecode_Corrupt(t *testing.T) {
	p := decomposed(t)["dwt"]
	payload, err := marshal(p, false)
	require.NoError(t, err)

	compress := func(b []byte) []byte {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		defer enc.Close()
		return enc.EncodeAll(b, nil)
	}

	t.Run("truncated", func(t *testing.T) {
		_, err := Decode(compress(payload[:len(payload)-5]))
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := Decode(compress(append(payload, 0, 0)))
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte("XXXX"), payload[4:]...)
		_, err := Decode(compress(bad))
		require.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("future version", func(t *testing.T) {
		bad := append([]byte(nil), payload...)
		binary.LittleEndian.PutUint16(bad[4:], formatVersion+1)
		_, err := Decode(compress(bad))
		require.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("not zstd", func(t *testing.T) {
		_, err := Decode([]byte("definitely not a zstd frame"))
		require.Error(t, err)
	})
}

func TestDecode_LimitsDecompressedSize(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	bomb := enc.EncodeAll(make([]byte, 1<<20), nil)
	require.Less(t, len(bomb), 1<<12)

	dec := newDecoder(1 << 16)
	defer dec.Close()
	_, err = decompress(dec, bomb)
	require.ErrorIs(t, err, zstd.ErrDecoderSizeExceeded)

	got, err := decompress(newDecoder(1<<21), bomb)
	require.NoError(t, err)
	assert.Len(t, got, 1<<20)
}

func TestEncode_RejectsInconsistentBand(t *testing.T) {
	p := decomposed(t)["dwt"].Clone()
	p.Coeffs[1][0].Data = p.Coeffs[1][0].Data[:1]
	_, err := Encode(p, Options{})
	require.ErrorIs(t, err, wavelet.ErrInconsistentPyramid)

	_, err = Encode(nil, Options{})
	require.ErrorIs(t, err, wavelet.ErrInconsistentPyramid)
}
