package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// fastWAVWriter writes 16, 24 or 32-bit PCM without per-sample allocations
// and patches the RIFF sizes on Close.
type fastWAVWriter struct {
	w          *bufio.Writer
	f          *os.File
	sampleRate int
	bitDepth   int
	channels   int
	dataSize   uint32
	byteBuf    []byte
}

func newFastWAVWriter(f *os.File, sampleRate, bitDepth, channels int) (*fastWAVWriter, error) {
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	w := &fastWAVWriter{
		w:          bufio.NewWriterSize(f, wavWriterBufferSize),
		f:          f,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
		byteBuf:    make([]byte, bufferSize*channels*(bitDepth/bitsPerByte)),
	}
	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *fastWAVWriter) writeHeader() error {
	bytesPerFrame := w.channels * (w.bitDepth / bitsPerByte)
	le := binary.LittleEndian

	header := make([]byte, 0, wavHeaderSize)
	header = append(header, "RIFF"...)
	header = le.AppendUint32(header, 0) // patched on Close
	header = append(header, "WAVEfmt "...)
	header = le.AppendUint32(header, wavPCMSubchunkSize)
	header = le.AppendUint16(header, 1) // PCM
	header = le.AppendUint16(header, uint16(w.channels))
	header = le.AppendUint32(header, uint32(w.sampleRate))
	header = le.AppendUint32(header, uint32(w.sampleRate*bytesPerFrame))
	header = le.AppendUint16(header, uint16(bytesPerFrame))
	header = le.AppendUint16(header, uint16(w.bitDepth))
	header = append(header, "data"...)
	header = le.AppendUint32(header, 0) // patched on Close

	_, err := w.w.Write(header)
	return err
}

// WriteSamples encodes interleaved samples at the writer's bit depth.
func (w *fastWAVWriter) WriteSamples(samples []int) error {
	width := w.bitDepth / bitsPerByte
	needed := len(samples) * width
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]

	switch w.bitDepth {
	case bitsPerSample16:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*bytesPerSample16:], uint16(int16(s)))
		}
	case bitsPerSample24:
		for i, s := range samples {
			buf[i*bytesPerSample24] = byte(s)
			buf[i*bytesPerSample24+1] = byte(s >> bitShift8)
			buf[i*bytesPerSample24+2] = byte(s >> bitShift16)
		}
	case bitsPerSample32:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(buf[i*bytesPerSample32:], uint32(int32(s)))
		}
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// Close flushes buffered data and writes the final chunk sizes.
func (w *fastWAVWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	sizeBytes := make([]byte, uint32Size)
	for _, field := range []struct {
		offset int64
		value  uint32
	}{
		{wavFileSizeOffset, wavRiffHeaderSize + w.dataSize},
		{wavDataSizeOffset, w.dataSize},
	} {
		if _, err := w.f.Seek(field.offset, io.SeekStart); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(sizeBytes, field.value)
		if _, err := w.f.Write(sizeBytes); err != nil {
			return err
		}
	}
	return nil
}
