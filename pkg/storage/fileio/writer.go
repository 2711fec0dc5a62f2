package fileio

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

/*
Writer writes typed little-endian values. Sequences are written as an 8 byte element count followed by
the elements. The first error sticks: later writes are no-ops and the error is returned by Err / Close.
*/
type Writer struct {
	w       *bufio.Writer
	scratch [8]byte
	err     error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 1<<16)}
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *Writer) WriteUint8(v uint8) {
	w.scratch[0] = v
	w.write(w.scratch[:1])
}

func (w *Writer) WriteUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.write(w.scratch[:4])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], v)
	w.write(w.scratch[:8])
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteElementCount64(count int) {
	w.WriteUint64(uint64(count))
}

// WriteBytes writes a count-prefixed byte sequence.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteElementCount64(len(b))
	w.write(b)
}

func (w *Writer) WriteUint32s(vals []uint32) {
	w.WriteElementCount64(len(vals))
	for _, v := range vals {
		w.WriteUint32(v)
	}
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// FileWriter is a Writer over a file, optionally zstd framed.
type FileWriter struct {
	*Writer
	path    string
	f       *os.File
	encoder *zstd.Encoder
}

func NewFileWriter(path string, compressed bool) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	fw := &FileWriter{path: path, f: f}
	if compressed {
		encoder, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "failed to create zstd encoder")
		}
		fw.encoder = encoder
		fw.Writer = NewWriter(encoder)
	} else {
		fw.Writer = NewWriter(f)
	}
	return fw, nil
}

func (fw *FileWriter) Close() error {
	err := fw.Flush()
	if fw.encoder != nil {
		if cerr := fw.encoder.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := fw.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "writing %s", fw.path)
	}
	return nil
}
