package fileio

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/storage"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
	"github.com/pkg/errors"
)

// Reader is the counterpart of Writer. Short reads and trailing bytes are reported as ErrCorruptData.
type Reader struct {
	r         *bufio.Reader
	remaining int64 // -1 if the stream length is unknown
	scratch   [8]byte
	err       error
}

func NewReader(r io.Reader, size int64) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 1<<16), remaining: size}
}

func (r *Reader) read(n int) []byte {
	if r.err != nil {
		return r.scratch[:n]
	}
	if _, err := io.ReadFull(r.r, r.scratch[:n]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = util.WrapErrorf(err, util.ErrCorruptData, "stream ended early")
		return r.scratch[:n]
	}
	if r.remaining >= 0 {
		r.remaining -= int64(n)
	}
	return r.scratch[:n]
}

func (r *Reader) ReadUint8() uint8 {
	return r.read(1)[0]
}

func (r *Reader) ReadUint32() uint32 {
	return binary.LittleEndian.Uint32(r.read(4))
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadUint64() uint64 {
	return binary.LittleEndian.Uint64(r.read(8))
}

func (r *Reader) ReadInt64() int64 {
	return int64(r.ReadUint64())
}

// ReadElementCount64 reads a sequence length. minElementSize is the smallest encoded size of one
// element; a count that cannot fit in the rest of the stream is corrupt.
func (r *Reader) ReadElementCount64(minElementSize int) uint64 {
	count := r.ReadUint64()
	if r.err != nil {
		return 0
	}
	if r.remaining >= 0 && minElementSize > 0 && count > uint64(r.remaining)/uint64(minElementSize) {
		r.err = util.NewErrorf(util.ErrCorruptData,
			"element count %d does not fit in the remaining %d bytes", count, r.remaining)
		return 0
	}
	return count
}

// Reserve returns the capacity to preallocate for count elements.
func (r *Reader) Reserve(count uint64) int {
	if r.remaining < 0 && count > storage.MAX_RESERVE_ELEMENTS {
		return storage.MAX_RESERVE_ELEMENTS
	}
	return int(count)
}

func (r *Reader) ReadBytes() []byte {
	count := r.ReadElementCount64(1)
	if r.err != nil {
		return nil
	}
	b := make([]byte, 0, r.Reserve(count))
	for uint64(len(b)) < count && r.err == nil {
		chunk := count - uint64(len(b))
		if chunk > 1<<16 {
			chunk = 1 << 16
		}
		buf := make([]byte, chunk)
		if _, err := io.ReadFull(r.r, buf); err != nil {
			r.err = util.WrapErrorf(io.ErrUnexpectedEOF, util.ErrCorruptData, "stream ended early")
			return nil
		}
		if r.remaining >= 0 {
			r.remaining -= int64(chunk)
		}
		b = append(b, buf...)
	}
	return b
}

func (r *Reader) ReadUint32s() []uint32 {
	count := r.ReadElementCount64(4)
	vals := make([]uint32, 0, r.Reserve(count))
	for i := uint64(0); i < count && r.err == nil; i++ {
		vals = append(vals, r.ReadUint32())
	}
	return vals
}

func (r *Reader) Err() error {
	return r.err
}

// SetErr records err unless an earlier error is already stored.
func (r *Reader) SetErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Finish checks that the whole stream was consumed.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if r.remaining > 0 {
		return util.NewErrorf(util.ErrCorruptData, "%d trailing bytes", r.remaining)
	}
	if _, err := r.r.ReadByte(); err != io.EOF {
		return util.NewErrorf(util.ErrCorruptData, "trailing bytes after last record")
	}
	return nil
}

type FileReader struct {
	*Reader
	path    string
	f       *os.File
	decoder *zstd.Decoder
}

func NewFileReader(path string, compressed bool) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	fr := &FileReader{path: path, f: f}
	if compressed {
		decoder, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "failed to create zstd decoder")
		}
		fr.decoder = decoder
		fr.Reader = NewReader(decoder, -1)
		return fr, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	fr.Reader = NewReader(f, info.Size())
	return fr, nil
}

func (fr *FileReader) Close() error {
	if fr.decoder != nil {
		fr.decoder.Close()
	}
	return fr.f.Close()
}
