package kv

import (
	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, errors.Wrap(err, "zstd compress")
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, errors.Wrap(err, "zstd decompress")
	}
	return bb, nil
}
