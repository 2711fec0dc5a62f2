package kv

import (
	"github.com/kelindar/binary"
	"github.com/pkg/errors"
)

// encodeEdges marshals the edges of one cell and compresses them.
func encodeEdges(edges []KVEdge) ([]byte, error) {
	bb, err := binary.Marshal(edges)
	if err != nil {
		return nil, errors.Wrap(err, "encoding cell edges")
	}
	return compress(bb)
}

func loadEdges(bbCompressed []byte) ([]KVEdge, error) {
	if len(bbCompressed) == 0 {
		return []KVEdge{}, nil
	}
	bb, err := decompress(bbCompressed)
	if err != nil {
		return nil, err
	}
	var edges []KVEdge
	if err := binary.Unmarshal(bb, &edges); err != nil {
		return nil, errors.Wrap(err, "decoding cell edges")
	}
	return edges, nil
}
