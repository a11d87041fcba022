package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// LZ4Compressor implements LZ4 block compression. The uncompressed length
// is prepended as a uvarint so Decompress can size its output buffer.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string { return "lz4" }

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	header := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(header, uint64(len(data)))

	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, buf, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if size == 0 || size >= len(data) {
		// Incompressible; store raw with a zero-length marker.
		out := make([]byte, 0, 1+len(data))
		out = append(out, 0x00)
		out = append(out, data...)
		return out, nil
	}

	out := make([]byte, 0, 1+n+size)
	out = append(out, 0x01)
	out = append(out, header[:n]...)
	out = append(out, buf[:size]...)
	return out, nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	switch data[0] {
	case 0x00:
		out := make([]byte, len(data)-1)
		copy(out, data[1:])
		return out, nil
	case 0x01:
		origLen, n := binary.Uvarint(data[1:])
		if n <= 0 {
			return nil, fmt.Errorf("lz4: corrupt length header")
		}
		out := make([]byte, origLen)
		size, err := lz4.UncompressBlock(data[1+n:], out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		return out[:size], nil
	default:
		return nil, fmt.Errorf("lz4: unknown frame marker 0x%02x", data[0])
	}
}
