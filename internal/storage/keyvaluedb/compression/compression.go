// Package compression provides the block compressors used by persistent
// storage backends before values hit disk.
package compression

import "fmt"

// Compressor compresses and decompresses single values.
type Compressor interface {
	// Name is the config identifier for this compressor.
	Name() string

	// Compress returns the encoded form of data.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress.
	Decompress(data []byte) ([]byte, error)
}

// Get returns the compressor registered under name.
func Get(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return &NoCompressor{}, nil
	case "lz4":
		return &LZ4Compressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compressor %q", name)
	}
}

// NoCompressor is a pass-through compressor.
type NoCompressor struct{}

func (c *NoCompressor) Name() string { return "none" }

func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
