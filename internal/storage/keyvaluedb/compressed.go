package keyvaluedb

import "github.com/custodia/govaultd/internal/storage/keyvaluedb/compression"

// minCompressionSize is the value size below which compression is skipped;
// tiny entries gain nothing and pay the header.
const minCompressionSize = 128

// Compressed wraps a Store and compresses values above a size floor before
// they are written. Every value carries a one-byte marker so mixed stores
// (written under different settings) read back correctly.
type Compressed struct {
	inner Store
	comp  compression.Compressor
}

const (
	markerRaw    = 0x00
	markerPacked = 0x01
)

// NewCompressed wraps inner with the given compressor.
func NewCompressed(inner Store, comp compression.Compressor) *Compressed {
	return &Compressed{inner: inner, comp: comp}
}

func (c *Compressed) Get(key []byte) ([]byte, error) {
	stored, err := c.inner.Get(key)
	if err != nil {
		return nil, err
	}
	return c.unwrap(stored)
}

func (c *Compressed) Put(key, value []byte) error {
	if len(value) < minCompressionSize {
		return c.inner.Put(key, prepend(markerRaw, value))
	}
	packed, err := c.comp.Compress(value)
	if err != nil {
		return err
	}
	if len(packed) >= len(value) {
		return c.inner.Put(key, prepend(markerRaw, value))
	}
	return c.inner.Put(key, prepend(markerPacked, packed))
}

func (c *Compressed) Delete(key []byte) error {
	return c.inner.Delete(key)
}

func (c *Compressed) ForEach(fn func(key, value []byte) error) error {
	return c.inner.ForEach(func(key, stored []byte) error {
		value, err := c.unwrap(stored)
		if err != nil {
			return err
		}
		return fn(key, value)
	})
}

func (c *Compressed) Close() error {
	return c.inner.Close()
}

func (c *Compressed) unwrap(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return stored, nil
	}
	if stored[0] == markerPacked {
		return c.comp.Decompress(stored[1:])
	}
	out := make([]byte, len(stored)-1)
	copy(out, stored[1:])
	return out, nil
}

func prepend(marker byte, value []byte) []byte {
	out := make([]byte, 0, 1+len(value))
	out = append(out, marker)
	out = append(out, value...)
	return out
}
