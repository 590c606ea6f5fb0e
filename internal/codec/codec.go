// Package codec provides the compact binary encoding used for memoized
// aggregation results and loader chunk payloads: MessagePack values wrapped
// in ZStandard frames.
package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec holds reusable ZStandard encoder/decoder state.
// Create once and reuse to eliminate allocations.
// Safe for concurrent use from multiple goroutines.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a reusable codec.
// Uses SpeedDefault (level 3) for balanced compression ratio and speed.
// Caller must call Close() when done to release resources.
func New() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Codec{
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Marshal serializes a Go value to MessagePack and compresses the result.
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode msgpack: %w", err)
	}
	return c.Compress(data), nil
}

// Unmarshal decompresses data and deserializes the MessagePack payload
// into v, which must be a pointer to the target structure.
func (c *Codec) Unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("empty payload")
	}

	raw, err := c.Decompress(data)
	if err != nil {
		return err
	}

	if err := msgpack.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode msgpack: %w", err)
	}
	return nil
}

// Compress compresses raw bytes using ZStandard.
// EncodeAll is goroutine-safe.
func (c *Codec) Compress(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	dst := make([]byte, 0, len(data)/2)
	return c.encoder.EncodeAll(data, dst)
}

// Decompress decompresses a ZStandard frame.
// DecodeAll is goroutine-safe.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return raw, nil
}

// Close releases encoder and decoder resources.
func (c *Codec) Close() error {
	var err error
	if c.encoder != nil {
		err = c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return err
}
