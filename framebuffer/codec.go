package framebuffer

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the compression applied to snapshot data.
type Codec uint8

const (
	// CodecNone stores rows as-is.
	CodecNone Codec = 0
	// CodecLZ4 uses LZ4 block compression (fast, the default).
	CodecLZ4 Codec = 1
	// CodecZSTD uses ZSTD (better ratio, more CPU).
	CodecZSTD Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec converts a codec name to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "none", "":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	default:
		return 0, fmt.Errorf("framebuffer: unknown codec %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

const blockHeaderSize = 8

// encodeBlock prefixes data with its size and compresses it with c. Data
// that does not shrink below 90% is stored raw, marked by a zero compressed
// size.
func encodeBlock(data []byte, c Codec) ([]byte, error) {
	var compressed []byte

	switch c {
	case CodecNone:
	case CodecLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CodecZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("framebuffer: unknown codec %d", uint8(c))
	}

	stored := len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9
	if stored {
		compressed = data
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	if !stored {
		binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	}
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// decodeBlock reverses encodeBlock given the block header fields.
// maxCompressedSize bounds the compressed length of a size-byte block.
// encodeBlock never emits more, so larger wire values are corrupt.
func maxCompressedSize(size uint32) uint64 {
	return uint64(lz4.CompressBlockBound(int(size)))
}

func decodeBlock(body []byte, size uint32, c Codec) ([]byte, error) {
	result := make([]byte, size)

	switch c {
	case CodecLZ4:
		n, err := lz4.UncompressBlock(body, result)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorrupt, n, size)
		}
		return result, nil

	case CodecZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(body, result[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != size {
			return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorrupt, len(decoded), size)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: compressed block with codec %s", ErrCorrupt, c)
	}
}
