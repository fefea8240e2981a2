package framebuffer

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
)

const (
	headerSize    = 24
	formatVersion = 1
	flagFull      = 1 << 0
)

var magic = [4]byte{'V', 'Z', 'F', 'B'}

type header struct {
	codec  Codec
	full   bool
	width  uint32
	height uint32
	seq    uint32
	runs   uint32
}

func (h header) marshal() []byte {
	buf := make([]byte, headerSize)
	copy(buf, magic[:])
	buf[4] = formatVersion
	buf[5] = byte(h.codec)
	if h.full {
		buf[6] = flagFull
	}
	binary.LittleEndian.PutUint32(buf[8:], h.width)
	binary.LittleEndian.PutUint32(buf[12:], h.height)
	binary.LittleEndian.PutUint32(buf[16:], h.seq)
	binary.LittleEndian.PutUint32(buf[20:], h.runs)
	return buf
}

func (h *header) unmarshal(buf []byte) error {
	if [4]byte(buf[:4]) != magic {
		return fmt.Errorf("%w: bad magic %q", ErrCorrupt, buf[:4])
	}
	if buf[4] != formatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, buf[4])
	}
	h.codec = Codec(buf[5])
	h.full = buf[6]&flagFull != 0
	h.width = binary.LittleEndian.Uint32(buf[8:])
	h.height = binary.LittleEndian.Uint32(buf[12:])
	h.seq = binary.LittleEndian.Uint32(buf[16:])
	h.runs = binary.LittleEndian.Uint32(buf[20:])
	return nil
}

// encodeRows serializes the rows in dirty as runs of consecutive rows.
func encodeRows(f *Frame, dirty *roaring.Bitmap) (payload []byte, runs uint32, rows int) {
	rows = int(dirty.GetCardinality())
	payload = make([]byte, 0, rows*f.w+16)

	it := dirty.Iterator()
	start, count := -1, 0
	flush := func() {
		if count == 0 {
			return
		}
		payload = binary.LittleEndian.AppendUint32(payload, uint32(start))
		payload = binary.LittleEndian.AppendUint32(payload, uint32(count))
		payload = append(payload, f.pix[start*f.w:(start+count)*f.w]...)
		runs++
	}

	for it.HasNext() {
		y := int(it.Next())
		if y >= f.h {
			break
		}
		if count > 0 && y == start+count {
			count++
			continue
		}
		flush()
		start, count = y, 1
	}
	flush()

	return payload, runs, rows
}

// SnapshotInfo describes a snapshot applied by ApplySnapshot.
type SnapshotInfo struct {
	Sequence uint32
	Full     bool
	Codec    Codec
	Rows     int
}

// ApplySnapshot reads one snapshot from r and copies its rows into dst.
// dst must have the snapshot's dimensions.
func ApplySnapshot(r io.Reader, dst *Frame) (SnapshotInfo, error) {
	buf := make([]byte, headerSize+blockHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return SnapshotInfo{}, err
	}

	var h header
	if err := h.unmarshal(buf); err != nil {
		return SnapshotInfo{}, err
	}
	if int(h.width) != dst.w || int(h.height) != dst.h {
		return SnapshotInfo{}, fmt.Errorf("%w: snapshot %dx%d, frame %dx%d", ErrSizeMismatch, h.width, h.height, dst.w, dst.h)
	}

	size := binary.LittleEndian.Uint32(buf[headerSize:])
	compressed := binary.LittleEndian.Uint32(buf[headerSize+4:])
	if uint64(size) > uint64(h.height)*uint64(h.width)+8*uint64(h.height) {
		return SnapshotInfo{}, fmt.Errorf("%w: payload of %d bytes exceeds frame", ErrCorrupt, size)
	}
	if uint64(compressed) > maxCompressedSize(size) {
		return SnapshotInfo{}, fmt.Errorf("%w: block of %d bytes for %d-byte payload", ErrCorrupt, compressed, size)
	}

	var payload []byte
	if compressed == 0 {
		payload = make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return SnapshotInfo{}, unexpected(err)
		}
	} else {
		body := make([]byte, compressed)
		if _, err := io.ReadFull(r, body); err != nil {
			return SnapshotInfo{}, unexpected(err)
		}
		var err error
		if payload, err = decodeBlock(body, size, h.codec); err != nil {
			return SnapshotInfo{}, err
		}
	}

	info := SnapshotInfo{Sequence: h.seq, Full: h.full, Codec: h.codec}
	for i := uint32(0); i < h.runs; i++ {
		if len(payload) < 8 {
			return info, fmt.Errorf("%w: truncated run %d", ErrCorrupt, i)
		}
		start := binary.LittleEndian.Uint32(payload)
		count := binary.LittleEndian.Uint32(payload[4:])
		payload = payload[8:]

		if uint64(start)+uint64(count) > uint64(dst.h) {
			return info, fmt.Errorf("%w: rows %d+%d outside frame", ErrCorrupt, start, count)
		}
		n := int(count) * dst.w
		if len(payload) < n {
			return info, fmt.Errorf("%w: truncated rows in run %d", ErrCorrupt, i)
		}
		copy(dst.pix[int(start)*dst.w:], payload[:n])
		dst.touch(int(start), int(count))
		payload = payload[n:]
		info.Rows += int(count)
	}
	if len(payload) != 0 {
		return info, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(payload))
	}

	return info, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
