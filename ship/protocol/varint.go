package protocol

import (
	"encoding/binary"
	"fmt"
)

// cursor is a forward-only reader over a byte slice, mirroring the
// teacher's rlp.Stream idiom (a single position-tracking reader threaded
// through a family of decode functions) adapted to the upstream's own
// little-endian / LEB128 wire format instead of RLP.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(b []byte) *cursor { return &cursor{buf: b} }

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) take(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, c.remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) byte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) bool() (bool, error) {
	b, err := c.byte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) hash() (h [32]byte, err error) {
	b, err := c.take(32)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

// varuint32 reads a LEB128-encoded unsigned 32-bit integer, the variable
// length integer encoding the upstream uses for vector counts and variant
// tags.
func (c *cursor) varuint32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := c.byte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 35 {
			return 0, fmt.Errorf("%w: varuint32 overflow", ErrMalformed)
		}
	}
	return result, nil
}

// optionalPresent reads the presence byte preceding an optional field.
func (c *cursor) optionalPresent() (bool, error) {
	return c.bool()
}

func putVaruint32(out []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func putU32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

func putBool(out []byte, v bool) []byte {
	if v {
		return append(out, 1)
	}
	return append(out, 0)
}
