package glf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor is a bounds-checked sequential reader over an in-memory buffer.
// Every read advances the position by the width of the value; reads and
// seeks past the end fail with ErrOutOfBounds. The Gemini log format is
// little-endian throughout, so all multi-byte reads decode little-endian.
// A Cursor never mutates the underlying buffer.
type Cursor struct {
	buf []byte
	off int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current absolute position.
func (c *Cursor) Pos() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

// Seek repositions the cursor absolutely. Seeking to len(buf) is legal;
// any read from there fails.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.buf) {
		return fmt.Errorf("%w: seek to %d in %d-byte buffer", ErrOutOfBounds, off, len(c.buf))
	}
	c.off = off
	return nil
}

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n int) error {
	if n < 0 || c.off+n > len(c.buf) {
		return fmt.Errorf("%w: skip %d bytes at offset %d of %d", ErrOutOfBounds, n, c.off, len(c.buf))
	}
	c.off += n
	return nil
}

// Bytes returns the next n bytes as a sub-slice of the underlying buffer
// without copying. The caller must treat the slice as read-only.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrOutOfBounds, n, c.off, len(c.buf))
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) U8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) U64() (uint64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) F32() (float32, error) {
	u, err := c.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func (c *Cursor) F64() (float64, error) {
	u, err := c.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}
