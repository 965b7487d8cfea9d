// Package borsh implements the primitive layer of the Borsh binary format:
// fixed width little-endian integers, u32 length-prefixed byte strings and
// sequences, and one-byte option flags.
package borsh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Option flag values
const (
	OptionNone byte = 0
	OptionSome byte = 1
)

var (
	// ErrInvalidOptionTag is returned when an option flag is neither 0 nor 1.
	ErrInvalidOptionTag = errors.New("invalid option tag")
	// ErrInvalidUTF8 is returned when a string payload is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")
)

// Writer accumulates an encoding in memory.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) WriteU8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteFixed writes b without a length prefix (fixed size arrays).
func (w *Writer) WriteFixed(b []byte) {
	w.buf.Write(b)
}

// WriteBytes writes a u32 length prefix followed by b.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteOption writes the presence flag. The caller writes the value when present.
func (w *Writer) WriteOption(present bool) {
	if present {
		w.WriteU8(OptionSome)
		return
	}
	w.WriteU8(OptionNone)
}

// Reader consumes an encoding from a byte slice.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Exhausted reports whether every byte has been consumed.
func (r *Reader) Exhausted() bool {
	return r.Remaining() == 0
}

// Offset returns the position of the next unread byte.
func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		if r.Exhausted() {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadFixed reads exactly n bytes and returns a copy. Zero bytes read as nil,
// the zero value of a Go byte slice.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadBytes reads a u32 length-prefixed byte string.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Remaining()) {
		return nil, fmt.Errorf("length prefix %d exceeds remaining %d bytes: %w", n, r.Remaining(), io.ErrUnexpectedEOF)
	}
	return r.ReadFixed(int(n))
}

// ReadString reads a u32 length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadOption reads a presence flag.
func (r *Reader) ReadOption() (bool, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	switch tag {
	case OptionNone:
		return false, nil
	case OptionSome:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrInvalidOptionTag, tag)
	}
}

// ReadBytesSeq reads a u32 count followed by that many byte strings.
func (r *Reader) ReadBytesSeq() ([][]byte, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	// every element carries at least its 4 byte length prefix
	if int64(n)*4 > int64(r.Remaining()) {
		return nil, fmt.Errorf("sequence length %d exceeds remaining %d bytes: %w", n, r.Remaining(), io.ErrUnexpectedEOF)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([][]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		b, err := r.ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// WriteBytesSeq writes a u32 count followed by each byte string.
func (w *Writer) WriteBytesSeq(seq [][]byte) {
	w.WriteU32(uint32(len(seq)))
	for _, b := range seq {
		w.WriteBytes(b)
	}
}
