// Copyright (C) 2026 The shapewire/msgpack Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package msgpack

import (
	"encoding/binary"
	"io"
	"math"
)

// Buffer is an append-oriented msgpack write buffer. It amortizes
// allocation the way ion.Buffer does: short writes grow the backing
// slice geometrically rather than touching any external sink on every
// call, and the accumulated bytes are flushed to a sink only when the
// caller chooses to (see Flush), so a Buffer composes directly with
// both a synchronous io.Writer and the async writer in mpasync.
type Buffer struct {
	buf []byte
}

// GetSpan returns a mutable span of at least minSize bytes at the end
// of the buffer without committing it to the buffer's length. The
// caller writes into the span and then calls Advance with the number
// of bytes actually used.
func (b *Buffer) GetSpan(minSize int) []byte {
	off := len(b.buf)
	if cap(b.buf)-off < minSize {
		nb := make([]byte, off, grownCap(cap(b.buf), off+minSize))
		copy(nb, b.buf)
		b.buf = nb
	}
	return b.buf[off:cap(b.buf)]
}

func grownCap(oldCap, need int) int {
	n := oldCap + oldCap/2
	if n < need {
		n = need
	}
	if n < 64 {
		n = 64
	}
	return n
}

// Advance commits n bytes from the most recently returned GetSpan
// span. It panics if n would overrun the span previously returned.
func (b *Buffer) Advance(n int) {
	if len(b.buf)+n > cap(b.buf) {
		panic("msgpack.Buffer.Advance: n exceeds last GetSpan")
	}
	b.buf = b.buf[:len(b.buf)+n]
}

// Write copies p into the buffer in one call.
func (b *Buffer) Write(p []byte) (int, error) {
	copy(b.GetSpan(len(p)), p)
	b.Advance(len(p))
	return len(p), nil
}

// UncommittedBytes reports the number of bytes written but not yet
// flushed to a sink.
func (b *Buffer) UncommittedBytes() int { return len(b.buf) }

// Bytes returns the current contents of the buffer.
func (b *Buffer) Bytes() []byte { return b.buf }

// Reset empties the buffer, retaining its backing array.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// Flush writes the buffered bytes to w and resets the buffer.
func (b *Buffer) Flush(w io.Writer) error {
	_, err := w.Write(b.buf)
	b.Reset()
	return err
}

// WriteTo implements io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf)
	return int64(n), err
}

// --- primitive token writers ---
//
// Integers are always written in the narrowest form that preserves
// their value, per the msgpack spec and spec.md §3.1/§3.3.

// WriteNil writes the nil token.
func (b *Buffer) WriteNil() { b.Write1(codeNil) }

// Write1 appends a single raw byte, such as a one-byte format code
// or fixint.
func (b *Buffer) Write1(c byte) {
	s := b.GetSpan(1)
	s[0] = c
	b.Advance(1)
}

// WriteBool writes a boolean token.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.Write1(codeTrue)
	} else {
		b.Write1(codeFalse)
	}
}

// WriteInt writes a signed integer in the narrowest representation
// that preserves its value.
func (b *Buffer) WriteInt(v int64) {
	switch {
	case v >= 0:
		b.WriteUint(uint64(v))
	case v >= -32:
		b.Write1(byte(v))
	case v >= math.MinInt8:
		s := b.GetSpan(2)
		s[0], s[1] = codeInt8, byte(v)
		b.Advance(2)
	case v >= math.MinInt16:
		s := b.GetSpan(3)
		s[0] = codeInt16
		binary.BigEndian.PutUint16(s[1:], uint16(v))
		b.Advance(3)
	case v >= math.MinInt32:
		s := b.GetSpan(5)
		s[0] = codeInt32
		binary.BigEndian.PutUint32(s[1:], uint32(v))
		b.Advance(5)
	default:
		s := b.GetSpan(9)
		s[0] = codeInt64
		binary.BigEndian.PutUint64(s[1:], uint64(v))
		b.Advance(9)
	}
}

// WriteUint writes an unsigned integer in the narrowest representation
// that preserves its value.
func (b *Buffer) WriteUint(v uint64) {
	switch {
	case v <= 0x7f:
		b.Write1(byte(v))
	case v <= math.MaxUint8:
		s := b.GetSpan(2)
		s[0], s[1] = codeUint8, byte(v)
		b.Advance(2)
	case v <= math.MaxUint16:
		s := b.GetSpan(3)
		s[0] = codeUint16
		binary.BigEndian.PutUint16(s[1:], uint16(v))
		b.Advance(3)
	case v <= math.MaxUint32:
		s := b.GetSpan(5)
		s[0] = codeUint32
		binary.BigEndian.PutUint32(s[1:], uint32(v))
		b.Advance(5)
	default:
		s := b.GetSpan(9)
		s[0] = codeUint64
		binary.BigEndian.PutUint64(s[1:], v)
		b.Advance(9)
	}
}

// WriteFloat32 writes an IEEE-754 32-bit float.
func (b *Buffer) WriteFloat32(f float32) {
	s := b.GetSpan(5)
	s[0] = codeFloat32
	binary.BigEndian.PutUint32(s[1:], math.Float32bits(f))
	b.Advance(5)
}

// WriteFloat64 writes an IEEE-754 64-bit float.
func (b *Buffer) WriteFloat64(f float64) {
	s := b.GetSpan(9)
	s[0] = codeFloat64
	binary.BigEndian.PutUint64(s[1:], math.Float64bits(f))
	b.Advance(9)
}

// WriteString writes s as a length-prefixed UTF-8 string.
func (b *Buffer) WriteString(s string) {
	b.writeStrHeader(len(s))
	n := copy(b.GetSpan(len(s)), s)
	b.Advance(n)
}

// WriteStringBytes is WriteString for a []byte already holding UTF-8.
func (b *Buffer) WriteStringBytes(p []byte) {
	b.writeStrHeader(len(p))
	n := copy(b.GetSpan(len(p)), p)
	b.Advance(n)
}

func (b *Buffer) writeStrHeader(n int) {
	switch {
	case n <= 31:
		b.Write1(byte(fixstrMin | n))
	case n <= math.MaxUint8:
		s := b.GetSpan(2)
		s[0], s[1] = codeStr8, byte(n)
		b.Advance(2)
	case n <= math.MaxUint16:
		s := b.GetSpan(3)
		s[0] = codeStr16
		binary.BigEndian.PutUint16(s[1:], uint16(n))
		b.Advance(3)
	default:
		s := b.GetSpan(5)
		s[0] = codeStr32
		binary.BigEndian.PutUint32(s[1:], uint32(n))
		b.Advance(5)
	}
}

// WriteBinary writes p as a length-prefixed opaque binary token.
func (b *Buffer) WriteBinary(p []byte) {
	switch n := len(p); {
	case n <= math.MaxUint8:
		s := b.GetSpan(2)
		s[0], s[1] = codeBin8, byte(n)
		b.Advance(2)
	case n <= math.MaxUint16:
		s := b.GetSpan(3)
		s[0] = codeBin16
		binary.BigEndian.PutUint16(s[1:], uint16(n))
		b.Advance(3)
	default:
		s := b.GetSpan(5)
		s[0] = codeBin32
		binary.BigEndian.PutUint32(s[1:], uint32(n))
		b.Advance(5)
	}
	n := copy(b.GetSpan(len(p)), p)
	b.Advance(n)
}

// WriteArrayHeader writes an array header for n upcoming elements.
// The caller is responsible for writing exactly n element values.
func (b *Buffer) WriteArrayHeader(n int) {
	switch {
	case n <= 15:
		b.Write1(byte(fixarrayMin | n))
	case n <= math.MaxUint16:
		s := b.GetSpan(3)
		s[0] = codeArray16
		binary.BigEndian.PutUint16(s[1:], uint16(n))
		b.Advance(3)
	default:
		s := b.GetSpan(5)
		s[0] = codeArray32
		binary.BigEndian.PutUint32(s[1:], uint32(n))
		b.Advance(5)
	}
}

// WriteMapHeader writes a map header for n upcoming key/value pairs.
func (b *Buffer) WriteMapHeader(n int) {
	switch {
	case n <= 15:
		b.Write1(byte(fixmapMin | n))
	case n <= math.MaxUint16:
		s := b.GetSpan(3)
		s[0] = codeMap16
		binary.BigEndian.PutUint16(s[1:], uint16(n))
		b.Advance(3)
	default:
		s := b.GetSpan(5)
		s[0] = codeMap32
		binary.BigEndian.PutUint32(s[1:], uint32(n))
		b.Advance(5)
	}
}

// WriteExtHeader writes an extension header for a payload of n bytes
// tagged with the given (possibly negative) extension type.
func (b *Buffer) WriteExtHeader(extType int8, n int) {
	switch n {
	case 1, 2, 4, 8, 16:
		var code byte
		switch n {
		case 1:
			code = codeFixext1
		case 2:
			code = codeFixext2
		case 4:
			code = codeFixext4
		case 8:
			code = codeFixext8
		case 16:
			code = codeFixext16
		}
		s := b.GetSpan(2)
		s[0], s[1] = code, byte(extType)
		b.Advance(2)
		return
	}
	switch {
	case n <= math.MaxUint8:
		s := b.GetSpan(3)
		s[0], s[1], s[2] = codeExt8, byte(n), byte(extType)
		b.Advance(3)
	case n <= math.MaxUint16:
		s := b.GetSpan(4)
		s[0] = codeExt16
		binary.BigEndian.PutUint16(s[1:], uint16(n))
		s[3] = byte(extType)
		b.Advance(4)
	default:
		s := b.GetSpan(6)
		s[0] = codeExt32
		binary.BigEndian.PutUint32(s[1:], uint32(n))
		s[5] = byte(extType)
		b.Advance(6)
	}
}

// WriteExt writes a complete extension value (header + payload).
func (b *Buffer) WriteExt(extType int8, payload []byte) {
	b.WriteExtHeader(extType, len(payload))
	n := copy(b.GetSpan(len(payload)), payload)
	b.Advance(n)
}
