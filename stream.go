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
	"math"
)

// Result is the tagged outcome of a Stream "try" operation. It never
// panics and never allocates an error for the ordinary buffering
// cases; callers drive retry loops off it directly.
type Result int

const (
	// Success means a token was decoded and the cursor advanced past it.
	Success Result = iota
	// EmptyBuffer means zero bytes are available at the cursor.
	EmptyBuffer
	// InsufficientBuffer means a complete token is present in principle
	// but the current buffer is too short to decode it; the cursor is
	// unchanged and the caller should fetch more bytes and retry.
	InsufficientBuffer
	// TokenMismatch means the format code at the cursor is inconsistent
	// with the decode operation requested.
	TokenMismatch
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case EmptyBuffer:
		return "EmptyBuffer"
	case InsufficientBuffer:
		return "InsufficientBuffer"
	case TokenMismatch:
		return "TokenMismatch"
	default:
		return "Result(?)"
	}
}

// Stream is a non-throwing, incremental msgpack decoder over a
// caller-grown byte buffer. Every Success return advances the cursor
// by the exact on-wire length of the token consumed; InsufficientBuffer
// and EmptyBuffer leave the cursor unchanged, so retrying after Append
// is idempotent (spec.md §3.3).
//
// NewStream and Reset keep the caller's slice without copying it.
// Append copies p onto the end of the buffer with the built-in append,
// so it may write into spare capacity of the slice given to NewStream
// or Reset; p itself is not retained.
type Stream struct {
	buf []byte
	pos int
}

// NewStream creates a Stream over an initial (possibly empty) buffer.
func NewStream(buf []byte) *Stream {
	return &Stream{buf: buf}
}

// Append adds more bytes to the end of the buffer, for use after an
// InsufficientBuffer/EmptyBuffer result.
func (s *Stream) Append(p []byte) {
	s.buf = append(s.buf, p...)
}

// Reset replaces the buffer and cursor wholesale.
func (s *Stream) Reset(buf []byte) {
	s.buf = buf
	s.pos = 0
}

// Position returns the current cursor offset into the buffer.
func (s *Stream) Position() int { return s.pos }

// SetPosition rewinds or fast-forwards the cursor to an offset
// previously observed via Position. Used by peek-ahead callers (e.g.
// mpasync's structure-counting loop) that need to probe how much of
// the buffer is consumable without actually consuming it.
func (s *Stream) SetPosition(pos int) { s.pos = pos }

// Remaining returns the unconsumed tail of the buffer.
func (s *Stream) Remaining() []byte { return s.buf[s.pos:] }

// Compact discards already-consumed bytes, shifting the remainder to
// the front of the backing array and resetting the cursor to zero.
// Used by mpasync to bound memory growth across refills.
func (s *Stream) Compact() {
	if s.pos == 0 {
		return
	}
	n := copy(s.buf, s.buf[s.pos:])
	s.buf = s.buf[:n]
	s.pos = 0
}

func (s *Stream) avail() []byte { return s.buf[s.pos:] }

// TryPeekCode returns the format code at the cursor without advancing.
func (s *Stream) TryPeekCode() (byte, Result) {
	a := s.avail()
	if len(a) == 0 {
		return 0, EmptyBuffer
	}
	return a[0], Success
}

// TryPeekType is TryPeekCode translated to its logical Type.
func (s *Stream) TryPeekType() (Type, Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return InvalidType, r
	}
	return TypeOfCode(c), Success
}

// TryReadNull consumes a nil token.
func (s *Stream) TryReadNull() Result {
	c, r := s.TryPeekCode()
	if r != Success {
		return r
	}
	if c != codeNil {
		return TokenMismatch
	}
	s.pos++
	return Success
}

// TryReadBool consumes a boolean token.
func (s *Stream) TryReadBool() (bool, Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return false, r
	}
	switch c {
	case codeTrue:
		s.pos++
		return true, Success
	case codeFalse:
		s.pos++
		return false, Success
	default:
		return false, TokenMismatch
	}
}

// TryReadArrayHeader consumes an array header and returns its length.
func (s *Stream) TryReadArrayHeader() (int, Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return 0, r
	}
	switch {
	case c >= fixarrayMin && c <= fixarrayMax:
		s.pos++
		return int(c & 0x0f), Success
	case c == codeArray16:
		return s.readLenHeader(1, 2)
	case c == codeArray32:
		return s.readLenHeader(1, 4)
	default:
		return 0, TokenMismatch
	}
}

// TryReadMapHeader consumes a map header and returns its pair count.
func (s *Stream) TryReadMapHeader() (int, Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return 0, r
	}
	switch {
	case c >= fixmapMin && c <= fixmapMax:
		s.pos++
		return int(c & 0x0f), Success
	case c == codeMap16:
		return s.readLenHeader(1, 2)
	case c == codeMap32:
		return s.readLenHeader(1, 4)
	default:
		return 0, TokenMismatch
	}
}

// readLenHeader reads a big-endian length field of width bytes located
// headerLen bytes after the cursor's format code, then advances past
// the whole header.
func (s *Stream) readLenHeader(headerLen, width int) (int, Result) {
	need := headerLen + width
	a := s.avail()
	if len(a) < need {
		return 0, InsufficientBuffer
	}
	var n uint32
	switch width {
	case 2:
		n = uint32(binary.BigEndian.Uint16(a[headerLen:]))
	case 4:
		n = binary.BigEndian.Uint32(a[headerLen:])
	}
	s.pos += need
	return int(n), Success
}

// integerPayload describes the decoded magnitude of whatever integer
// token sits at the cursor, prior to sign/zero-extension into a
// specific destination width.
type integerPayload struct {
	magnitude uint64
	signed    bool // true if the source token was semantically negative
}

// tryReadIntegerPayload consumes any integer-shaped token (positive or
// negative fixint, uintN, intN) and reports its magnitude. Readers for
// a specific destination width call this and then range-check.
func (s *Stream) tryReadIntegerPayload() (integerPayload, Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return integerPayload{}, r
	}
	switch {
	case c <= 0x7f:
		s.pos++
		return integerPayload{magnitude: uint64(c)}, Success
	case c >= negfixintMin:
		s.pos++
		return integerPayload{magnitude: uint64(int64(int8(c))), signed: true}, Success
	}
	var width int
	var isSigned bool
	switch c {
	case codeUint8:
		width = 1
	case codeUint16:
		width = 2
	case codeUint32:
		width = 4
	case codeUint64:
		width = 8
	case codeInt8:
		width, isSigned = 1, true
	case codeInt16:
		width, isSigned = 2, true
	case codeInt32:
		width, isSigned = 4, true
	case codeInt64:
		width, isSigned = 8, true
	default:
		return integerPayload{}, TokenMismatch
	}
	a := s.avail()
	if len(a) < 1+width {
		return integerPayload{}, InsufficientBuffer
	}
	body := a[1 : 1+width]
	var mag uint64
	switch width {
	case 1:
		mag = uint64(body[0])
		if isSigned {
			mag = uint64(int64(int8(body[0])))
		}
	case 2:
		u := binary.BigEndian.Uint16(body)
		if isSigned {
			mag = uint64(int64(int16(u)))
		} else {
			mag = uint64(u)
		}
	case 4:
		u := binary.BigEndian.Uint32(body)
		if isSigned {
			mag = uint64(int64(int32(u)))
		} else {
			mag = uint64(u)
		}
	case 8:
		u := binary.BigEndian.Uint64(body)
		mag = u
		if isSigned {
			mag = uint64(int64(u))
		}
	}
	s.pos += 1 + width
	neg := isSigned && int64(mag) < 0
	return integerPayload{magnitude: mag, signed: neg}, Success
}

// TryReadI64 reads any integer-shaped token and widens it to int64.
// If the magnitude is not representable as int64, err is
// ErrValueOutOfRange and the cursor has already advanced (the token
// was structurally valid, just not representable).
func (s *Stream) TryReadI64() (int64, Result, error) {
	p, r := s.tryReadIntegerPayload()
	if r != Success {
		return 0, r, nil
	}
	if p.signed {
		return int64(p.magnitude), Success, nil
	}
	if p.magnitude > math.MaxInt64 {
		return 0, Success, ErrValueOutOfRange
	}
	return int64(p.magnitude), Success, nil
}

// TryReadU64 reads any integer-shaped token and widens it to uint64.
func (s *Stream) TryReadU64() (uint64, Result, error) {
	p, r := s.tryReadIntegerPayload()
	if r != Success {
		return 0, r, nil
	}
	if p.signed {
		return 0, Success, ErrValueOutOfRange
	}
	return p.magnitude, Success, nil
}

// TryReadI32 reads an integer and narrows it to int32.
func (s *Stream) TryReadI32() (int32, Result, error) {
	v, r, err := s.TryReadI64()
	if r != Success || err != nil {
		return 0, r, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, Success, ErrValueOutOfRange
	}
	return int32(v), Success, nil
}

// TryReadU32 reads an integer and narrows it to uint32.
func (s *Stream) TryReadU32() (uint32, Result, error) {
	v, r, err := s.TryReadU64()
	if r != Success || err != nil {
		return 0, r, err
	}
	if v > math.MaxUint32 {
		return 0, Success, ErrValueOutOfRange
	}
	return uint32(v), Success, nil
}

// TryReadI16 reads an integer and narrows it to int16.
func (s *Stream) TryReadI16() (int16, Result, error) {
	v, r, err := s.TryReadI64()
	if r != Success || err != nil {
		return 0, r, err
	}
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, Success, ErrValueOutOfRange
	}
	return int16(v), Success, nil
}

// TryReadU16 reads an integer and narrows it to uint16.
func (s *Stream) TryReadU16() (uint16, Result, error) {
	v, r, err := s.TryReadU64()
	if r != Success || err != nil {
		return 0, r, err
	}
	if v > math.MaxUint16 {
		return 0, Success, ErrValueOutOfRange
	}
	return uint16(v), Success, nil
}

// TryReadI8 reads an integer and narrows it to int8.
func (s *Stream) TryReadI8() (int8, Result, error) {
	v, r, err := s.TryReadI64()
	if r != Success || err != nil {
		return 0, r, err
	}
	if v < math.MinInt8 || v > math.MaxInt8 {
		return 0, Success, ErrValueOutOfRange
	}
	return int8(v), Success, nil
}

// TryReadU8 reads an integer and narrows it to uint8.
func (s *Stream) TryReadU8() (uint8, Result, error) {
	v, r, err := s.TryReadU64()
	if r != Success || err != nil {
		return 0, r, err
	}
	if v > math.MaxUint8 {
		return 0, Success, ErrValueOutOfRange
	}
	return uint8(v), Success, nil
}

// TryReadF32 reads a 32-bit float token.
func (s *Stream) TryReadF32() (float32, Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return 0, r
	}
	if c != codeFloat32 {
		return 0, TokenMismatch
	}
	a := s.avail()
	if len(a) < 5 {
		return 0, InsufficientBuffer
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(a[1:5]))
	s.pos += 5
	return v, Success
}

// TryReadF64 reads a 64-bit float token.
func (s *Stream) TryReadF64() (float64, Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return 0, r
	}
	if c != codeFloat64 {
		return 0, TokenMismatch
	}
	a := s.avail()
	if len(a) < 9 {
		return 0, InsufficientBuffer
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(a[1:9]))
	s.pos += 9
	return v, Success
}

// strHeader reads a string header and returns the
// payload length and the number of header bytes consumed, without
// advancing the cursor (the caller advances once the full payload is
// known to be available).
func (s *Stream) strHeader() (payloadLen, headerLen int, r Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return 0, 0, r
	}
	switch {
	case c >= fixstrMin && c <= fixstrMax:
		return int(c & 0x1f), 1, Success
	case c == codeStr8:
		a := s.avail()
		if len(a) < 2 {
			return 0, 0, InsufficientBuffer
		}
		return int(a[1]), 2, Success
	case c == codeStr16:
		a := s.avail()
		if len(a) < 3 {
			return 0, 0, InsufficientBuffer
		}
		return int(binary.BigEndian.Uint16(a[1:3])), 3, Success
	case c == codeStr32:
		a := s.avail()
		if len(a) < 5 {
			return 0, 0, InsufficientBuffer
		}
		return int(binary.BigEndian.Uint32(a[1:5])), 5, Success
	default:
		return 0, 0, TokenMismatch
	}
}

func (s *Stream) binHeader() (payloadLen, headerLen int, r Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return 0, 0, r
	}
	switch c {
	case codeBin8:
		a := s.avail()
		if len(a) < 2 {
			return 0, 0, InsufficientBuffer
		}
		return int(a[1]), 2, Success
	case codeBin16:
		a := s.avail()
		if len(a) < 3 {
			return 0, 0, InsufficientBuffer
		}
		return int(binary.BigEndian.Uint16(a[1:3])), 3, Success
	case codeBin32:
		a := s.avail()
		if len(a) < 5 {
			return 0, 0, InsufficientBuffer
		}
		return int(binary.BigEndian.Uint32(a[1:5])), 5, Success
	default:
		return 0, 0, TokenMismatch
	}
}

// TryReadStringSequence consumes a string token and returns its raw
// UTF-8 payload bytes (a view into the Stream's buffer, valid only
// until the next Compact).
func (s *Stream) TryReadStringSequence() ([]byte, Result) {
	plen, hlen, r := s.strHeader()
	if r != Success {
		return nil, r
	}
	a := s.avail()
	if len(a) < hlen+plen {
		return nil, InsufficientBuffer
	}
	body := a[hlen : hlen+plen]
	s.pos += hlen + plen
	return body, Success
}

// TryReadStringSpan is an alias of TryReadStringSequence named to
// match spec.md's "(contiguous, span)" variant; this implementation's
// buffer is always contiguous, so the two are identical.
func (s *Stream) TryReadStringSpan() ([]byte, Result) {
	return s.TryReadStringSequence()
}

// TryReadBinary consumes a binary token and returns its payload.
func (s *Stream) TryReadBinary() ([]byte, Result) {
	plen, hlen, r := s.binHeader()
	if r != Success {
		return nil, r
	}
	a := s.avail()
	if len(a) < hlen+plen {
		return nil, InsufficientBuffer
	}
	body := a[hlen : hlen+plen]
	s.pos += hlen + plen
	return body, Success
}

// TryReadExtHeader consumes an extension header and returns the
// extension type code and payload length; the payload itself is read
// with TryReadRaw(payloadLen).
func (s *Stream) TryReadExtHeader() (extType int8, payloadLen int, r Result) {
	c, r := s.TryPeekCode()
	if r != Success {
		return 0, 0, r
	}
	switch c {
	case codeFixext1, codeFixext2, codeFixext4, codeFixext8, codeFixext16:
		a := s.avail()
		if len(a) < 2 {
			return 0, 0, InsufficientBuffer
		}
		sizes := map[byte]int{codeFixext1: 1, codeFixext2: 2, codeFixext4: 4, codeFixext8: 8, codeFixext16: 16}
		s.pos += 2
		return int8(a[1]), sizes[c], Success
	case codeExt8:
		a := s.avail()
		if len(a) < 3 {
			return 0, 0, InsufficientBuffer
		}
		n := int(a[1])
		s.pos += 3
		return int8(a[2]), n, Success
	case codeExt16:
		a := s.avail()
		if len(a) < 4 {
			return 0, 0, InsufficientBuffer
		}
		n := int(binary.BigEndian.Uint16(a[1:3]))
		s.pos += 4
		return int8(a[3]), n, Success
	case codeExt32:
		a := s.avail()
		if len(a) < 6 {
			return 0, 0, InsufficientBuffer
		}
		n := int(binary.BigEndian.Uint32(a[1:5]))
		s.pos += 6
		return int8(a[5]), n, Success
	default:
		return 0, 0, TokenMismatch
	}
}

// TryReadRaw consumes exactly length bytes at the cursor verbatim,
// with no interpretation. Used after TryReadExtHeader.
func (s *Stream) TryReadRaw(length int) ([]byte, Result) {
	a := s.avail()
	if len(a) < length {
		return nil, InsufficientBuffer
	}
	body := a[:length]
	s.pos += length
	return body, Success
}

// TrySkip skips the next complete token, recursing into composites.
// depthBudget bounds nesting; exceeding it returns ErrDepthExceeded.
// On any non-Success result the cursor is restored to where it was
// before the call, even if part of a composite had been skipped.
func (s *Stream) TrySkip(depthBudget int) (Result, error) {
	if depthBudget < 0 {
		return Success, ErrDepthExceeded
	}
	c, r := s.TryPeekCode()
	if r != Success {
		return r, nil
	}
	start := s.pos
	t := TypeOfCode(c)
	switch t {
	case ArrayType:
		n, r := s.TryReadArrayHeader()
		if r != Success {
			return r, nil
		}
		for i := 0; i < n; i++ {
			r, err := s.TrySkip(depthBudget - 1)
			if r != Success || err != nil {
				if r != Success {
					s.pos = start
				}
				return r, err
			}
		}
		return Success, nil
	case MapType:
		n, r := s.TryReadMapHeader()
		if r != Success {
			return r, nil
		}
		for i := 0; i < 2*n; i++ {
			r, err := s.TrySkip(depthBudget - 1)
			if r != Success || err != nil {
				if r != Success {
					s.pos = start
				}
				return r, err
			}
		}
		return Success, nil
	case ExtensionType:
		_, n, r := s.TryReadExtHeader()
		if r != Success {
			return r, nil
		}
		_, r = s.TryReadRaw(n)
		if r != Success {
			s.pos = start
		}
		return r, nil
	case NilType:
		return s.TryReadNull(), nil
	case BoolType:
		_, r := s.TryReadBool()
		return r, nil
	case StringType:
		_, r := s.TryReadStringSequence()
		return r, nil
	case BinaryType:
		_, r := s.TryReadBinary()
		return r, nil
	case FloatType:
		if c == codeFloat32 {
			_, r := s.TryReadF32()
			return r, nil
		}
		_, r := s.TryReadF64()
		return r, nil
	case IntType, UintType:
		_, r, err := s.TryReadI64()
		if err == ErrValueOutOfRange {
			// the token is structurally complete even if it
			// doesn't fit an int64; skip treats that as consumed.
			return Success, nil
		}
		return r, nil
	default:
		return TokenMismatch, nil
	}
}
