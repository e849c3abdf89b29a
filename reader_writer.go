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

import "fmt"

// Reader is a throwing facade over Stream, suitable for buffers that
// are already known to hold complete msgpack values (spec.md §4.3).
// Each ReadX delegates to the matching Stream.TryReadX: Success
// returns the value, EmptyBuffer/InsufficientBuffer become
// ErrEndOfStream, and TokenMismatch becomes a *TokenMismatchError.
type Reader struct {
	s *Stream
}

// NewReader wraps buf (assumed complete) in a Reader.
func NewReader(buf []byte) *Reader {
	return &Reader{s: NewStream(buf)}
}

// NewReaderFromStream wraps an existing Stream in a Reader, e.g. one
// owned by an async adapter's cached window.
func NewReaderFromStream(s *Stream) *Reader {
	return &Reader{s: s}
}

// Stream exposes the underlying streaming decoder, e.g. for Skip or
// for switching to the async adapter mid-stream.
func (r *Reader) Stream() *Stream { return r.s }

func (r *Reader) mismatch(want string) error {
	c, _ := r.s.TryPeekCode()
	return &TokenMismatchError{Code: c, Want: want}
}

// ReadNil reads a nil token.
func (r *Reader) ReadNil() error {
	switch res := r.s.TryReadNull(); res {
	case Success:
		return nil
	case TokenMismatch:
		return r.mismatch("nil")
	default:
		return ErrEndOfStream
	}
}

// ReadBool reads a boolean token.
func (r *Reader) ReadBool() (bool, error) {
	v, res := r.s.TryReadBool()
	if res == TokenMismatch {
		return false, r.mismatch("bool")
	}
	if res != Success {
		return false, ErrEndOfStream
	}
	return v, nil
}

// sanityCheckCount refuses to trust a header-declared count against a
// corrupt/adversarial buffer: the remaining bytes must be able to hold
// at least minBytes bytes (each element is at least one byte on the
// wire, so minBytes is count or 2*count for maps).
func (r *Reader) sanityCheckCount(minBytes int) error {
	if len(r.s.Remaining()) < minBytes {
		return fmt.Errorf("msgpack: header declares %d bytes of elements but only %d bytes remain: %w", minBytes, len(r.s.Remaining()), ErrEndOfStream)
	}
	return nil
}

// ReadArrayHeader reads an array header and sanity-checks the count
// against the remaining buffer length (each element is at least one
// byte) before returning it.
func (r *Reader) ReadArrayHeader() (int, error) {
	n, res := r.s.TryReadArrayHeader()
	if res == TokenMismatch {
		return 0, r.mismatch("array header")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	if err := r.sanityCheckCount(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadMapHeader reads a map header and sanity-checks 2*count against
// the remaining buffer length before returning the pair count.
func (r *Reader) ReadMapHeader() (int, error) {
	n, res := r.s.TryReadMapHeader()
	if res == TokenMismatch {
		return 0, r.mismatch("map header")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	if err := r.sanityCheckCount(2 * n); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadI64 reads a signed 64-bit integer.
func (r *Reader) ReadI64() (int64, error) {
	v, res, err := r.s.TryReadI64()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("int64")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit integer.
func (r *Reader) ReadU64() (uint64, error) {
	v, res, err := r.s.TryReadU64()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("uint64")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadI32 reads a signed 32-bit integer, narrowed from any integer encoding.
func (r *Reader) ReadI32() (int32, error) {
	v, res, err := r.s.TryReadI32()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("int32")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) {
	v, res, err := r.s.TryReadU32()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("uint32")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadI16 reads a signed 16-bit integer.
func (r *Reader) ReadI16() (int16, error) {
	v, res, err := r.s.TryReadI16()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("int16")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadU16 reads an unsigned 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) {
	v, res, err := r.s.TryReadU16()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("uint16")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadI8 reads a signed 8-bit integer.
func (r *Reader) ReadI8() (int8, error) {
	v, res, err := r.s.TryReadI8()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("int8")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadU8 reads an unsigned 8-bit integer.
func (r *Reader) ReadU8() (uint8, error) {
	v, res, err := r.s.TryReadU8()
	if err != nil {
		return 0, err
	}
	if res == TokenMismatch {
		return 0, r.mismatch("uint8")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadF32 reads a 32-bit float.
func (r *Reader) ReadF32() (float32, error) {
	v, res := r.s.TryReadF32()
	if res == TokenMismatch {
		return 0, r.mismatch("float32")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadF64 reads a 64-bit float.
func (r *Reader) ReadF64() (float64, error) {
	v, res := r.s.TryReadF64()
	if res == TokenMismatch {
		return 0, r.mismatch("float64")
	}
	if res != Success {
		return 0, ErrEndOfStream
	}
	return v, nil
}

// ReadString reads a string token and copies it into a Go string.
func (r *Reader) ReadString() (string, error) {
	b, res := r.s.TryReadStringSequence()
	if res == TokenMismatch {
		return "", r.mismatch("string")
	}
	if res != Success {
		return "", ErrEndOfStream
	}
	return string(b), nil
}

// ReadStringBytes reads a string token without copying; the returned
// slice is a view into the Reader's buffer.
func (r *Reader) ReadStringBytes() ([]byte, error) {
	b, res := r.s.TryReadStringSequence()
	if res == TokenMismatch {
		return nil, r.mismatch("string")
	}
	if res != Success {
		return nil, ErrEndOfStream
	}
	return b, nil
}

// ReadBinary reads a binary token without copying.
func (r *Reader) ReadBinary() ([]byte, error) {
	b, res := r.s.TryReadBinary()
	if res == TokenMismatch {
		return nil, r.mismatch("binary")
	}
	if res != Success {
		return nil, ErrEndOfStream
	}
	return b, nil
}

// ReadExtHeader reads an extension header.
func (r *Reader) ReadExtHeader() (int8, int, error) {
	et, n, res := r.s.TryReadExtHeader()
	if res == TokenMismatch {
		return 0, 0, r.mismatch("extension")
	}
	if res != Success {
		return 0, 0, ErrEndOfStream
	}
	return et, n, nil
}

// ReadRaw reads length raw bytes verbatim.
func (r *Reader) ReadRaw(length int) ([]byte, error) {
	b, res := r.s.TryReadRaw(length)
	if res != Success {
		return nil, ErrEndOfStream
	}
	return b, nil
}

// Skip skips the next complete token, descending at most depthBudget
// levels into composites.
func (r *Reader) Skip(depthBudget int) error {
	res, err := r.s.TrySkip(depthBudget)
	if err != nil {
		return err
	}
	if res != Success {
		return ErrEndOfStream
	}
	return nil
}

// Writer is the throwing synchronous write facade (spec.md §4.3); it
// is simply Buffer, which never fails on well-formed input in this
// in-memory implementation. It is named separately to mirror the
// Reader/Writer pairing used by the converter framework.
type Writer = Buffer
