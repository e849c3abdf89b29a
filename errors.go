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

import "errors"

// Sentinel errors returned by the buffered (throwing) facade. The
// streaming layer (Stream) reports buffering and token-mismatch
// conditions via the Result enum; of these sentinels it returns only
// ErrValueOutOfRange (integer reads) and ErrDepthExceeded (TrySkip),
// alongside its Result.
var (
	ErrEndOfStream     = errors.New("msgpack: end of stream")
	ErrValueOutOfRange = errors.New("msgpack: value out of range")
	ErrMissingProperty = errors.New("msgpack: missing required property")
	ErrDepthExceeded   = errors.New("msgpack: maximum nesting depth exceeded")
	ErrNullKey         = errors.New("msgpack: map key decoded to null")
)

// TokenMismatchError is returned when the format code at the cursor is
// inconsistent with the decode operation requested.
type TokenMismatchError struct {
	Code byte   // the offending format code
	Want string // what the caller was trying to read
}

func (e *TokenMismatchError) Error() string {
	return "msgpack: unexpected token 0x" + hexByte(e.Code) + " (" + codeName(e.Code) + "), wanted " + e.Want
}

func (e *TokenMismatchError) Is(target error) bool {
	return target == ErrTokenMismatch
}

// ErrTokenMismatch is the sentinel matched by errors.Is against any
// *TokenMismatchError.
var ErrTokenMismatch = errors.New("msgpack: token mismatch")

const hexdigits = "0123456789abcdef"

func hexByte(b byte) string {
	return string([]byte{hexdigits[b>>4], hexdigits[b&0xf]})
}
