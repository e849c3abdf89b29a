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

package mpsimd

import (
	"fmt"

	"github.com/shapewire/msgpack"
	"golang.org/x/exp/constraints"
)

// fixnum bounds for the two one-byte integer format codes: positive
// fixint (0x00-0x7f) and negative fixint (0xe0-0xff, i.e. int8 -32..-1).
const (
	posFixintMax = 0x7f
	negFixintMin = 0xe0
)

// EncodeBoolSpan writes vals as a contiguous run of one-byte boolean
// tokens. Because every msgpack bool is exactly one byte wide
// regardless of value, this is always the "hot path": a single
// classify-free pass over the span (spec.md §4.5, scenario 5).
func EncodeBoolSpan(buf *msgpack.Buffer, vals []bool) {
	span := buf.GetSpan(len(vals))
	for i, v := range vals {
		if v {
			span[i] = 0xc3 // true
		} else {
			span[i] = 0xc2 // false
		}
	}
	buf.Advance(len(vals))
}

// DecodeBoolSpan reads n boolean tokens with one Reader.ReadBool call
// per element; any byte other than the true/false format codes is a
// token mismatch. No vector load is performed.
func DecodeBoolSpan(r *msgpack.Reader, n int) ([]bool, error) {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadBool()
		if err != nil {
			return nil, fmt.Errorf("mpsimd: decoding bool element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// laneClassSigned classifies a signed value into the width it needs:
// 0 = fits in the one-byte fixnum encoding, 1/2/4/8 = bytes of payload
// needed beyond the format code.
func laneClassSigned(v int64) int {
	switch {
	case v >= -32 && v <= posFixintMax:
		return 0
	case v >= -128 && v <= 127:
		return 1
	case v >= -32768 && v <= 32767:
		return 2
	case v >= -2147483648 && v <= 2147483647:
		return 4
	default:
		return 8
	}
}

func laneClassUnsigned(v uint64) int {
	switch {
	case v <= posFixintMax:
		return 0
	case v <= 0xff:
		return 1
	case v <= 0xffff:
		return 2
	case v <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// EncodeIntSpan writes a homogeneous span of signed integers. If
// every lane classifies as a one-byte fixnum, it takes the hot path:
// a single GetSpan/Advance pair and a byte-cast loop the compiler can
// autovectorize. Otherwise it falls back to the scalar per-lane
// narrowest-form writer (msgpack.Buffer.WriteInt), exactly the "narrow
// format code, then big-endian payload" path spec.md §4.5 describes.
func EncodeIntSpan[T constraints.Signed](buf *msgpack.Buffer, vals []T) {
	allFixnum := true
	for _, v := range vals {
		if laneClassSigned(int64(v)) != 0 {
			allFixnum = false
			break
		}
	}
	if allFixnum {
		span := buf.GetSpan(len(vals))
		for i, v := range vals {
			span[i] = byte(int8(v))
		}
		buf.Advance(len(vals))
		return
	}
	for _, v := range vals {
		buf.WriteInt(int64(v))
	}
}

// EncodeUintSpan is EncodeIntSpan's unsigned counterpart.
func EncodeUintSpan[T constraints.Unsigned](buf *msgpack.Buffer, vals []T) {
	allFixnum := true
	for _, v := range vals {
		if laneClassUnsigned(uint64(v)) != 0 {
			allFixnum = false
			break
		}
	}
	if allFixnum {
		span := buf.GetSpan(len(vals))
		for i, v := range vals {
			span[i] = byte(v)
		}
		buf.Advance(len(vals))
		return
	}
	for _, v := range vals {
		buf.WriteUint(uint64(v))
	}
}

// DecodeIntSpan reads n signed integers, widening each to T and
// erroring on overflow (spec.md §4.5 "integer widening on decode").
// Every lane, fixnum or not, is decoded with its own Reader.ReadI64
// call; there is no separate fixnum fast path on decode.
func DecodeIntSpan[T constraints.Signed](r *msgpack.Reader, n int) ([]T, error) {
	out := make([]T, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadI64()
		if err != nil {
			return nil, fmt.Errorf("mpsimd: decoding int element %d: %w", i, err)
		}
		if int64(T(v)) != v {
			return nil, fmt.Errorf("mpsimd: element %d value %d out of range: %w", i, v, msgpack.ErrValueOutOfRange)
		}
		out[i] = T(v)
	}
	return out, nil
}

// DecodeUintSpan is DecodeIntSpan's unsigned counterpart.
func DecodeUintSpan[T constraints.Unsigned](r *msgpack.Reader, n int) ([]T, error) {
	out := make([]T, n)
	for i := 0; i < n; i++ {
		v, err := r.ReadU64()
		if err != nil {
			return nil, fmt.Errorf("mpsimd: decoding uint element %d: %w", i, err)
		}
		if uint64(T(v)) != v {
			return nil, fmt.Errorf("mpsimd: element %d value %d out of range: %w", i, v, msgpack.ErrValueOutOfRange)
		}
		out[i] = T(v)
	}
	return out, nil
}

// EncodeFloatSpan writes a homogeneous span of floats. Unlike
// integers, floats are never narrowed: every value is encoded at its
// declared width with one Buffer.WriteFloat32/WriteFloat64 call per
// element, which writes the big-endian payload itself; no per-vector
// byte reversal is done.
func EncodeFloatSpan[T constraints.Float](buf *msgpack.Buffer, vals []T) {
	var zero T
	switch any(zero).(type) {
	case float32:
		for _, v := range vals {
			buf.WriteFloat32(float32(v))
		}
	default:
		for _, v := range vals {
			buf.WriteFloat64(float64(v))
		}
	}
}

// DecodeFloatSpan reads n floats of a fixed declared width.
func DecodeFloatSpan[T constraints.Float](r *msgpack.Reader, n int, wide bool) ([]T, error) {
	out := make([]T, n)
	for i := 0; i < n; i++ {
		if wide {
			v, err := r.ReadF64()
			if err != nil {
				return nil, fmt.Errorf("mpsimd: decoding float element %d: %w", i, err)
			}
			out[i] = T(v)
		} else {
			v, err := r.ReadF32()
			if err != nil {
				return nil, fmt.Errorf("mpsimd: decoding float element %d: %w", i, err)
			}
			out[i] = T(v)
		}
	}
	return out, nil
}
