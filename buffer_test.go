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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixnumWriteRead(t *testing.T) {
	var b Buffer
	b.WriteUint(1)
	assert.Equal(t, []byte{0x01}, b.Bytes())

	r := NewReader(b.Bytes())
	u, err := r.ReadU8()
	require.NoError(t, err)
	assert.EqualValues(t, 1, u)

	r = NewReader(b.Bytes())
	i, err := r.ReadI64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, i)

	r = NewReader(b.Bytes())
	u64, err := r.ReadU64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, u64)
}

func TestNegativeNarrow(t *testing.T) {
	var b Buffer
	b.WriteInt(-33)
	assert.Equal(t, []byte{0xd0, 0xdf}, b.Bytes())

	for _, width := range []string{"i8", "i16", "i32", "i64"} {
		r := NewReader(b.Bytes())
		var v int64
		var err error
		switch width {
		case "i8":
			var x int8
			x, err = r.ReadI8()
			v = int64(x)
		case "i16":
			var x int16
			x, err = r.ReadI16()
			v = int64(x)
		case "i32":
			var x int32
			x, err = r.ReadI32()
			v = int64(x)
		case "i64":
			v, err = r.ReadI64()
		}
		require.NoError(t, err, width)
		assert.EqualValues(t, -33, v, width)
	}

	r := NewReader(b.Bytes())
	_, err := r.ReadU8()
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestStringStraddle(t *testing.T) {
	var b Buffer
	b.WriteString("hello!\n")
	out := b.Bytes()
	require.Len(t, out, 8)
	assert.Equal(t, byte(0xa7), out[0])

	s := NewStream(out[:3])
	_, res := s.TryReadStringSequence()
	assert.Equal(t, InsufficientBuffer, res)
	assert.Equal(t, 0, s.Position())

	s.Append(out[3:])
	body, res := s.TryReadStringSequence()
	require.Equal(t, Success, res)
	assert.Equal(t, "hello!\n", string(body))
}

func TestBulkBoolRoundTripShape(t *testing.T) {
	var b Buffer
	b.WriteArrayHeader(5)
	for _, v := range []bool{true, false, true, true, false} {
		b.WriteBool(v)
	}
	assert.Equal(t, []byte{0x95, 0xc3, 0xc2, 0xc3, 0xc3, 0xc2}, b.Bytes())
}

func TestIdempotentStreaming(t *testing.T) {
	var b Buffer
	b.WriteArrayHeader(3)
	b.WriteUint(1)
	b.WriteString("abc")
	b.WriteFloat64(1.5)
	full := append([]byte(nil), b.Bytes()...)

	for split := 0; split <= len(full); split++ {
		s := NewStream(full[:split])
		n, res := s.TryReadArrayHeader()
		if res == Success {
			assert.Equal(t, 3, n)
		} else {
			assert.Contains(t, []Result{EmptyBuffer, InsufficientBuffer}, res)
			assert.Equal(t, 0, s.Position())
			s.Append(full[split:])
			n2, res2 := s.TryReadArrayHeader()
			require.Equal(t, Success, res2)
			assert.Equal(t, 3, n2)
		}
	}
}

func TestSkipEqualsReadAndDiscard(t *testing.T) {
	var b Buffer
	b.WriteMapHeader(2)
	b.WriteString("a")
	b.WriteInt(42)
	b.WriteString("b")
	b.WriteArrayHeader(2)
	b.WriteBool(true)
	b.WriteNil()
	full := b.Bytes()

	s1 := NewStream(append([]byte(nil), full...))
	res, err := s1.TrySkip(DefaultMaxDepth)
	require.NoError(t, err)
	require.Equal(t, Success, res)

	r2 := NewReader(append([]byte(nil), full...))
	_, err = r2.ReadMapHeader()
	require.NoError(t, err)
	_, err = r2.ReadString()
	require.NoError(t, err)
	_, err = r2.ReadI64()
	require.NoError(t, err)
	_, err = r2.ReadString()
	require.NoError(t, err)
	n, err := r2.ReadArrayHeader()
	require.NoError(t, err)
	_, err = r2.ReadBool()
	require.NoError(t, err)
	require.NoError(t, r2.ReadNil())
	_ = n

	assert.Equal(t, s1.Position(), len(full))
}

func TestDepthExceeded(t *testing.T) {
	var b Buffer
	depth := 70
	for i := 0; i < depth; i++ {
		b.WriteArrayHeader(1)
	}
	b.WriteNil()

	s := NewStream(b.Bytes())
	_, err := s.TrySkip(DefaultMaxDepth)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestTimestampRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		sec  int64
		nsec int64
	}{
		{"seconds-only", 1_700_000_000, 0},
		{"micro-ish", 1_700_000_000, 123000},
		{"negative", -5, 42},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var b Buffer
			tm := time.Unix(c.sec, c.nsec).UTC()
			b.WriteTimestamp(tm)
			r := NewReader(b.Bytes())
			got, err := r.ReadTimestamp()
			require.NoError(t, err)
			assert.Equal(t, c.sec, got.Unix())
			if c.sec >= 0 {
				assert.EqualValues(t, c.nsec, got.Nanosecond())
			}
		})
	}
}
