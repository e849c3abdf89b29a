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
	"testing"

	"github.com/shapewire/msgpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeBoolSpan(t *testing.T) {
	var buf msgpack.Buffer
	vals := []bool{true, false, true, true, false}
	EncodeBoolSpan(&buf, vals)
	assert.Equal(t, []byte{0xc3, 0xc2, 0xc3, 0xc3, 0xc2}, buf.Bytes())

	r := msgpack.NewReader(buf.Bytes())
	out, err := DecodeBoolSpan(r, len(vals))
	require.NoError(t, err)
	assert.Equal(t, vals, out)
}

func TestEncodeIntSpanFixnumHotPath(t *testing.T) {
	var buf msgpack.Buffer
	vals := []int32{0, 1, -1, 31, -32, 127}
	EncodeIntSpan(&buf, vals)
	assert.Equal(t, len(vals), len(buf.Bytes()), "every lane fits the one-byte fixnum form")

	r := msgpack.NewReader(buf.Bytes())
	out, err := DecodeIntSpan[int32](r, len(vals))
	require.NoError(t, err)
	assert.Equal(t, vals, out)
}

func TestEncodeIntSpanMixedWidths(t *testing.T) {
	var buf msgpack.Buffer
	vals := []int64{0, 1000, -40000, 5}
	EncodeIntSpan(&buf, vals)
	assert.True(t, len(buf.Bytes()) > len(vals), "at least one lane needs extra payload bytes")

	r := msgpack.NewReader(buf.Bytes())
	out, err := DecodeIntSpan[int64](r, len(vals))
	require.NoError(t, err)
	assert.Equal(t, vals, out)
}

func TestDecodeIntSpanOverflow(t *testing.T) {
	var buf msgpack.Buffer
	buf.WriteInt(300)
	r := msgpack.NewReader(buf.Bytes())
	_, err := DecodeIntSpan[int8](r, 1)
	assert.ErrorIs(t, err, msgpack.ErrValueOutOfRange)
}

func TestEncodeUintSpanHotPathAndFallback(t *testing.T) {
	var buf msgpack.Buffer
	vals := []uint32{0, 10, 127}
	EncodeUintSpan(&buf, vals)
	assert.Equal(t, len(vals), len(buf.Bytes()))

	r := msgpack.NewReader(buf.Bytes())
	out, err := DecodeUintSpan[uint32](r, len(vals))
	require.NoError(t, err)
	assert.Equal(t, vals, out)

	buf.Reset()
	wide := []uint32{0, 70000}
	EncodeUintSpan(&buf, wide)
	assert.True(t, len(buf.Bytes()) > len(wide))
}

func TestEncodeDecodeFloatSpan(t *testing.T) {
	var buf msgpack.Buffer
	vals := []float64{1.5, -2.25, 0}
	EncodeFloatSpan(&buf, vals)
	assert.Equal(t, 9*len(vals), len(buf.Bytes()))

	r := msgpack.NewReader(buf.Bytes())
	out, err := DecodeFloatSpan[float64](r, len(vals), true)
	require.NoError(t, err)
	assert.Equal(t, vals, out)
}

func TestEncodeDecodeFloat32Span(t *testing.T) {
	var buf msgpack.Buffer
	vals := []float32{1.5, -2.25}
	EncodeFloatSpan(&buf, vals)
	assert.Equal(t, 5*len(vals), len(buf.Bytes()))

	r := msgpack.NewReader(buf.Bytes())
	out, err := DecodeFloatSpan[float32](r, len(vals), false)
	require.NoError(t, err)
	assert.Equal(t, vals, out)
}
