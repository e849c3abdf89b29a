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

package convert

import (
	"context"
	"testing"

	"github.com/shapewire/msgpack"
	"github.com/shapewire/msgpack/shape/reflectshape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X int    `msgpack:"x"`
	Y int    `msgpack:"y"`
	Z int    `msgpack:"z,omitempty"`
	W string `msgpack:"w,omitempty"`
}

func TestObjectConverterChoosesSmallerEncoding(t *testing.T) {
	reg := NewRegistry()
	s := reflectshape.Of(point{})
	conv, err := reg.Get(s)
	require.NoError(t, err)

	cc := NewContext(context.Background(), reg)

	// X, Y and Z present and small, W empty and omitted: the array
	// form has no per-key overhead and should win or tie.
	var buf msgpack.Buffer
	p := point{X: 1, Y: 2, Z: 3}
	require.NoError(t, conv.Write(cc, &buf, p))

	r := msgpack.NewReader(buf.Bytes())
	typ, res := r.Stream().TryPeekType()
	require.Equal(t, msgpack.Success, res)
	assert.Equal(t, msgpack.ArrayType, typ, "dense struct should pick the array encoding")

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.EqualValues(t, 1, m["x"])
	assert.EqualValues(t, 2, m["y"])
	assert.EqualValues(t, 3, m["z"])
}

func TestObjectConverterSparseMiddleGapNilPads(t *testing.T) {
	reg := NewRegistry()
	s := reflectshape.Of(point{})
	conv, err := reg.Get(s)
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	// Z absent but W present: the array form nil-pads the gap at Z's
	// position, and here that's still cheaper than the integer-keyed
	// map form, so the array wins.
	p := point{X: 1, Y: 2, W: "hi"}
	require.NoError(t, conv.Write(cc, &buf, p))

	r := msgpack.NewReader(buf.Bytes())
	typ, res := r.Stream().TryPeekType()
	require.Equal(t, msgpack.Success, res)
	assert.Equal(t, msgpack.ArrayType, typ)

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.EqualValues(t, 1, m["x"])
	assert.EqualValues(t, "hi", m["w"])
	_, hasZ := m["z"]
	assert.False(t, hasZ, "a nil-padded array slot must decode as absent")
}

type tenProps struct {
	P0 int `msgpack:"p0,omitempty"`
	P1 int `msgpack:"p1,omitempty"`
	P2 int `msgpack:"p2,omitempty"`
	P3 int `msgpack:"p3,omitempty"`
	P4 int `msgpack:"p4,omitempty"`
	P5 int `msgpack:"p5,omitempty"`
	P6 int `msgpack:"p6,omitempty"`
	P7 int `msgpack:"p7,omitempty"`
	P8 int `msgpack:"p8,omitempty"`
	P9 int `msgpack:"p9,omitempty"`
}

func TestObjectConverterMostlyAbsentUsesIntegerKeyedMap(t *testing.T) {
	reg := NewRegistry()
	s := reflectshape.Of(tenProps{})
	conv, err := reg.Get(s)
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	// Only the last of ten properties is present: the array form
	// would have to nil-pad nine leading slots, while the map form
	// pays only for one (index, value) pair, so the map wins.
	require.NoError(t, conv.Write(cc, &buf, tenProps{P9: 7}))

	r := msgpack.NewReader(buf.Bytes())
	typ, res := r.Stream().TryPeekType()
	require.Equal(t, msgpack.Success, res)
	assert.Equal(t, msgpack.MapType, typ, "9 absent of 10 properties must emit the map form")

	n, err := r.ReadMapHeader()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	idx, err := r.ReadI64()
	require.NoError(t, err)
	assert.EqualValues(t, 9, idx, "the map form's key is the property's declared index")

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.EqualValues(t, 7, m["p9"])
	assert.Len(t, m, 1)
}

type withSlice struct {
	Tags []string `msgpack:"tags"`
}

func TestObjectConverterNestedEnumerable(t *testing.T) {
	reg := NewRegistry()
	s := reflectshape.Of(withSlice{})
	conv, err := reg.Get(s)
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, withSlice{Tags: []string{"a", "b"}}))

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m := decoded.(map[string]any)
	tags := m["tags"].([]string)
	assert.Equal(t, []string{"a", "b"}, tags)
}
