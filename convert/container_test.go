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

func TestEnumerableConverterRoundTrip(t *testing.T) {
	reg := NewRegistry()
	s := reflectshape.Of([]int{})
	conv, err := reg.Get(s)
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, []int{1, 2, 3}))

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, decoded)
}

func TestDictionaryConverterRoundTrip(t *testing.T) {
	reg := NewRegistry()
	s := reflectshape.Of(map[string]int{})
	conv, err := reg.Get(s)
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	src := map[string]int{"a": 1, "b": 2}
	require.NoError(t, conv.Write(cc, &buf, src))

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestMultiDimConverterRoundTrip(t *testing.T) {
	reg := NewRegistry()
	elemConv, err := reg.Get(reflectshape.Of(0))
	require.NoError(t, err)
	mdc, err := NewMultiDimConverter(2, elemConv)
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	src := &MultiDimValue{
		Dims: []int{2, 3},
		Flat: []any{int64(1), int64(2), int64(3), int64(4), int64(5), int64(6)},
	}

	var buf msgpack.Buffer
	require.NoError(t, mdc.Write(cc, &buf, src))

	// Wire shape is [[dims...], [flat...]], not nested arrays-of-arrays.
	r := msgpack.NewReader(buf.Bytes())
	outer, err := r.ReadArrayHeader()
	require.NoError(t, err)
	assert.Equal(t, 2, outer)
	dimsLen, err := r.ReadArrayHeader()
	require.NoError(t, err)
	assert.Equal(t, 2, dimsLen)

	decoded, err := mdc.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got := decoded.(*MultiDimValue)
	assert.Equal(t, src.Dims, got.Dims)
	assert.Equal(t, src.Flat, got.Flat)
}
