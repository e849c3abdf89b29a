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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicConverterRoundTripsMixedMap(t *testing.T) {
	reg := NewRegistry()
	cc := NewContext(context.Background(), reg)
	conv := DynamicConverter{}

	src := map[string]any{
		"name": "Ada",
		"age":  int64(30),
		"tags": []any{"a", "b"},
	}

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, src))

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.Equal(t, "Ada", m["name"])
	assert.EqualValues(t, 30, m["age"])
	assert.Equal(t, []any{"a", "b"}, m["tags"])
}

func TestDynamicConverterStretchesNonStringKeys(t *testing.T) {
	reg := NewRegistry()
	cc := NewContext(context.Background(), reg)
	conv := DynamicConverter{}

	var buf msgpack.Buffer
	buf.WriteMapHeader(2)
	buf.WriteString("a")
	buf.WriteInt(1)
	buf.WriteInt(7)
	buf.WriteString("seven")

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m, ok := decoded.(map[any]any)
	require.True(t, ok, "a non-string key must promote the result to map[any]any")
	assert.EqualValues(t, 1, m["a"])
	assert.Equal(t, "seven", m[int64(7)])
}

func TestDynamicConverterNormalizesIntegerKeyStretching(t *testing.T) {
	reg := NewRegistry()
	cc := NewContext(context.Background(), reg)
	conv := DynamicConverter{}

	var buf msgpack.Buffer
	buf.WriteMapHeader(1)
	// WriteUint(200) picks codeUint8 since 200 > 0x7f, a format code
	// that decodes through the UintType/ReadU64 path as uint64(200) —
	// unlike a fixint or an explicit signed-width code, which both
	// decode as int64. Looking the value up by a plain int64 key must
	// still succeed.
	buf.WriteUint(200)
	buf.WriteString("two-hundred")

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m, ok := decoded.(map[any]any)
	require.True(t, ok)
	assert.Equal(t, "two-hundred", m[int64(200)],
		"a uint64-coded key must be looked up with a plain signed int despite the wire type mismatch")
}

func TestDynamicConverterExtensionValue(t *testing.T) {
	reg := NewRegistry()
	cc := NewContext(context.Background(), reg)
	conv := DynamicConverter{}

	var buf msgpack.Buffer
	buf.WriteExt(5, []byte{0xaa, 0xbb})

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	ext, ok := decoded.(ExtensionValue)
	require.True(t, ok)
	assert.EqualValues(t, 5, ext.Type)
	assert.Equal(t, []byte{0xaa, 0xbb}, ext.Data)
}
