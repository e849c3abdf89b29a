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
	"github.com/shapewire/msgpack/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colorShape struct{}

func (colorShape) Kind() shape.Kind { return shape.EnumKind }
func (colorShape) Type() shape.Type { return shape.Type{Name: "Color"} }
func (colorShape) Cases() []shape.EnumCase {
	return []shape.EnumCase{{Name: "Red", Value: 0}, {Name: "Green", Value: 1}, {Name: "Blue", Value: 2}}
}
func (colorShape) ValueOf(obj any) int64 { return toInt64(obj) }
func (colorShape) FromValue(v int64) (any, bool) {
	for _, c := range (colorShape{}).Cases() {
		if c.Value == v {
			return c.Value, true
		}
	}
	return nil, false
}

func TestEnumConverterWritesCaseName(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(colorShape{})
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, int64(1)))

	r := msgpack.NewReader(buf.Bytes())
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Green", s)
}

func TestEnumConverterReadsCaseInsensitively(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(colorShape{})
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	buf.WriteString("bLuE")

	v, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
}

func TestEnumConverterFallsBackToRawValue(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(colorShape{})
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, int64(99)))

	v, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.EqualValues(t, 99, v)
}

type caseCollisionShape struct{}

func (caseCollisionShape) Kind() shape.Kind { return shape.EnumKind }
func (caseCollisionShape) Type() shape.Type { return shape.Type{Name: "Status"} }
func (caseCollisionShape) Cases() []shape.EnumCase {
	return []shape.EnumCase{{Name: "Active", Value: 0}, {Name: "ACTIVE", Value: 1}}
}
func (caseCollisionShape) ValueOf(obj any) int64 { return toInt64(obj) }
func (caseCollisionShape) FromValue(v int64) (any, bool) {
	for _, c := range (caseCollisionShape{}).Cases() {
		if c.Value == v {
			return c.Value, true
		}
	}
	return nil, false
}

func TestEnumConverterFallsBackToExactMatchOnFoldCollision(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(caseCollisionShape{})
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	// "Active" and "ACTIVE" collide once folded, so each must resolve
	// only by its exact spelling rather than either winning the fold.
	var buf msgpack.Buffer
	buf.WriteString("Active")
	v, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)

	buf.Reset()
	buf.WriteString("ACTIVE")
	v, err = conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	buf.Reset()
	buf.WriteString("active")
	_, err = conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	assert.Error(t, err, "a folded spelling that matches neither exact case must not resolve ambiguously")
}
