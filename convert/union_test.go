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
	"fmt"
	"testing"

	"github.com/shapewire/msgpack"
	"github.com/shapewire/msgpack/shape"
	"github.com/shapewire/msgpack/shape/reflectshape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type circle struct {
	Radius int `msgpack:"radius"`
}
type square struct {
	Side int `msgpack:"side"`
}

type shapeCase struct {
	alias    string
	intAlias int64
	isInt    bool
	vs       shape.Shape
}

func (c shapeCase) Alias() string           { return c.alias }
func (c shapeCase) IntAlias() (int64, bool) { return c.intAlias, c.isInt }
func (c shapeCase) ValueShape() shape.Shape { return c.vs }

type shapesUnion struct{}

func (shapesUnion) Kind() shape.Kind { return shape.UnionKind }
func (shapesUnion) Type() shape.Type { return shape.Type{Name: "Shape"} }
func (shapesUnion) Cases() []shape.CaseShape {
	return []shape.CaseShape{
		shapeCase{alias: "circle", vs: reflectshape.Of(circle{})},
		shapeCase{alias: "square", vs: reflectshape.Of(square{})},
	}
}
func (shapesUnion) DiscriminatorOf(obj any) (shape.CaseShape, bool) {
	switch obj.(type) {
	case circle:
		return shapeCase{alias: "circle", vs: reflectshape.Of(circle{})}, true
	case square:
		return shapeCase{alias: "square", vs: reflectshape.Of(square{})}, true
	default:
		return nil, false
	}
}

func TestUnionConverterRoundTrip(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(shapesUnion{})
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, circle{Radius: 5}))

	r := msgpack.NewReader(buf.Bytes())
	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	alias, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "circle", alias)

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.EqualValues(t, 5, m["radius"])
}

func TestUnionConverterRejectsUnknownAlias(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(shapesUnion{})
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	buf.WriteArrayHeader(2)
	buf.WriteString("triangle")
	buf.WriteNil()

	_, err = conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	assert.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "unknown case alias")
}

type taggedUnion struct{}

func (taggedUnion) Kind() shape.Kind { return shape.UnionKind }
func (taggedUnion) Type() shape.Type { return shape.Type{Name: "Tagged"} }
func (taggedUnion) Cases() []shape.CaseShape {
	return []shape.CaseShape{
		shapeCase{alias: "circle", intAlias: 1, isInt: true, vs: reflectshape.Of(circle{})},
		shapeCase{alias: "square", intAlias: 2, isInt: true, vs: reflectshape.Of(square{})},
	}
}
func (taggedUnion) DiscriminatorOf(obj any) (shape.CaseShape, bool) {
	switch obj.(type) {
	case circle:
		return shapeCase{alias: "circle", intAlias: 1, isInt: true, vs: reflectshape.Of(circle{})}, true
	case square:
		return shapeCase{alias: "square", intAlias: 2, isInt: true, vs: reflectshape.Of(square{})}, true
	default:
		return nil, false
	}
}

func TestUnionConverterIntAlias(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(taggedUnion{})
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, square{Side: 4}))

	r := msgpack.NewReader(buf.Bytes())
	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	alias, err := r.ReadI64()
	require.NoError(t, err)
	assert.EqualValues(t, 2, alias, "an integer-tagged case must write its short-integer alias, not its name")

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	m := decoded.(map[string]any)
	assert.EqualValues(t, 4, m["side"])
}
