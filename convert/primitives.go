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
	"fmt"
	"reflect"

	"github.com/shapewire/msgpack"
	"github.com/shapewire/msgpack/shape"
)

// primitiveConverterFor returns the built-in Converter for one of Go's
// primitive kinds, matched by shape.Type name against reflect's basic
// kinds. This is the leaf of the compiler: every object property,
// enumerable element, and dictionary key/value eventually bottoms out
// here or at a surrogate/enum/union converter.
func primitiveConverterFor(s shape.Shape) (Converter, error) {
	switch s.Type().Name {
	case "bool":
		return boolConverter{}, nil
	case "string":
		return stringConverter{}, nil
	case "int", "int8", "int16", "int32", "int64":
		return intConverter{}, nil
	case "uint", "uint8", "uint16", "uint32", "uint64", "uintptr":
		return uintConverter{}, nil
	case "float32", "float64":
		return floatConverter{}, nil
	case "":
		// byte slices arrive as a primitive shape named "" with Go
		// kind []uint8 from reflectshape's slice branch; treated as
		// binary rather than an array-of-uint8 enumerable.
		return bytesConverter{}, nil
	default:
		return nil, fmt.Errorf("convert: unrecognized primitive type %q", s.Type())
	}
}

type boolConverter struct{}

func (boolConverter) PrefersAsync() bool { return false }
func (boolConverter) Write(_ *Context, buf *msgpack.Buffer, val any) error {
	v, ok := val.(bool)
	if !ok {
		return fmt.Errorf("convert: expected bool, got %T", val)
	}
	buf.WriteBool(v)
	return nil
}
func (boolConverter) Read(_ *Context, r *msgpack.Reader) (any, error) {
	return r.ReadBool()
}

type stringConverter struct{}

func (stringConverter) PrefersAsync() bool { return false }
func (stringConverter) Write(_ *Context, buf *msgpack.Buffer, val any) error {
	v, ok := val.(string)
	if !ok {
		return fmt.Errorf("convert: expected string, got %T", val)
	}
	buf.WriteString(v)
	return nil
}
func (stringConverter) Read(_ *Context, r *msgpack.Reader) (any, error) {
	return r.ReadString()
}

type bytesConverter struct{}

func (bytesConverter) PrefersAsync() bool { return false }
func (bytesConverter) Write(_ *Context, buf *msgpack.Buffer, val any) error {
	v, ok := val.([]byte)
	if !ok {
		return fmt.Errorf("convert: expected []byte, got %T", val)
	}
	buf.WriteBinary(v)
	return nil
}
func (bytesConverter) Read(_ *Context, r *msgpack.Reader) (any, error) {
	return r.ReadBinary()
}

// intConverter writes any reflect signed-integer kind as the
// narrowest msgpack integer form and reads back into an int64. The
// object converter keeps that int64 as is; enumerable and dictionary
// shapes from reflectshape convert it to the element type via reflect
// in their Build methods.
type intConverter struct{}

func (intConverter) PrefersAsync() bool { return false }
func (intConverter) Write(_ *Context, buf *msgpack.Buffer, val any) error {
	rv := reflect.ValueOf(val)
	if !rv.CanInt() {
		return fmt.Errorf("convert: expected a signed integer, got %T", val)
	}
	buf.WriteInt(rv.Int())
	return nil
}
func (intConverter) Read(_ *Context, r *msgpack.Reader) (any, error) {
	return r.ReadI64()
}

type uintConverter struct{}

func (uintConverter) PrefersAsync() bool { return false }
func (uintConverter) Write(_ *Context, buf *msgpack.Buffer, val any) error {
	rv := reflect.ValueOf(val)
	if !rv.CanUint() {
		return fmt.Errorf("convert: expected an unsigned integer, got %T", val)
	}
	buf.WriteUint(rv.Uint())
	return nil
}
func (uintConverter) Read(_ *Context, r *msgpack.Reader) (any, error) {
	return r.ReadU64()
}

type floatConverter struct{}

func (floatConverter) PrefersAsync() bool { return false }
func (floatConverter) Write(_ *Context, buf *msgpack.Buffer, val any) error {
	rv := reflect.ValueOf(val)
	if !rv.CanFloat() {
		return fmt.Errorf("convert: expected a float, got %T", val)
	}
	if rv.Kind() == reflect.Float32 {
		buf.WriteFloat32(float32(rv.Float()))
	} else {
		buf.WriteFloat64(rv.Float())
	}
	return nil
}
func (floatConverter) Read(_ *Context, r *msgpack.Reader) (any, error) {
	return r.ReadF64()
}
