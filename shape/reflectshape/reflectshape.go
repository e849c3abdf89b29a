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

// Package reflectshape builds shape.Shape values from Go types via
// reflection and `msgpack:"name,omitempty"` struct tags. It exists so
// this repo's own tests can exercise msgpack/convert without a
// separate code generator; production callers of msgpack/convert are
// expected to supply their own shape.Shape, generated or hand-built.
// Grounded on ion/marshal.go's use of reflect.VisibleFields and tag
// parsing to drive its encoder compiler.
package reflectshape

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/shapewire/msgpack/shape"
)

var (
	cacheMu sync.Mutex
	cache   = map[reflect.Type]shape.Shape{}
)

// Of builds (or returns the cached) shape.Shape for the Go type of v.
// v must not be nil.
func Of(v any) shape.Shape {
	return OfType(reflect.TypeOf(v))
}

// OfType builds (or returns the cached) shape.Shape for t.
func OfType(t reflect.Type) shape.Shape {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cacheMu.Lock()
	if s, ok := cache[t]; ok {
		cacheMu.Unlock()
		return s
	}
	cacheMu.Unlock()

	s := build(t)

	cacheMu.Lock()
	cache[t] = s
	cacheMu.Unlock()
	return s
}

func build(t reflect.Type) shape.Shape {
	typ := shape.Type{Name: t.Name(), PackagePath: t.PkgPath()}
	if typ.Name == "" {
		// Unnamed types ([]int, map[string]int, ...) are identified by
		// their spelling so distinct ones get distinct registry keys.
		typ.Name = t.String()
	}

	switch t.Kind() {
	case reflect.Struct:
		return buildObject(t, typ)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return &primitiveShape{typ: shape.Type{Name: "", PackagePath: ""}}
		}
		return &enumerableShape{typ: typ, elemType: t.Elem(), goType: t}
	case reflect.Array:
		return &enumerableShape{typ: typ, elemType: t.Elem(), goType: t}
	case reflect.Map:
		return &dictionaryShape{typ: typ, keyType: t.Key(), valType: t.Elem()}
	default:
		return &primitiveShape{typ: typ}
	}
}

type primitiveShape struct{ typ shape.Type }

func (p *primitiveShape) Kind() shape.Kind { return shape.PrimitiveKind }
func (p *primitiveShape) Type() shape.Type { return p.typ }

// tagName parses a `msgpack:"name,omitempty"` struct tag, defaulting
// the wire name to the field's Go name when absent or "-" is not used
// to opt a field out entirely.
func tagName(f reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag, ok := f.Tag.Lookup("msgpack")
	if !ok {
		return f.Name, false, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "-" {
		return "", false, true
	}
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func buildObject(t reflect.Type, typ shape.Type) *objectShape {
	o := &objectShape{typ: typ, goType: t}
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name, omitEmpty, skip := tagName(f)
		if skip {
			continue
		}
		o.props = append(o.props, &propertyShape{
			name:       name,
			index:      f.Index[0],
			fieldIndex: f.Index,
			fieldType:  f.Type,
			omitEmpty:  omitEmpty,
		})
	}
	return o
}

type objectShape struct {
	typ    shape.Type
	goType reflect.Type
	props  []*propertyShape
}

func (o *objectShape) Kind() shape.Kind { return shape.ObjectKind }
func (o *objectShape) Type() shape.Type { return o.typ }

func (o *objectShape) Properties() []shape.PropertyShape {
	out := make([]shape.PropertyShape, len(o.props))
	for i, p := range o.props {
		out[i] = p
	}
	return out
}

// Constructor always reports that no constructor exists. msgpack/convert
// calls neither Constructor nor PropertyShape.Set: it decodes an
// object, in either wire form, into a map[string]any keyed by property
// name rather than into a value of the struct type.
func (o *objectShape) Constructor() (shape.ConstructorShape, bool) { return nil, false }

type propertyShape struct {
	name       string
	index      int
	fieldIndex []int
	fieldType  reflect.Type
	omitEmpty  bool
}

func (p *propertyShape) Name() string        { return p.name }
func (p *propertyShape) Index() int          { return p.index }
func (p *propertyShape) ValueShape() shape.Shape { return OfType(p.fieldType) }
func (p *propertyShape) OmitEmpty() bool     { return p.omitEmpty }

func (p *propertyShape) Get(obj any) (any, bool) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	fv := v.FieldByIndex(p.fieldIndex)
	if p.omitEmpty && fv.IsZero() {
		return nil, false
	}
	return fv.Interface(), true
}

func (p *propertyShape) Set(obj any, val any) error {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer {
		return fmt.Errorf("reflectshape: Set requires a pointer, got %T", obj)
	}
	v = v.Elem()
	fv := v.FieldByIndex(p.fieldIndex)
	if !fv.CanSet() {
		return fmt.Errorf("reflectshape: field %q is not settable", p.name)
	}
	rv := reflect.ValueOf(val)
	if val == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	if !rv.Type().AssignableTo(fv.Type()) {
		if rv.Type().ConvertibleTo(fv.Type()) {
			rv = rv.Convert(fv.Type())
		} else {
			return fmt.Errorf("reflectshape: cannot assign %s to field %q of type %s", rv.Type(), p.name, fv.Type())
		}
	}
	fv.Set(rv)
	return nil
}

type enumerableShape struct {
	typ      shape.Type
	elemType reflect.Type
	goType   reflect.Type
}

func (e *enumerableShape) Kind() shape.Kind     { return shape.EnumerableKind }
func (e *enumerableShape) Type() shape.Type     { return e.typ }
func (e *enumerableShape) ElementShape() shape.Shape { return OfType(e.elemType) }

func (e *enumerableShape) Len(obj any) int {
	return reflect.ValueOf(obj).Len()
}

func (e *enumerableShape) Iterate(obj any, f func(elem any) error) error {
	v := reflect.ValueOf(obj)
	for i := 0; i < v.Len(); i++ {
		if err := f(v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (e *enumerableShape) Build(elems []any) (any, error) {
	out := reflect.MakeSlice(reflect.SliceOf(e.elemType), len(elems), len(elems))
	for i, el := range elems {
		rv := reflect.ValueOf(el)
		if el == nil {
			continue
		}
		if !rv.Type().AssignableTo(e.elemType) && rv.Type().ConvertibleTo(e.elemType) {
			rv = rv.Convert(e.elemType)
		}
		out.Index(i).Set(rv)
	}
	return out.Interface(), nil
}

type dictionaryShape struct {
	typ      shape.Type
	keyType  reflect.Type
	valType  reflect.Type
}

func (d *dictionaryShape) Kind() shape.Kind     { return shape.DictionaryKind }
func (d *dictionaryShape) Type() shape.Type     { return d.typ }
func (d *dictionaryShape) KeyShape() shape.Shape { return OfType(d.keyType) }
func (d *dictionaryShape) ValueShape() shape.Shape { return OfType(d.valType) }

func (d *dictionaryShape) Iterate(obj any, f func(key, val any) error) error {
	v := reflect.ValueOf(obj)
	iter := v.MapRange()
	for iter.Next() {
		if err := f(iter.Key().Interface(), iter.Value().Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (d *dictionaryShape) Build(pairs []shape.KeyValue) (any, error) {
	out := reflect.MakeMapWithSize(reflect.MapOf(d.keyType, d.valType), len(pairs))
	for _, kv := range pairs {
		kvv := reflect.ValueOf(kv.Key)
		vvv := reflect.ValueOf(kv.Value)
		if kvv.Type().ConvertibleTo(d.keyType) {
			kvv = kvv.Convert(d.keyType)
		}
		if kv.Value != nil && vvv.Type().ConvertibleTo(d.valType) {
			vvv = vvv.Convert(d.valType)
		}
		out.SetMapIndex(kvv, vvv)
	}
	return out.Interface(), nil
}
