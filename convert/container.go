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

	"github.com/shapewire/msgpack"
	"github.com/shapewire/msgpack/shape"
)

// enumerableConverter writes/reads a shape.EnumerableShape as a
// msgpack array. Grounded on ion/marshal.go's list-encoder path,
// generalized from Go slices to any shape.EnumerableShape
// implementation (so a generated shape over a custom iterator type
// works identically).
type enumerableConverter struct {
	typ  shape.Type
	elem shape.EnumerableShape
	conv Converter
}

func newEnumerableConverter(reg *Registry, s shape.EnumerableShape) (Converter, error) {
	ec, err := reg.Get(s.ElementShape())
	if err != nil {
		return nil, fmt.Errorf("convert: enumerable %v element: %w", s.Type(), err)
	}
	return &enumerableConverter{typ: s.Type(), elem: s, conv: ec}, nil
}

func (e *enumerableConverter) PrefersAsync() bool { return true }

func (e *enumerableConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	next, err := cc.descend()
	if err != nil {
		return err
	}
	n := e.elem.Len(val)
	buf.WriteArrayHeader(n)
	return e.elem.Iterate(val, func(elem any) error {
		return e.conv.Write(next, buf, elem)
	})
}

func (e *enumerableConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	next, err := cc.descend()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	elems := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := e.conv.Read(next, r)
		if err != nil {
			return nil, fmt.Errorf("convert: enumerable %v element %d: %w", e.typ, i, err)
		}
		elems[i] = v
	}
	return e.elem.Build(elems)
}

// dictionaryConverter writes/reads a shape.DictionaryShape as a
// msgpack map. Non-string keys are supported; they are written with
// the key shape's own converter, matching spec.md §4.8's requirement
// that map keys are not limited to strings (unlike the object
// converter, whose property names are always string keys).
type dictionaryConverter struct {
	typ     shape.Type
	dict    shape.DictionaryShape
	keyConv Converter
	valConv Converter
}

func newDictionaryConverter(reg *Registry, s shape.DictionaryShape) (Converter, error) {
	kc, err := reg.Get(s.KeyShape())
	if err != nil {
		return nil, fmt.Errorf("convert: dictionary %v key: %w", s.Type(), err)
	}
	vc, err := reg.Get(s.ValueShape())
	if err != nil {
		return nil, fmt.Errorf("convert: dictionary %v value: %w", s.Type(), err)
	}
	return &dictionaryConverter{typ: s.Type(), dict: s, keyConv: kc, valConv: vc}, nil
}

func (d *dictionaryConverter) PrefersAsync() bool { return true }

func (d *dictionaryConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	next, err := cc.descend()
	if err != nil {
		return err
	}
	n := 0
	// Two passes: count first (dictionary iteration order is not
	// guaranteed stable across calls for Go maps, but we only need a
	// count here), then write the header and iterate once more.
	if err := d.dict.Iterate(val, func(_, _ any) error { n++; return nil }); err != nil {
		return err
	}
	buf.WriteMapHeader(n)
	return d.dict.Iterate(val, func(key, v any) error {
		if err := d.keyConv.Write(next, buf, key); err != nil {
			return fmt.Errorf("convert: dictionary %v key: %w", d.typ, err)
		}
		if err := d.valConv.Write(next, buf, v); err != nil {
			return fmt.Errorf("convert: dictionary %v value: %w", d.typ, err)
		}
		return nil
	})
}

func (d *dictionaryConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	next, err := cc.descend()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	pairs := make([]shape.KeyValue, n)
	for i := 0; i < n; i++ {
		k, err := d.keyConv.Read(next, r)
		if err != nil {
			return nil, fmt.Errorf("convert: dictionary %v key %d: %w", d.typ, i, err)
		}
		v, err := d.valConv.Read(next, r)
		if err != nil {
			return nil, fmt.Errorf("convert: dictionary %v value %d: %w", d.typ, i, err)
		}
		pairs[i] = shape.KeyValue{Key: k, Value: v}
	}
	return d.dict.Build(pairs)
}
