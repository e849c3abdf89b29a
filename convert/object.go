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

// objectConverter encodes a shape.ObjectShape as either:
//
//   - a msgpack map keyed by the property's declared *index* (not its
//     name) holding only the present properties, or
//   - a msgpack array, truncated after the last present property,
//     with any absent property before that point written as nil,
//
// per spec.md §4.7's hybrid size-estimator: both forms are built and
// whichever serializes smaller wins, ties favor the array form (it
// carries no key bytes at all).
//
// Grounded on ion/marshal.go's compileStruct, which picks a struct's
// wire representation once at compile time; here the choice is made
// per value, since omitempty properties make either form's cost
// value-dependent in a way compile-time analysis can't resolve.
type objectConverter struct {
	typ   shape.Type
	props []objectProperty
}

type objectProperty struct {
	shape.PropertyShape
	conv Converter
}

func newObjectConverter(reg *Registry, s shape.ObjectShape) (Converter, error) {
	props := s.Properties()
	oc := &objectConverter{typ: s.Type(), props: make([]objectProperty, len(props))}
	for i, p := range props {
		c, err := reg.Get(p.ValueShape())
		if err != nil {
			return nil, fmt.Errorf("convert: object %v property %q: %w", s.Type(), p.Name(), err)
		}
		oc.props[i] = objectProperty{PropertyShape: p, conv: c}
	}
	return oc, nil
}

func (o *objectConverter) PrefersAsync() bool { return len(o.props) > 8 }

// presentSlot is one property that is actually present on val (i.e.
// not omitted by OmitEmpty), paired with its declared index.
type presentSlot struct {
	index int
	prop  objectProperty
	v     any
}

func (o *objectConverter) present(val any) []presentSlot {
	out := make([]presentSlot, 0, len(o.props))
	for i, p := range o.props {
		v, ok := p.Get(val)
		if !ok {
			continue
		}
		out = append(out, presentSlot{index: i, prop: p, v: v})
	}
	return out
}

func (o *objectConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	next, err := cc.descend()
	if err != nil {
		return err
	}

	present := o.present(val)
	lastPresent := -1
	if len(present) > 0 {
		lastPresent = present[len(present)-1].index
	}

	var mapBuf, arrBuf msgpack.Buffer
	if err := o.writeAsMap(next, &mapBuf, present); err != nil {
		return err
	}
	if err := o.writeAsArray(next, &arrBuf, lastPresent+1, val); err != nil {
		return err
	}

	// Map size ~= sum(encoded_length(index) + value_length); array
	// size pays one byte per nil-padded gap instead. Ties favor the
	// array form.
	if len(arrBuf.Bytes()) <= len(mapBuf.Bytes()) {
		_, err := buf.Write(arrBuf.Bytes())
		return err
	}
	_, err = buf.Write(mapBuf.Bytes())
	return err
}

// writeAsMap writes the integer-positional-key map form: one entry
// per present property, keyed by its declared index rather than its
// name.
func (o *objectConverter) writeAsMap(cc *Context, buf *msgpack.Buffer, present []presentSlot) error {
	buf.WriteMapHeader(len(present))
	for _, slot := range present {
		buf.WriteInt(int64(slot.index))
		if err := slot.prop.conv.Write(cc, buf, slot.v); err != nil {
			return fmt.Errorf("convert: writing property %q: %w", slot.prop.Name(), err)
		}
	}
	return nil
}

// writeAsArray writes the truncated-array form: n elements in
// declaration order, with any property absent from val written as
// nil rather than skipped, since a position can't be omitted without
// losing the index of every property after it.
func (o *objectConverter) writeAsArray(cc *Context, buf *msgpack.Buffer, n int, val any) error {
	buf.WriteArrayHeader(n)
	for i := 0; i < n; i++ {
		p := o.props[i]
		v, ok := p.Get(val)
		if !ok {
			buf.WriteNil()
			continue
		}
		if err := p.conv.Write(cc, buf, v); err != nil {
			return fmt.Errorf("convert: writing property %q: %w", p.Name(), err)
		}
	}
	return nil
}

func (o *objectConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	next, err := cc.descend()
	if err != nil {
		return nil, err
	}

	typ, peekResult := r.Stream().TryPeekType()
	if peekResult != msgpack.Success {
		return nil, fmt.Errorf("convert: object %v: %w", o.typ, msgpack.ErrEndOfStream)
	}
	if typ == msgpack.NilType {
		if err := r.ReadNil(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	result := make(map[string]any, len(o.props))

	if typ == msgpack.ArrayType {
		n, err := r.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		if n > len(o.props) {
			return nil, fmt.Errorf("convert: object %v array has %d elements, declares only %d properties", o.typ, n, len(o.props))
		}
		for i := 0; i < n; i++ {
			elemTyp, peekRes := r.Stream().TryPeekType()
			if peekRes != msgpack.Success {
				return nil, fmt.Errorf("convert: object %v element %d: %w", o.typ, i, msgpack.ErrEndOfStream)
			}
			if elemTyp == msgpack.NilType {
				if err := r.ReadNil(); err != nil {
					return nil, err
				}
				continue // a nil-padded slot means this property is absent
			}
			v, err := o.props[i].conv.Read(next, r)
			if err != nil {
				return nil, fmt.Errorf("convert: reading property %q: %w", o.props[i].Name(), err)
			}
			result[o.props[i].Name()] = v
		}
		return result, nil
	}

	n, err := r.ReadMapHeader()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		index, err := r.ReadI64()
		if err != nil {
			return nil, err
		}
		if index < 0 || int(index) >= len(o.props) {
			if err := r.Skip(next.depth); err != nil {
				return nil, err
			}
			continue
		}
		p := o.props[index]
		v, err := p.conv.Read(next, r)
		if err != nil {
			return nil, fmt.Errorf("convert: reading property %q: %w", p.Name(), err)
		}
		result[p.Name()] = v
	}
	return result, nil
}
