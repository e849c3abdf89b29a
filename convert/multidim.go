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
)

// MultiDimConverter encodes a rectangular multi-dimensional array
// (e.g. Go's [][]T used as a fixed-rank matrix, or a flat backing
// slice paired with a dimensions vector) as the two-element wire form
// `[[dim0, dim1, ..., dimN], [flat_elements...]]`: an array whose
// first element is the dimensions vector and whose second element is
// a single flat array of all elements in row-major order, rather than
// nesting one array level per rank. It is built directly against a
// flattened representation rather than through shape.Shape, since Go
// has no built-in rectangular-array type for a shape to describe
// generically.
type MultiDimConverter struct {
	Rank int
	Elem Converter
}

// NewMultiDimConverter builds a converter for rank-dimensional
// rectangular arrays of a type whose own Converter is elem. rank must
// be >= 1; rank 1 still uses the two-element wire form, with a
// one-element dimensions vector.
func NewMultiDimConverter(rank int, elem Converter) (*MultiDimConverter, error) {
	if rank < 1 {
		return nil, fmt.Errorf("convert: multi-dim rank must be >= 1, got %d", rank)
	}
	return &MultiDimConverter{Rank: rank, Elem: elem}, nil
}

func (m *MultiDimConverter) PrefersAsync() bool { return true }

// Write expects val as a *MultiDimValue, since the generic Converter
// interface carries only (cc, buf, val) and a flat slice alone
// doesn't carry its own shape.
func (m *MultiDimConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	mv, ok := val.(*MultiDimValue)
	if !ok {
		return fmt.Errorf("convert: multi-dim converter requires *MultiDimValue, got %T", val)
	}
	if len(mv.Dims) != m.Rank {
		return fmt.Errorf("convert: multi-dim converter rank %d does not match value rank %d", m.Rank, len(mv.Dims))
	}
	want := 1
	for _, d := range mv.Dims {
		want *= d
	}
	if len(mv.Flat) != want {
		return fmt.Errorf("convert: multi-dim converter dims %v require %d flat elements, got %d", mv.Dims, want, len(mv.Flat))
	}
	next, err := cc.descend()
	if err != nil {
		return err
	}

	buf.WriteArrayHeader(2)
	buf.WriteArrayHeader(len(mv.Dims))
	for _, d := range mv.Dims {
		buf.WriteInt(int64(d))
	}
	buf.WriteArrayHeader(len(mv.Flat))
	for i, v := range mv.Flat {
		if err := m.Elem.Write(next, buf, v); err != nil {
			return fmt.Errorf("convert: multi-dim element %d: %w", i, err)
		}
	}
	return nil
}

func (m *MultiDimConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	next, err := cc.descend()
	if err != nil {
		return nil, err
	}

	outer, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if outer != 2 {
		return nil, fmt.Errorf("convert: multi-dim: expected a two-element array, got %d elements", outer)
	}

	rank, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if rank != m.Rank {
		return nil, fmt.Errorf("convert: multi-dim converter rank %d does not match wire rank %d", m.Rank, rank)
	}
	dims := make([]int, rank)
	want := 1
	for i := range dims {
		d, err := r.ReadI64()
		if err != nil {
			return nil, err
		}
		dims[i] = int(d)
		want *= int(d)
	}

	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if n != want {
		return nil, fmt.Errorf("convert: multi-dim: dims %v require %d flat elements, got %d", dims, want, n)
	}
	flat := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := m.Elem.Read(next, r)
		if err != nil {
			return nil, fmt.Errorf("convert: multi-dim element %d: %w", i, err)
		}
		flat[i] = v
	}
	return &MultiDimValue{Dims: dims, Flat: flat}, nil
}

// MultiDimValue is the flattened representation a MultiDimConverter
// reads into and expects on Write: Dims gives the extent of each
// rank (outermost first) and Flat holds len=product(Dims) elements in
// row-major order.
type MultiDimValue struct {
	Dims []int
	Flat []any
}
