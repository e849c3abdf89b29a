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
	"strings"

	"github.com/shapewire/msgpack"
	"github.com/shapewire/msgpack/shape"
)

// enumConverter writes a shape.EnumShape's case name as a msgpack
// string (or the raw integer when the value has no case name) and
// reads it back by name, case-insensitively; a string that matches no
// case name is an error, and a non-string token is read as the raw
// numeric value — matching spec.md §4.9's enum-as-string converter,
// which must tolerate case renames between encode and decode sides of
// a rolling deploy. Folding is case-insensitive only where it's
// unambiguous: if two case names collide once folded (e.g. "Active"
// and "ACTIVE"), both are dropped from the folded table and matched
// by exact name only, since a folded lookup couldn't tell them apart.
type enumConverter struct {
	typ         shape.Type
	shape       shape.EnumShape
	byNameFold  map[string]shape.EnumCase
	byNameExact map[string]shape.EnumCase
}

func newEnumConverter(s shape.EnumShape) (Converter, error) {
	ec := &enumConverter{
		typ:         s.Type(),
		shape:       s,
		byNameFold:  map[string]shape.EnumCase{},
		byNameExact: map[string]shape.EnumCase{},
	}
	foldCount := map[string]int{}
	for _, c := range s.Cases() {
		ec.byNameExact[c.Name] = c
		foldCount[strings.ToLower(c.Name)]++
	}
	for _, c := range s.Cases() {
		fold := strings.ToLower(c.Name)
		if foldCount[fold] > 1 {
			continue // ambiguous once folded: exact-match only
		}
		ec.byNameFold[fold] = c
	}
	return ec, nil
}

func (e *enumConverter) PrefersAsync() bool { return false }

func (e *enumConverter) Write(_ *Context, buf *msgpack.Buffer, val any) error {
	rv := toInt64(val)
	for _, c := range e.shape.Cases() {
		if c.Value == rv {
			buf.WriteString(c.Name)
			return nil
		}
	}
	// No known case name for this value: fall back to the raw
	// integer so round-tripping an out-of-range or newly added case
	// from a newer writer doesn't fail outright.
	buf.WriteInt(rv)
	return nil
}

func (e *enumConverter) Read(_ *Context, r *msgpack.Reader) (any, error) {
	typ, result := r.Stream().TryPeekType()
	if result != msgpack.Success {
		return nil, fmt.Errorf("convert: enum %v: %w", e.typ, msgpack.ErrEndOfStream)
	}
	if typ == msgpack.StringType {
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if c, ok := e.byNameExact[name]; ok {
			return c.Value, nil
		}
		if c, ok := e.byNameFold[strings.ToLower(name)]; ok {
			return c.Value, nil
		}
		return nil, fmt.Errorf("convert: enum %v has no case named %q", e.typ, name)
	}
	v, err := r.ReadI64()
	if err != nil {
		return nil, err
	}
	return v, nil
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	default:
		return 0
	}
}
