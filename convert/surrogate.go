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

// surrogateConverter encodes a value by first converting it to an
// intermediate surrogate value of a different, already-shaped type,
// and decodes by reversing that conversion. Grounded on spec.md
// §4.9's surrogate converter, used to teach the framework about types
// it has no other way to see into — the worked example in
// surrogate_uuid.go teaches it github.com/google/uuid.UUID via a
// 16-byte []byte surrogate.
type surrogateConverter struct {
	typ   shape.Type
	shape shape.SurrogateShape
	conv  Converter
}

func newSurrogateConverter(reg *Registry, s shape.SurrogateShape) (Converter, error) {
	c, err := reg.Get(s.SurrogateShape())
	if err != nil {
		return nil, fmt.Errorf("convert: surrogate %v: %w", s.Type(), err)
	}
	return &surrogateConverter{typ: s.Type(), shape: s, conv: c}, nil
}

func (s *surrogateConverter) PrefersAsync() bool { return false }

func (s *surrogateConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	surrogate, err := s.shape.ToSurrogate(val)
	if err != nil {
		return fmt.Errorf("convert: surrogate %v: converting to surrogate form: %w", s.typ, err)
	}
	return s.conv.Write(cc, buf, surrogate)
}

func (s *surrogateConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	surrogate, err := s.conv.Read(cc, r)
	if err != nil {
		return nil, err
	}
	val, err := s.shape.FromSurrogate(surrogate)
	if err != nil {
		return nil, fmt.Errorf("convert: surrogate %v: converting from surrogate form: %w", s.typ, err)
	}
	return val, nil
}
