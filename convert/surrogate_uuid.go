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

	"github.com/google/uuid"
	"github.com/shapewire/msgpack/shape"
)

// uuidSurrogateShape teaches the converter framework
// github.com/google/uuid.UUID by surrogating it through its 16-byte
// array form, encoded as msgpack binary. This is the worked example
// spec.md §4.9 calls for: a type the framework has no other way to
// see into, taught entirely through the SurrogateShape seam rather
// than a hand-written converter.
type uuidSurrogateShape struct{}

// UUIDShape is the shape.SurrogateShape for uuid.UUID. Callers
// building a shape tree that includes a uuid.UUID field should use
// this as that field's ValueShape.
var UUIDShape shape.SurrogateShape = uuidSurrogateShape{}

func (uuidSurrogateShape) Kind() shape.Kind { return shape.SurrogateKind }
func (uuidSurrogateShape) Type() shape.Type {
	return shape.Type{Name: "UUID", PackagePath: "github.com/google/uuid"}
}

func (uuidSurrogateShape) SurrogateShape() shape.Shape {
	return byteArrayShape{n: 16}
}

func (uuidSurrogateShape) ToSurrogate(obj any) (any, error) {
	id, ok := obj.(uuid.UUID)
	if !ok {
		return nil, fmt.Errorf("convert: expected uuid.UUID, got %T", obj)
	}
	b := id // [16]byte
	return b[:], nil
}

func (uuidSurrogateShape) FromSurrogate(surrogate any) (any, error) {
	b, ok := surrogate.([]byte)
	if !ok {
		return nil, fmt.Errorf("convert: expected []byte surrogate, got %T", surrogate)
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("convert: invalid UUID bytes: %w", err)
	}
	return id, nil
}

// byteArrayShape is a minimal fixed-size-binary primitive shape used
// only as UUIDShape's surrogate target; it always compiles to
// bytesConverter regardless of n, since msgpack binary is
// length-prefixed rather than fixed-width on the wire, and
// FromSurrogate validates the decoded length.
type byteArrayShape struct{ n int }

func (byteArrayShape) Kind() shape.Kind { return shape.PrimitiveKind }
func (byteArrayShape) Type() shape.Type { return shape.Type{Name: "", PackagePath: ""} }
