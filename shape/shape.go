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

// Package shape defines the abstract, consumed-not-defined type
// description that msgpack/convert compiles converters from
// (spec.md §4.9). A shape is never built by this repo's own
// production code: callers supply one (typically generated, or, for
// this repo's own tests, built by shape/reflectshape) and
// msgpack/convert walks it to compile a Converter. The split keeps the
// converter-compilation logic in msgpack/convert working from shapes
// rather than from Go types; convert imports "reflect" only in its
// primitive converters, to read integer and float values of any width.
package shape

// Kind classifies the shape of a type for converter compilation
// purposes.
type Kind int

const (
	InvalidKind Kind = iota
	ObjectKind
	EnumerableKind
	DictionaryKind
	EnumKind
	UnionKind
	SurrogateKind
	PrimitiveKind
)

func (k Kind) String() string {
	switch k {
	case ObjectKind:
		return "object"
	case EnumerableKind:
		return "enumerable"
	case DictionaryKind:
		return "dictionary"
	case EnumKind:
		return "enum"
	case UnionKind:
		return "union"
	case SurrogateKind:
		return "surrogate"
	case PrimitiveKind:
		return "primitive"
	default:
		return "invalid"
	}
}

// Shape is the root interface every concrete shape satisfies. Type
// identifies the Go type the shape describes, used as the registry
// cache key in msgpack/convert.
type Shape interface {
	Kind() Kind
	Type() Type
}

// Type is a minimal, reflect-free stand-in for the identity of a Go
// type: a name and package path, sufficient for registry lookups and
// diagnostic messages without forcing every shape implementation to
// carry a reflect.Type.
type Type struct {
	Name        string
	PackagePath string
}

func (t Type) String() string {
	if t.PackagePath == "" {
		return t.Name
	}
	return t.PackagePath + "." + t.Name
}

// ObjectShape describes a type with a fixed, named set of properties
// — the object-as-map/object-as-array case (spec.md §4.7).
type ObjectShape interface {
	Shape
	Properties() []PropertyShape
	Constructor() (ConstructorShape, bool)
}

// PropertyShape describes one property of an ObjectShape: its wire
// name, its value shape, whether it may be omitted when absent or
// zero, and accessor closures the converter calls through rather
// than doing its own reflection.
type PropertyShape interface {
	Name() string
	Index() int
	ValueShape() Shape
	OmitEmpty() bool
	Get(obj any) (any, bool)
	Set(obj any, val any) error
}

// ConstructorShape describes how to build a new instance of an
// ObjectShape's type from a set of constructor parameters.
// msgpack/convert does not call it: object decoding, in either wire
// form, produces a map[string]any keyed by property name.
type ConstructorShape interface {
	Parameters() []ConstructorParameterShape
	Invoke(args []any) (any, error)
}

// ConstructorParameterShape is one parameter of a ConstructorShape,
// matched to a PropertyShape by name during decode.
type ConstructorParameterShape interface {
	Name() string
	ValueShape() Shape
}

// EnumerableShape describes a homogeneous sequence (slice, array,
// channel-backed iterator) encoded as a msgpack array.
type EnumerableShape interface {
	Shape
	ElementShape() Shape
	Len(obj any) int
	Iterate(obj any, f func(elem any) error) error
	Build(elems []any) (any, error)
}

// DictionaryShape describes a homogeneous key/value mapping encoded
// as a msgpack map.
type DictionaryShape interface {
	Shape
	KeyShape() Shape
	ValueShape() Shape
	Iterate(obj any, f func(key, val any) error) error
	Build(pairs []KeyValue) (any, error)
}

// KeyValue is one decoded pair handed to DictionaryShape.Build.
type KeyValue struct {
	Key, Value any
}

// EnumShape describes a type with a closed, named set of values,
// encoded as its case name (spec.md §4.9 enum-as-string).
type EnumShape interface {
	Shape
	Cases() []EnumCase
	ValueOf(obj any) int64
	FromValue(v int64) (any, bool)
}

// EnumCase names one value of an EnumShape.
type EnumCase struct {
	Name  string
	Value int64
}

// UnionShape describes a closed polymorphic type, tagged by alias on
// the wire (spec.md §4.9 union/polymorphic converter).
type UnionShape interface {
	Shape
	Cases() []CaseShape
	DiscriminatorOf(obj any) (CaseShape, bool)
}

// CaseShape is one member of a UnionShape: a wire alias and the shape
// used to encode/decode instances of that member. The alias is either
// a short integer or a UTF-8 string (spec.md §4.8); Alias is always
// present as a human-readable name, while IntAlias reports the
// integer form to write on the wire when the case is integer-tagged.
type CaseShape interface {
	Alias() string
	IntAlias() (int64, bool)
	ValueShape() Shape
}

// SurrogateShape describes a type that is encoded and decoded through
// an intermediate "surrogate" value of a different, already-shaped
// type — the pattern used to teach the converter framework about
// types it cannot see into directly (e.g. github.com/google/uuid.UUID
// via a 16-byte []byte surrogate; spec.md §4.9 surrogate converter).
type SurrogateShape interface {
	Shape
	SurrogateShape() Shape
	ToSurrogate(obj any) (any, error)
	FromSurrogate(surrogate any) (any, error)
}
