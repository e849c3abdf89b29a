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
	"sync"

	"github.com/shapewire/msgpack"
	"github.com/shapewire/msgpack/shape"
)

// Registry compiles and caches Converters for shape.Shape values,
// keyed by shape.Type. Grounded on ion/marshal.go's compileEncoder,
// which memoizes compiled encoders in a sync.Map and breaks
// recursive-type cycles (e.g. a linked-list node referencing its own
// type) by publishing a placeholder *lazyConverter before compiling
// a type's fields, then resolving it once compilation finishes.
type Registry struct {
	cache sync.Map // shape.Type -> Converter (possibly a *lazyConverter mid-compile)
	mu    sync.Mutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// lazyConverter is published into the cache before a type's
// converter is fully compiled, so a recursive reference to the same
// type (discovered while compiling, e.g. a tree node's child field)
// resolves to a stable indirection instead of recursing into the
// compiler again. Once compilation finishes, resolve installs the
// real converter, and every call through the lazyConverter forwards
// to it from then on.
type lazyConverter struct {
	mu       sync.RWMutex
	resolved Converter
}

func (l *lazyConverter) resolve(c Converter) {
	l.mu.Lock()
	l.resolved = c
	l.mu.Unlock()
}

func (l *lazyConverter) get() Converter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resolved
}

func (l *lazyConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	c := l.get()
	if c == nil {
		return fmt.Errorf("convert: cyclic type used before its converter finished compiling")
	}
	return c.Write(cc, buf, val)
}

func (l *lazyConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	c := l.get()
	if c == nil {
		return nil, fmt.Errorf("convert: cyclic type used before its converter finished compiling")
	}
	return c.Read(cc, r)
}

func (l *lazyConverter) PrefersAsync() bool {
	c := l.get()
	return c != nil && c.PrefersAsync()
}

// Get returns the compiled Converter for s, compiling and caching it
// on first use. Concurrent calls for the same shape.Type compile at
// most once; concurrent calls for distinct types proceed in
// parallel.
func (reg *Registry) Get(s shape.Shape) (Converter, error) {
	key := s.Type()
	if v, ok := reg.cache.Load(key); ok {
		return v.(Converter), nil
	}

	reg.mu.Lock()
	if v, ok := reg.cache.Load(key); ok {
		reg.mu.Unlock()
		return v.(Converter), nil
	}
	placeholder := &lazyConverter{}
	reg.cache.Store(key, placeholder)
	reg.mu.Unlock()

	c, err := compile(reg, s)
	if err != nil {
		reg.cache.Delete(key)
		return nil, err
	}
	placeholder.resolve(c)
	reg.cache.Store(key, c)
	return c, nil
}

// compile dispatches on s.Kind() to build an uncached Converter. The
// Registry is passed through so nested shapes (object properties,
// enumerable elements, dictionary keys/values, union cases) can
// recursively call reg.Get.
func compile(reg *Registry, s shape.Shape) (Converter, error) {
	switch s.Kind() {
	case shape.PrimitiveKind:
		return primitiveConverterFor(s)
	case shape.ObjectKind:
		return newObjectConverter(reg, s.(shape.ObjectShape))
	case shape.EnumerableKind:
		return newEnumerableConverter(reg, s.(shape.EnumerableShape))
	case shape.DictionaryKind:
		return newDictionaryConverter(reg, s.(shape.DictionaryShape))
	case shape.EnumKind:
		return newEnumConverter(s.(shape.EnumShape))
	case shape.UnionKind:
		return newUnionConverter(reg, s.(shape.UnionShape))
	case shape.SurrogateKind:
		return newSurrogateConverter(reg, s.(shape.SurrogateShape))
	default:
		return nil, fmt.Errorf("convert: no converter for shape kind %v (type %v)", s.Kind(), s.Type())
	}
}
