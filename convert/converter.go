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

// Package convert is the reflection-driven converter framework
// described in spec.md §4.6-§4.9: given a shape.Shape, it compiles
// and caches a Converter that can write/read values of that shape's
// type to and from a msgpack.Buffer/msgpack.Reader. Grounded on
// ion/marshal.go's compileEncoder: a Registry (sync.Map-backed, with
// a placeholder-then-resolve step to break recursive-type cycles)
// does the compiling, and the individual converter kinds
// (object.go, container.go, enum.go, union.go, surrogate.go) each
// handle one or two shape.Kinds. multidim.go and dynamic.go hold
// converters that are built directly rather than from a shape.Kind.
package convert

import (
	"context"

	"github.com/shapewire/msgpack"
)

// Converter reads and writes values of one Go type to and from the
// msgpack wire format. Compiled converters are cached by the
// Registry and are safe for concurrent use.
type Converter interface {
	// Write appends val's encoding to buf. val's concrete type must
	// match the type this converter was compiled for.
	Write(cc *Context, buf *msgpack.Buffer, val any) error
	// Read decodes one value from r.
	Read(cc *Context, r *msgpack.Reader) (any, error)
	// PrefersAsync is a hint for callers choosing between a
	// synchronous and an mpasync-driven path — true for container
	// converters over large or unbounded sequences, false for
	// primitives and small fixed-shape objects. Write and Read
	// themselves always run to completion on the given Buffer or
	// Reader; they do not pause for a pump to refill or flush.
	PrefersAsync() bool
}

// DefaultMaxDepth bounds recursive converter descent, mirroring
// msgpack.DefaultMaxDepth for the streaming skip helpers.
const DefaultMaxDepth = 64

// Context threads the per-call cancellation signal, registry, and
// remaining recursion budget through a converter tree. A zero
// Context is invalid; use NewContext.
type Context struct {
	Ctx      context.Context
	Registry *Registry
	depth    int
}

// NewContext creates a Context bound to ctx and reg, with the default
// recursion depth budget.
func NewContext(ctx context.Context, reg *Registry) *Context {
	return &Context{Ctx: ctx, Registry: reg, depth: DefaultMaxDepth}
}

// descend returns a Context with one less unit of recursion budget,
// or msgpack.ErrDepthExceeded if the budget is already exhausted.
// Object, container, union, and multidim converters must call this
// before recursing into a nested converter.
func (cc *Context) descend() (*Context, error) {
	if cc.depth <= 0 {
		return nil, msgpack.ErrDepthExceeded
	}
	return &Context{Ctx: cc.Ctx, Registry: cc.Registry, depth: cc.depth - 1}, nil
}

// WrapWithReferencePreservation would wrap c so that repeated
// references to the same object instance are encoded once and
// backreferenced thereafter. Reference preservation across an
// acyclic, streaming wire format is out of scope for this package
// (spec.md Non-goals); this seam exists so registry construction
// code has a stable place to opt a type into it later without an
// API break, and today always returns c unchanged.
func WrapWithReferencePreservation(c Converter) Converter {
	return c
}
