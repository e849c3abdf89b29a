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
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"
	"github.com/shapewire/msgpack"
	"github.com/shapewire/msgpack/shape"
)

// unionKey is the siphash-2-4 digest of a case's string alias, used as
// the dispatch table key instead of the alias string itself (cases
// tagged with an integer alias are dispatched by that integer
// directly, skipping the hash). Grounded on sneller's use of siphash
// (github.com/dchest/siphash) for type-identity hashing in its symbol
// tables: hashing once at compile time and comparing 8-byte keys on
// the hot decode path is cheaper than repeated string comparison
// against every case.
type unionKey uint64

// unionSeed is fixed (not random) so the same repo process always
// derives the same dispatch keys; the keys never appear on the wire
// (the alias itself is written), so there is no cross-process
// wire-compatibility concern in varying it, but determinism makes
// compiled converters reproducible for tests.
var unionSeed = [16]byte{}

func hashAlias(alias string) unionKey {
	return unionKey(siphash.Hash(
		binary.LittleEndian.Uint64(unionSeed[:8]),
		binary.LittleEndian.Uint64(unionSeed[8:]),
		[]byte(alias),
	))
}

// unionConverter writes a polymorphic value as the two-element array
// `[alias, value]`, where alias is either a short integer or a UTF-8
// string, and reads it back by peeking that array and dispatching on
// the decoded alias. Grounded on spec.md §4.8's union/polymorphic
// converter.
type unionConverter struct {
	typ          shape.Type
	byKey        map[unionKey]unionCase
	byInt        map[int64]unionCase
	discriminate func(obj any) (shape.CaseShape, bool)
}

type unionCase struct {
	alias    string
	intAlias int64
	isInt    bool
	conv     Converter
}

func newUnionConverter(reg *Registry, s shape.UnionShape) (Converter, error) {
	uc := &unionConverter{
		typ:          s.Type(),
		byKey:        map[unionKey]unionCase{},
		byInt:        map[int64]unionCase{},
		discriminate: s.DiscriminatorOf,
	}
	for _, c := range s.Cases() {
		conv, err := reg.Get(c.ValueShape())
		if err != nil {
			return nil, fmt.Errorf("convert: union %v case %q: %w", s.Type(), c.Alias(), err)
		}
		if intAlias, ok := c.IntAlias(); ok {
			if existing, collide := uc.byInt[intAlias]; collide {
				return nil, fmt.Errorf("convert: union %v: int alias %d collides with %q", s.Type(), intAlias, existing.alias)
			}
			uc.byInt[intAlias] = unionCase{alias: c.Alias(), intAlias: intAlias, isInt: true, conv: conv}
			continue
		}
		key := hashAlias(c.Alias())
		if existing, collide := uc.byKey[key]; collide {
			return nil, fmt.Errorf("convert: union %v: alias %q collides with %q under siphash dispatch", s.Type(), c.Alias(), existing.alias)
		}
		uc.byKey[key] = unionCase{alias: c.Alias(), conv: conv}
	}
	return uc, nil
}

func (u *unionConverter) PrefersAsync() bool { return false }

func (u *unionConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	next, err := cc.descend()
	if err != nil {
		return err
	}
	c, ok := u.discriminate(val)
	if !ok {
		return fmt.Errorf("convert: union %v: no case matches value of type %T", u.typ, val)
	}
	var entry unionCase
	if intAlias, isInt := c.IntAlias(); isInt {
		entry, ok = u.byInt[intAlias]
	} else {
		entry, ok = u.byKey[hashAlias(c.Alias())]
	}
	if !ok {
		return fmt.Errorf("convert: union %v: case %q not in compiled dispatch table", u.typ, c.Alias())
	}
	buf.WriteArrayHeader(2)
	if entry.isInt {
		buf.WriteInt(entry.intAlias)
	} else {
		buf.WriteString(entry.alias)
	}
	return entry.conv.Write(next, buf, val)
}

func (u *unionConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	next, err := cc.descend()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	if n != 2 {
		return nil, fmt.Errorf("convert: union %v: expected a two-element array, got %d elements", u.typ, n)
	}

	aliasTyp, peekResult := r.Stream().TryPeekType()
	if peekResult != msgpack.Success {
		return nil, fmt.Errorf("convert: union %v: %w", u.typ, msgpack.ErrEndOfStream)
	}

	var entry unionCase
	var ok bool
	var aliasDesc any
	switch aliasTyp {
	case msgpack.StringType:
		alias, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		aliasDesc = alias
		entry, ok = u.byKey[hashAlias(alias)]
	case msgpack.IntType, msgpack.UintType:
		var intAlias int64
		if aliasTyp == msgpack.UintType {
			u64, err := r.ReadU64()
			if err != nil {
				return nil, err
			}
			intAlias = int64(u64)
		} else {
			intAlias, err = r.ReadI64()
			if err != nil {
				return nil, err
			}
		}
		aliasDesc = intAlias
		entry, ok = u.byInt[intAlias]
	default:
		return nil, fmt.Errorf("convert: union %v: alias must be a string or integer, got %v", u.typ, aliasTyp)
	}
	if !ok {
		return nil, fmt.Errorf("convert: union %v: unknown case alias %v", u.typ, aliasDesc)
	}
	return entry.conv.Read(next, r)
}
