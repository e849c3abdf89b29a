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
	"math"

	"github.com/shapewire/msgpack"
)

// DynamicConverter decodes an arbitrary, untyped msgpack value into
// Go's natural dynamic representation (nil, bool, int64, uint64,
// float64, string, []byte, []any, map[string]any or map[any]any, and
// ExtensionValue), and encodes the same Go types except ExtensionValue
// back to the wire. It is used when a shape isn't
// known ahead of time — e.g. a catch-all "extension data" property, or
// the top-level entry point for tooling that just wants to inspect a
// message. Grounded on spec.md §4.9's untyped/dynamic converter and
// its scenario 6: a decoded map stays map[string]any while every key
// is a string, and the first non-string key turns the whole map into
// map[any]any. Keys are never converted to strings, and non-negative
// integer keys are stored as int64 (see canonicalizeIntKey).
type DynamicConverter struct{}

func (DynamicConverter) PrefersAsync() bool { return true }

func (DynamicConverter) Write(cc *Context, buf *msgpack.Buffer, val any) error {
	next, err := cc.descend()
	if err != nil {
		return err
	}
	switch v := val.(type) {
	case nil:
		buf.WriteNil()
	case bool:
		buf.WriteBool(v)
	case int:
		buf.WriteInt(int64(v))
	case int64:
		buf.WriteInt(v)
	case uint:
		buf.WriteUint(uint64(v))
	case uint64:
		buf.WriteUint(v)
	case float32:
		buf.WriteFloat32(v)
	case float64:
		buf.WriteFloat64(v)
	case string:
		buf.WriteString(v)
	case []byte:
		buf.WriteBinary(v)
	case []any:
		buf.WriteArrayHeader(len(v))
		for i, el := range v {
			if err := (DynamicConverter{}).Write(next, buf, el); err != nil {
				return fmt.Errorf("convert: dynamic array element %d: %w", i, err)
			}
		}
	case map[string]any:
		buf.WriteMapHeader(len(v))
		for k, el := range v {
			buf.WriteString(k)
			if err := (DynamicConverter{}).Write(next, buf, el); err != nil {
				return fmt.Errorf("convert: dynamic map value %q: %w", k, err)
			}
		}
	case map[any]any:
		buf.WriteMapHeader(len(v))
		for k, el := range v {
			if err := (DynamicConverter{}).Write(next, buf, k); err != nil {
				return fmt.Errorf("convert: dynamic map key: %w", err)
			}
			if err := (DynamicConverter{}).Write(next, buf, el); err != nil {
				return fmt.Errorf("convert: dynamic map value: %w", err)
			}
		}
	default:
		return fmt.Errorf("convert: dynamic converter cannot encode %T", val)
	}
	return nil
}

func (DynamicConverter) Read(cc *Context, r *msgpack.Reader) (any, error) {
	next, err := cc.descend()
	if err != nil {
		return nil, err
	}
	typ, result := r.Stream().TryPeekType()
	if result != msgpack.Success {
		return nil, fmt.Errorf("convert: dynamic: %w", msgpack.ErrEndOfStream)
	}
	switch typ {
	case msgpack.NilType:
		return nil, r.ReadNil()
	case msgpack.BoolType:
		return r.ReadBool()
	case msgpack.IntType:
		return r.ReadI64()
	case msgpack.UintType:
		return r.ReadU64()
	case msgpack.FloatType:
		return r.ReadF64()
	case msgpack.StringType:
		return r.ReadString()
	case msgpack.BinaryType:
		return r.ReadBinary()
	case msgpack.ArrayType:
		n, err := r.ReadArrayHeader()
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			v, err := (DynamicConverter{}).Read(next, r)
			if err != nil {
				return nil, fmt.Errorf("convert: dynamic array element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case msgpack.MapType:
		n, err := r.ReadMapHeader()
		if err != nil {
			return nil, err
		}
		// "Stretching" non-string keys: every decoded map starts as
		// map[string]any so the common case (string keys) needs no
		// conversion; the first non-string key promotes the whole
		// result to map[any]any, preserving what was already decoded.
		strKeyed := make(map[string]any, n)
		var anyKeyed map[any]any
		for i := 0; i < n; i++ {
			k, err := (DynamicConverter{}).Read(next, r)
			if err != nil {
				return nil, fmt.Errorf("convert: dynamic map key %d: %w", i, err)
			}
			k = canonicalizeIntKey(k)
			v, err := (DynamicConverter{}).Read(next, r)
			if err != nil {
				return nil, fmt.Errorf("convert: dynamic map value %d: %w", i, err)
			}
			if anyKeyed != nil {
				anyKeyed[k] = v
				continue
			}
			ks, ok := k.(string)
			if ok {
				strKeyed[ks] = v
				continue
			}
			anyKeyed = make(map[any]any, n)
			for sk, sv := range strKeyed {
				anyKeyed[sk] = sv
			}
			anyKeyed[k] = v
		}
		if anyKeyed != nil {
			return anyKeyed, nil
		}
		return strKeyed, nil
	case msgpack.ExtensionType:
		extType, payload, err := func() (int8, []byte, error) {
			et, n, res := r.Stream().TryReadExtHeader()
			if res != msgpack.Success {
				return 0, nil, fmt.Errorf("convert: dynamic: %w", msgpack.ErrEndOfStream)
			}
			body, res := r.Stream().TryReadRaw(n)
			if res != msgpack.Success {
				return 0, nil, fmt.Errorf("convert: dynamic: %w", msgpack.ErrEndOfStream)
			}
			return et, body, nil
		}()
		if err != nil {
			return nil, err
		}
		return ExtensionValue{Type: extType, Data: payload}, nil
	default:
		return nil, fmt.Errorf("convert: dynamic: unrecognized wire type %v", typ)
	}
}

// canonicalizeIntKey normalizes a decoded map key so that integer keys
// round-trip to a single Go type regardless of which wire code family
// produced them. A non-negative value can arrive either as int64 (a
// fixint or an explicit signed-width code) or as uint64 (an explicit
// unsigned-width code); without this, map[any]any lookups would be
// sensitive to the writer's choice of encoding, which the spec's
// integer-key stretching scenario rules out ("looking up the key by
// signed-int 1 must return the value, despite the signed/unsigned type
// mismatch"). uint64 values beyond int64's range have no signed
// equivalent and pass through unchanged.
func canonicalizeIntKey(k any) any {
	u, ok := k.(uint64)
	if !ok || u > math.MaxInt64 {
		return k
	}
	return int64(u)
}

// ExtensionValue is the dynamic representation of a raw msgpack
// extension value whose type isn't otherwise recognized (e.g. not the
// reserved timestamp type, which msgpack.Reader.ReadTimestamp decodes
// directly).
type ExtensionValue struct {
	Type int8
	Data []byte
}
