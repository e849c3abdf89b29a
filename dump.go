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

package msgpack

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump decodes the next complete value from r into a human-readable
// JSON-ish string, for debugging. It is a debug facility living
// alongside the codec, grounded on ion.ToJSON — not a general-purpose
// JSON encoder and not part of the facade.
func Dump(r *Reader) (string, error) {
	var sb strings.Builder
	if err := dumpValue(r, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func dumpValue(r *Reader, sb *strings.Builder) error {
	typ, res := r.s.TryPeekType()
	if res != Success {
		return ErrEndOfStream
	}
	switch typ {
	case NilType:
		sb.WriteString("null")
		return r.ReadNil()
	case BoolType:
		v, err := r.ReadBool()
		if err != nil {
			return err
		}
		sb.WriteString(strconv.FormatBool(v))
		return nil
	case IntType:
		v, err := r.ReadI64()
		if err != nil {
			return err
		}
		sb.WriteString(strconv.FormatInt(v, 10))
		return nil
	case UintType:
		u, err := r.ReadU64()
		if err != nil {
			return err
		}
		sb.WriteString(strconv.FormatUint(u, 10))
		return nil
	case FloatType:
		c, _ := r.s.TryPeekCode()
		if c == codeFloat32 {
			v, err := r.ReadF32()
			if err != nil {
				return err
			}
			sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
			return nil
		}
		v, err := r.ReadF64()
		if err != nil {
			return err
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	case StringType:
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, "%q", v)
		return nil
	case BinaryType:
		v, err := r.ReadBinary()
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, "<%d bytes>", len(v))
		return nil
	case ArrayType:
		n, err := r.ReadArrayHeader()
		if err != nil {
			return err
		}
		sb.WriteByte('[')
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := dumpValue(r, sb); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	case MapType:
		n, err := r.ReadMapHeader()
		if err != nil {
			return err
		}
		sb.WriteByte('{')
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := dumpValue(r, sb); err != nil {
				return err
			}
			sb.WriteString(": ")
			if err := dumpValue(r, sb); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
		return nil
	case ExtensionType:
		et, n, err := r.ReadExtHeader()
		if err != nil {
			return err
		}
		body, err := r.ReadRaw(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, "ext(%d, %d bytes: %x)", et, len(body), body)
		return nil
	default:
		return &TokenMismatchError{Want: "any value"}
	}
}
