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

// Format codes, per the msgpack specification. Multi-byte payloads
// that follow any of these codes are always big-endian on the wire.
const (
	fixmapMin   = 0x80
	fixmapMax   = 0x8f
	fixarrayMin = 0x90
	fixarrayMax = 0x9f
	fixstrMin   = 0xa0
	fixstrMax   = 0xbf

	codeNil     = 0xc0
	codeUnused  = 0xc1
	codeFalse   = 0xc2
	codeTrue    = 0xc3
	codeBin8    = 0xc4
	codeBin16   = 0xc5
	codeBin32   = 0xc6
	codeExt8    = 0xc7
	codeExt16   = 0xc8
	codeExt32   = 0xc9
	codeFloat32 = 0xca
	codeFloat64 = 0xcb
	codeUint8   = 0xcc
	codeUint16  = 0xcd
	codeUint32  = 0xce
	codeUint64  = 0xcf
	codeInt8    = 0xd0
	codeInt16   = 0xd1
	codeInt32   = 0xd2
	codeInt64   = 0xd3
	codeFixext1 = 0xd4
	codeFixext2 = 0xd5
	codeFixext4 = 0xd6
	codeFixext8 = 0xd7
	codeFixext16 = 0xd8
	codeStr8    = 0xd9
	codeStr16   = 0xda
	codeStr32   = 0xdb
	codeArray16 = 0xdc
	codeArray32 = 0xdd
	codeMap16   = 0xde
	codeMap32   = 0xdf

	negfixintMin = 0xe0

	// ExtTimestamp is the reserved extension type code for timestamps.
	ExtTimestamp = -1
)

// Type is the logical category of a decoded msgpack token.
type Type byte

const (
	InvalidType Type = iota
	NilType
	BoolType
	IntType
	UintType
	FloatType
	StringType
	BinaryType
	ArrayType
	MapType
	ExtensionType
)

func (t Type) String() string {
	switch t {
	case NilType:
		return "nil"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case UintType:
		return "uint"
	case FloatType:
		return "float"
	case StringType:
		return "string"
	case BinaryType:
		return "binary"
	case ArrayType:
		return "array"
	case MapType:
		return "map"
	case ExtensionType:
		return "extension"
	default:
		return "invalid"
	}
}

// codeName returns a human-readable name for a format code, used in
// TokenMismatchError messages.
func codeName(code byte) string {
	switch {
	case code <= 0x7f:
		return "positive fixint"
	case code >= negfixintMin:
		return "negative fixint"
	case code >= fixmapMin && code <= fixmapMax:
		return "fixmap"
	case code >= fixarrayMin && code <= fixarrayMax:
		return "fixarray"
	case code >= fixstrMin && code <= fixstrMax:
		return "fixstr"
	}
	switch code {
	case codeNil:
		return "nil"
	case codeFalse:
		return "false"
	case codeTrue:
		return "true"
	case codeBin8:
		return "bin8"
	case codeBin16:
		return "bin16"
	case codeBin32:
		return "bin32"
	case codeExt8:
		return "ext8"
	case codeExt16:
		return "ext16"
	case codeExt32:
		return "ext32"
	case codeFloat32:
		return "float32"
	case codeFloat64:
		return "float64"
	case codeUint8:
		return "uint8"
	case codeUint16:
		return "uint16"
	case codeUint32:
		return "uint32"
	case codeUint64:
		return "uint64"
	case codeInt8:
		return "int8"
	case codeInt16:
		return "int16"
	case codeInt32:
		return "int32"
	case codeInt64:
		return "int64"
	case codeFixext1:
		return "fixext1"
	case codeFixext2:
		return "fixext2"
	case codeFixext4:
		return "fixext4"
	case codeFixext8:
		return "fixext8"
	case codeFixext16:
		return "fixext16"
	case codeStr8:
		return "str8"
	case codeStr16:
		return "str16"
	case codeStr32:
		return "str32"
	case codeArray16:
		return "array16"
	case codeArray32:
		return "array32"
	case codeMap16:
		return "map16"
	case codeMap32:
		return "map32"
	default:
		return "unused"
	}
}

// TypeOfCode returns the logical Type for a format code, without
// examining any following payload bytes.
func TypeOfCode(code byte) Type {
	switch {
	case code <= 0x7f, code >= negfixintMin:
		return IntType
	case code >= fixmapMin && code <= fixmapMax:
		return MapType
	case code >= fixarrayMin && code <= fixarrayMax:
		return ArrayType
	case code >= fixstrMin && code <= fixstrMax:
		return StringType
	}
	switch code {
	case codeNil:
		return NilType
	case codeFalse, codeTrue:
		return BoolType
	case codeBin8, codeBin16, codeBin32:
		return BinaryType
	case codeExt8, codeExt16, codeExt32, codeFixext1, codeFixext2, codeFixext4, codeFixext8, codeFixext16:
		return ExtensionType
	case codeFloat32, codeFloat64:
		return FloatType
	case codeUint8, codeUint16, codeUint32, codeUint64:
		return UintType
	case codeInt8, codeInt16, codeInt32, codeInt64:
		return IntType
	case codeStr8, codeStr16, codeStr32:
		return StringType
	case codeArray16, codeArray32:
		return ArrayType
	case codeMap16, codeMap32:
		return MapType
	default:
		return InvalidType
	}
}
