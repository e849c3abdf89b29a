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

package mpsimd

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// hostLittleEndian reports whether the host is little-endian. msgpack
// is always big-endian on the wire; the encoders in bulk.go do not
// consult this value, since msgpack.Buffer writes big-endian payloads
// on any host.
var hostLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// wideLaneCapable reports whether the host advertises a SIMD
// instruction set wide enough to make batched lane classification
// worthwhile. Nothing in this package calls it yet: every encode and
// decode routine in bulk.go runs the same portable Go loop on every
// host.
func wideLaneCapable() bool {
	return cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}
