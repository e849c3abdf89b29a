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

// Package mpsimd implements the element-parallel bulk codec for
// homogeneous spans of primitives (bool, fixed-width signed/unsigned
// integers, IEEE-754 floats) described in spec.md §4.5. It is
// grounded on ion/zion/zll's int8vec.go and numericvec.go: a
// width-classification hot path handles the common case (every lane
// narrow enough to need no extra payload bytes) with a single
// contiguous pass, and a scalar per-lane fallback handles the mixed
// case. All routines are portable Go loops with no hardware dispatch:
// endian.go probes golang.org/x/sys/cpu feature flags, but no routine
// consults the result (no assembly kernels are included — see
// DESIGN.md).
package mpsimd
