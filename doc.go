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

// Package msgpack implements the core of a MessagePack binary codec:
// the primitive wire-format reader/writer and a streaming, non-throwing
// decoder suitable for incomplete buffers. Reflection-driven conversion
// of user types lives in the sibling msgpack/convert package; this
// package only knows about bytes and msgpack tokens.
package msgpack
