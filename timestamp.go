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
	"encoding/binary"
	"fmt"
	"time"
)

// WriteTimestamp writes t as the reserved extension type −1, choosing
// the narrowest of the three msgpack timestamp payload shapes (32-bit
// seconds-only, 64-bit nanosec+seconds, or 96-bit nanosec+int64
// seconds), grounded on ion.Buffer.WriteTime's own
// pick-the-narrowest-representation approach.
func (b *Buffer) WriteTimestamp(t time.Time) {
	sec := t.Unix()
	nsec := int64(t.Nanosecond())
	switch {
	case nsec == 0 && sec >= 0 && sec <= 0xffffffff:
		b.WriteExtHeader(ExtTimestamp, 4)
		s := b.GetSpan(4)
		binary.BigEndian.PutUint32(s, uint32(sec))
		b.Advance(4)
	case sec >= 0 && sec < (1<<34):
		b.WriteExtHeader(ExtTimestamp, 8)
		s := b.GetSpan(8)
		v := (uint64(nsec) << 34) | uint64(sec)
		binary.BigEndian.PutUint64(s, v)
		b.Advance(8)
	default:
		b.WriteExtHeader(ExtTimestamp, 12)
		s := b.GetSpan(12)
		binary.BigEndian.PutUint32(s, uint32(nsec))
		binary.BigEndian.PutUint64(s[4:], uint64(sec))
		b.Advance(12)
	}
}

// ReadTimestamp reads a timestamp extension value previously written
// by WriteTimestamp (or any spec-conformant 4/8/12-byte timestamp
// payload) from a Reader positioned at an extension header.
func (r *Reader) ReadTimestamp() (time.Time, error) {
	et, n, err := r.ReadExtHeader()
	if err != nil {
		return time.Time{}, err
	}
	if et != ExtTimestamp {
		return time.Time{}, fmt.Errorf("msgpack: extension type %d is not a timestamp", et)
	}
	body, err := r.ReadRaw(n)
	if err != nil {
		return time.Time{}, err
	}
	switch n {
	case 4:
		sec := binary.BigEndian.Uint32(body)
		return time.Unix(int64(sec), 0).UTC(), nil
	case 8:
		v := binary.BigEndian.Uint64(body)
		nsec := v >> 34
		sec := v & 0x3ffffffff
		return time.Unix(int64(sec), int64(nsec)).UTC(), nil
	case 12:
		nsec := binary.BigEndian.Uint32(body)
		sec := binary.BigEndian.Uint64(body[4:])
		return time.Unix(int64(sec), int64(nsec)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("msgpack: invalid timestamp payload length %d", n)
	}
}
