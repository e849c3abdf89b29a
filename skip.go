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

// DefaultMaxDepth is the default recursion budget for TrySkip-based
// operations, per spec.md §6 ("small constant (e.g., 64)").
const DefaultMaxDepth = 64

// SkipToIndex advances past the first n array elements of the array
// whose header has already been consumed from r, leaving the cursor
// positioned at element n. It does not know the array's length and
// skips n values regardless, so an n beyond the length skips past the
// array's end. It is a building block for partial deserialization
// (spec.md §4.6's skip_to_index_value_async).
func SkipToIndex(r *Reader, n int) error {
	for i := 0; i < n; i++ {
		if err := r.Skip(DefaultMaxDepth); err != nil {
			return err
		}
	}
	return nil
}

// SkipToProperty advances past map entries, invoking match(key) for
// each decoded key; it stops (leaving the cursor positioned at the
// matching value) the first time match returns true, or returns
// ErrMissingProperty if the map is exhausted without a match. The
// header's pair count must already have been consumed from r.
func SkipToProperty(r *Reader, pairCount int, match func(key string) (bool, error)) error {
	for i := 0; i < pairCount; i++ {
		key, err := r.ReadString()
		if err != nil {
			return err
		}
		ok, err := match(key)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := r.Skip(DefaultMaxDepth); err != nil {
			return err
		}
	}
	return ErrMissingProperty
}
