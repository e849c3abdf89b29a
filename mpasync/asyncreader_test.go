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

package mpasync

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/shapewire/msgpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncReaderBuffersOneStructureAtATime(t *testing.T) {
	var b msgpack.Buffer
	b.WriteArrayHeader(2)
	b.WriteUint(1)
	b.WriteUint(2)
	b.WriteString("after")

	full := b.Bytes()
	// feed the source in 1-byte dribbles to force multiple refills
	src := &slowReader{data: full}
	ar := NewAsyncReader(src)

	ctx := context.Background()
	require.NoError(t, ar.BufferNextStructure(ctx))

	r, err := ar.CheckoutReader()
	require.NoError(t, err)

	_, err = ar.CheckoutReader()
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)

	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	v1, err := r.ReadU64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, v1)
	v2, err := r.ReadU64()
	require.NoError(t, err)
	assert.EqualValues(t, 2, v2)

	require.NoError(t, ar.ReturnReader(r))

	require.NoError(t, ar.BufferNextStructure(ctx))
	r2, err := ar.CheckoutReader()
	require.NoError(t, err)
	s, err := r2.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "after", s)
	require.NoError(t, ar.ReturnReader(r2))
}

func TestAsyncWriterFlushThreshold(t *testing.T) {
	var out bytes.Buffer
	aw := NewAsyncWriter(&out)
	ctx := context.Background()

	w, err := aw.CreateWriter()
	require.NoError(t, err)
	w.WriteString("hello")
	require.NoError(t, aw.ReturnWriter(w))

	require.NoError(t, aw.FlushIfAppropriate(ctx))
	assert.Equal(t, 0, out.Len(), "below threshold should not flush yet")

	require.NoError(t, aw.Flush(ctx))
	assert.True(t, out.Len() > 0)
}

// slowReader returns at most one byte per Read call, to exercise
// AsyncReader's multi-refill path.
type slowReader struct {
	data []byte
}

func (s *slowReader) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p[:1], s.data[:1])
	s.data = s.data[1:]
	return n, nil
}
