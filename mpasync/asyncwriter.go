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
	"context"
	"io"

	"github.com/shapewire/msgpack"
)

// FlushThreshold is the default number of uncommitted bytes above
// which FlushIfAppropriate actually flushes. Converters writing long
// sequences should periodically call FlushIfAppropriate between
// element writes rather than after every one.
const FlushThreshold = 32 * 1024

// AsyncWriter is the write-side analog of AsyncReader: it owns a sink
// and a cached scratch Buffer, and hands out a synchronous
// msgpack.Writer (= msgpack.Buffer) under the same single-checkout
// discipline. Grounded on ion.JSONWriter's buffered-flush pattern,
// generalized to the explicit create/return/flush contract spec.md
// §4.4 describes.
type AsyncWriter struct {
	sink   io.Writer
	buf    msgpack.Buffer
	checkedOut bool
}

// NewAsyncWriter creates an AsyncWriter over sink.
func NewAsyncWriter(sink io.Writer) *AsyncWriter {
	return &AsyncWriter{sink: sink}
}

// CreateWriter hands out the scratch Buffer for a bounded synchronous
// write. Only one writer may be checked out at a time.
func (a *AsyncWriter) CreateWriter() (*msgpack.Writer, error) {
	if a.checkedOut {
		return nil, ErrAlreadyCheckedOut
	}
	a.checkedOut = true
	return &a.buf, nil
}

// ReturnWriter absorbs the checked-out writer's uncommitted bytes
// (a no-op here, since it is the same Buffer) and clears the
// checked-out flag.
func (a *AsyncWriter) ReturnWriter(w *msgpack.Writer) error {
	if !a.checkedOut {
		return ErrNotCheckedOut
	}
	a.checkedOut = false
	return nil
}

// FlushIfAppropriate flushes the scratch buffer to the sink if its
// uncommitted byte count has crossed FlushThreshold. Callers
// structure long writes as: CreateWriter, write a bounded chunk,
// ReturnWriter, FlushIfAppropriate, repeat.
func (a *AsyncWriter) FlushIfAppropriate(ctx context.Context) error {
	if a.buf.UncommittedBytes() < FlushThreshold {
		return nil
	}
	return a.Flush(ctx)
}

// Flush unconditionally writes the scratch buffer to the sink.
func (a *AsyncWriter) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.buf.Flush(a.sink)
}
