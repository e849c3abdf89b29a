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

// Package mpasync adapts the synchronous msgpack.Stream/msgpack.Buffer
// pair to a pump-driven source/sink, so that long-running
// (de)serialization can suspend at explicit points instead of blocking
// a goroutine on I/O. It is grounded on ion.Decoder's bufio.Reader
// refill loop and ion.JSONWriter's chunked-flush writer, generalized
// to the explicit checkout/return discipline spec.md §4.4 requires.
package mpasync

import (
	"context"
	"errors"
	"io"

	"github.com/shapewire/msgpack"
)

// ErrAlreadyCheckedOut is an invariant violation: at most one
// sub-reader (or sub-writer) may be checked out at a time (spec.md
// §4.4, §5).
var ErrAlreadyCheckedOut = errors.New("mpasync: a reader is already checked out")

// ErrNotCheckedOut is returned by ReturnReader when there is nothing
// to return.
var ErrNotCheckedOut = errors.New("mpasync: no reader is checked out")

// AsyncReader owns a pull-style byte source and a cached Stream
// window. Exactly one synchronous msgpack.Reader (or the underlying
// msgpack.Stream itself, for streaming-style access) may be checked
// out at a time; its cursor is committed back to the cached window on
// return.
type AsyncReader struct {
	src     io.Reader
	stream  *msgpack.Stream
	scratch []byte

	checkedOut bool
}

// NewAsyncReader creates an AsyncReader pumping from src.
func NewAsyncReader(src io.Reader) *AsyncReader {
	return &AsyncReader{
		src:     src,
		stream:  msgpack.NewStream(nil),
		scratch: make([]byte, 32*1024),
	}
}

// refill reads one chunk from src into the cached window. Any bytes
// the Read call returned are appended first; src's error, including
// io.EOF, is then returned as is.
func (a *AsyncReader) refill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := a.src.Read(a.scratch)
	if n > 0 {
		a.stream.Append(a.scratch[:n])
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return io.ErrNoProgress
	}
	return nil
}

// hasCompleteStructure peeks (without consuming) whether the cached
// window holds one full top-level msgpack value.
func (a *AsyncReader) hasCompleteStructure() (bool, error) {
	pos := a.stream.Position()
	res, err := a.stream.TrySkip(msgpack.DefaultMaxDepth)
	a.stream.SetPosition(pos)
	if err != nil {
		return false, err
	}
	return res == msgpack.Success, nil
}

// BufferNextStructure fetches bytes from the source until the cached
// window contains at least one complete top-level msgpack structure,
// or the source is exhausted (in which case it returns io.EOF if the
// window is and remains empty, or nil if a partial/whole structure is
// already final).
func (a *AsyncReader) BufferNextStructure(ctx context.Context) error {
	if a.checkedOut {
		return ErrAlreadyCheckedOut
	}
	for {
		ok, err := a.hasCompleteStructure()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := a.refill(ctx); err != nil {
			if err == io.EOF {
				if len(a.stream.Remaining()) == 0 {
					return io.EOF
				}
				return nil // let the checked-out reader surface the real error
			}
			return err
		}
	}
}

// countStructures peeks up to limit complete top-level structures from
// the current cursor, restoring the cursor before returning.
func (a *AsyncReader) countStructures(limit int) int {
	start := a.stream.Position()
	n := 0
	for n < limit {
		res, err := a.stream.TrySkip(msgpack.DefaultMaxDepth)
		if err != nil || res != msgpack.Success {
			break
		}
		n++
	}
	a.stream.SetPosition(start)
	return n
}

// BufferNextStructures fetches bytes until the window holds between
// min and max complete structures (counted via repeated peek-skips)
// or the source reaches EOF. It lets the object-array converter batch
// several synchronous element reads between async suspensions.
func (a *AsyncReader) BufferNextStructures(ctx context.Context, min, max int) (int, error) {
	if a.checkedOut {
		return 0, ErrAlreadyCheckedOut
	}
	for {
		n := a.countStructures(max)
		if n >= min {
			return n, nil
		}
		if err := a.refill(ctx); err != nil {
			if err == io.EOF {
				return a.countStructures(max), nil
			}
			return n, err
		}
	}
}

// CheckoutReader hands out a synchronous Reader over the currently
// cached window. Only one reader may be checked out at a time.
func (a *AsyncReader) CheckoutReader() (*msgpack.Reader, error) {
	if a.checkedOut {
		return nil, ErrAlreadyCheckedOut
	}
	a.checkedOut = true
	return msgpack.NewReaderFromStream(a.stream), nil
}

// ReturnReader commits the checked-out reader's cursor back to the
// cached window (a no-op here, since the reader shares the same
// Stream) and clears the checked-out flag.
func (a *AsyncReader) ReturnReader(r *msgpack.Reader) error {
	if !a.checkedOut {
		return ErrNotCheckedOut
	}
	a.checkedOut = false
	a.stream.Compact()
	return nil
}

// Stream exposes the cached Stream directly for callers that want to
// drive TryReadX/TrySkip without a checkout (e.g. BufferNextStructure
// callers doing their own peeking). It is outside the checkout
// invariant: obtaining it neither checks nor sets checkedOut, so only
// CheckoutReader enforces exclusivity.
func (a *AsyncReader) Stream() *msgpack.Stream { return a.stream }

// Close compacts the cached window, dropping the bytes already
// consumed; bytes read from the source but not yet consumed stay in
// the window. The source itself is neither read nor closed; callers
// that wrap an io.ReadCloser should close it themselves afterward.
func (a *AsyncReader) Close() {
	a.stream.Compact()
}
