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

package convert

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shapewire/msgpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDSurrogateRoundTrip(t *testing.T) {
	reg := NewRegistry()
	conv, err := reg.Get(UUIDShape)
	require.NoError(t, err)
	cc := NewContext(context.Background(), reg)

	id := uuid.New()

	var buf msgpack.Buffer
	require.NoError(t, conv.Write(cc, &buf, id))

	decoded, err := conv.Read(cc, msgpack.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}
