//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"bytes"
	"encoding/binary"
	"hash/adler32"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfile() *Profile {
	p := NewProfile()
	p.AddChange([]byte{30, 25, 20, 15, 10, 5}, []byte{25, 20, 20, 15, 5, 0})
	p.AddChange([]byte{30, 25, 20}, []byte{20, 15, 10})
	return p
}

func TestProfileAdd(t *testing.T) {
	t.Parallel()

	p := newTestProfile()
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, []uint64{2, 2, 1, 0, 1, 1}, p.Reduced)
	assert.Equal(t, []uint64{15, 15, 10, 0, 5, 5}, p.Lowered)
	reduced, lowered := p.Totals()
	assert.Equal(t, uint64(7), reduced)
	assert.Equal(t, uint64(50), lowered)

	// Zero and negative positions are ignored
	p.Add(2, 0)
	p.Add(-1, 10)
	assert.Equal(t, uint64(1), p.Reduced[2])

	p.Add(10, 3)
	assert.Equal(t, 11, p.Len())
	assert.Equal(t, uint64(3), p.Lowered[10])
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	format, zip, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", format)
	assert.Empty(t, zip)

	format, zip, err = ParseFormat("binary+lz4hc")
	require.NoError(t, err)
	assert.Equal(t, "binary", format)
	assert.Equal(t, "lz4hc", zip)

	_, _, err = ParseFormat("bedgraph")
	assert.Error(t, err)
	_, _, err = ParseFormat("csv+bz2")
	assert.Error(t, err)
}

const expectedCSV = "position,reduced,lowered\n0,2,15\n1,2,15\n2,1,10\n3,0,0\n4,1,5\n5,1,5\n"

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newTestProfile().Write(&buf, "csv"))
	assert.Equal(t, expectedCSV, buf.String())
}

func TestWriteCompressed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		open   func(r io.Reader) (io.Reader, error)
	}{
		{
			format: "csv+lz4",
			open:   func(r io.Reader) (io.Reader, error) { return lz4.NewReader(r), nil },
		},
		{
			format: "csv+lz4hc",
			open:   func(r io.Reader) (io.Reader, error) { return lz4.NewReader(r), nil },
		},
		{
			format: "csv+zst",
			open: func(r io.Reader) (io.Reader, error) {
				return zstd.NewReader(r)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, newTestProfile().Write(&buf, tt.format))
			zr, err := tt.open(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Equal(t, expectedCSV, string(got))
		})
	}
}

func TestWriteBinary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.bin")
	require.NoError(t, newTestProfile().WriteFile(path, "binary"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	r := bytes.NewReader(data)
	var version uint8
	var length, checksum uint32
	require.NoError(t, binary.Read(r, binary.LittleEndian, &version))
	require.NoError(t, binary.Read(r, binary.LittleEndian, &length))
	require.NoError(t, binary.Read(r, binary.LittleEndian, &checksum))
	assert.Equal(t, BinaryVersion, version)
	assert.Equal(t, uint32(6), length)
	assert.Equal(t, adler32.Checksum([]byte{6, 0, 0, 0}), checksum)

	reduced := make([]uint64, length)
	lowered := make([]uint64, length)
	require.NoError(t, binary.Read(r, binary.LittleEndian, reduced))
	require.NoError(t, binary.Read(r, binary.LittleEndian, lowered))
	assert.Equal(t, []uint64{2, 2, 1, 0, 1, 1}, reduced)
	assert.Equal(t, []uint64{15, 15, 10, 0, 5, 5}, lowered)
	assert.Zero(t, r.Len())
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	assert.Error(t, newTestProfile().Write(io.Discard, "bedgraph"))
}
