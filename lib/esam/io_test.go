//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecords(t *testing.T, format Format, records ...*sam.Record) []byte {
	t.Helper()
	h, _ := newTestHeader(t)
	var buf bytes.Buffer
	w, err := NewWriter(&buf, h, format, 1)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readAll(t *testing.T, rd *Reader) []*sam.Record {
	t.Helper()
	var records []*sam.Record
	for {
		r, err := rd.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		records = append(records, r)
	}
	return records
}

func TestReaderWriterRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatSAM, FormatBAM} {
		format := format
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			_, ref := newTestHeader(t)
			cigar := []sam.CigarOp{
				sam.NewCigarOp(sam.CigarSoftClipped, 1),
				sam.NewCigarOp(sam.CigarMatch, 3),
			}
			in := []*sam.Record{
				newTestRecord(t, ref, "r1", 10, cigar, "ACGT", []byte{30, 25, 20, 15}),
				newTestRecord(t, ref, "r2", 20, cigar, "TTGA", []byte{10, 11, 12, 13}),
			}
			data := writeRecords(t, format, in...)

			rd, err := NewReader(bytes.NewReader(data), 1)
			require.NoError(t, err)
			defer rd.Close()
			assert.Equal(t, format, rd.FileFormat.Format)
			require.Len(t, rd.Header().Refs(), 1)
			assert.Equal(t, "chr1", rd.Header().Refs()[0].Name())

			out := readAll(t, rd)
			require.Len(t, out, 2)
			for i := range in {
				assert.Equal(t, in[i].Name, out[i].Name)
				assert.Equal(t, in[i].Pos, out[i].Pos)
				assert.Equal(t, in[i].Qual, out[i].Qual)
				assert.Equal(t, in[i].Seq.Expand(), out[i].Seq.Expand())
				assert.Equal(t, in[i].Cigar.String(), out[i].Cigar.String())
			}
			assert.NoError(t, rd.IOErr())
		})
	}
}

func TestReaderCompressedSAM(t *testing.T) {
	t.Parallel()

	_, ref := newTestHeader(t)
	data := writeRecords(t, FormatSAM, newTestRecord(t, ref, "r1", 10, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}, "ACGT", []byte{30, 25, 20, 15}))

	rd, err := NewReader(bytes.NewReader(gzipBytes(t, data)), 1)
	require.NoError(t, err)
	defer rd.Close()
	assert.Equal(t, FileFormat{Category: CategorySequence, Format: FormatSAM, Compression: CompressionGzip}, rd.FileFormat)
	out := readAll(t, rd)
	require.Len(t, out, 1)
	assert.Equal(t, []byte{30, 25, 20, 15}, out[0].Qual)
}

func TestReaderRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		err   error
	}{
		{name: "fastq", input: "@r1\nACGT\n+\nIIII\n", err: ErrUnsupportedContainer},
		{name: "vcf", input: "##fileformat=VCFv4.2\n", err: ErrUnsupportedContainer},
		{name: "empty", input: "", err: ErrUnsupportedContainer},
		{name: "cram", input: "CRAM\x03\x00", err: ErrUnsupportedCodec},
		{name: "uncompressed bam", input: "BAM\x01\x00\x00\x00\x00", err: ErrUnsupportedCodec},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReader(strings.NewReader(tt.input), 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), err.Error())
		})
	}
}

func TestReaderIOFailure(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	_, err := NewReader(iotest.ErrReader(errBoom), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
}

func TestOpenReaderCreateWriter(t *testing.T) {
	t.Parallel()

	h, ref := newTestHeader(t)
	path := filepath.Join(t.TempDir(), "reads.bam")
	w, err := CreateWriter(path, h, FormatBAM, 1)
	require.NoError(t, err)
	require.NoError(t, w.Write(newTestRecord(t, ref, "r1", 10, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}, "ACGT", []byte{30, 25, 20, 15})))
	require.NoError(t, w.Close())

	rd, err := OpenReader(path, 1)
	require.NoError(t, err)
	assert.Equal(t, FormatBAM, rd.FileFormat.Format)
	assert.Len(t, readAll(t, rd), 1)
	require.NoError(t, rd.Close())

	_, err = OpenReader(filepath.Join(t.TempDir(), "missing.bam"), 1)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = NewWriter(io.Discard, h, FormatCRAM, 1)
	assert.True(t, errors.Is(err, ErrUnsupportedCodec))
}

func TestWriterAbort(t *testing.T) {
	t.Parallel()

	bgzfEOF := []byte("\x1f\x8b\x08\x04\x00\x00\x00\x00\x00\xff\x06\x00\x42\x43\x02\x00\x1b\x00\x03\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	h, ref := newTestHeader(t)
	r := newTestRecord(t, ref, "r1", 10, []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 4)}, "ACGT", []byte{30, 25, 20, 15})

	// Complete BAM ends with the EOF block
	var closed bytes.Buffer
	w, err := NewWriter(&closed, h, FormatBAM, 1)
	require.NoError(t, err)
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Close())
	assert.True(t, bytes.HasSuffix(closed.Bytes(), bgzfEOF))

	// Aborted BAM does not
	var aborted bytes.Buffer
	w, err = NewWriter(&aborted, h, FormatBAM, 1)
	require.NoError(t, err)
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Abort())
	assert.False(t, bytes.HasSuffix(aborted.Bytes(), bgzfEOF))

	// Aborted SAM keeps the records written so far
	var text bytes.Buffer
	w, err = NewWriter(&text, h, FormatSAM, 1)
	require.NoError(t, err)
	require.NoError(t, w.Write(r))
	require.NoError(t, w.Abort())
	assert.Contains(t, text.String(), "r1\t0\tchr1\t11\t")
}
