//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/klauspost/compress/gzip"
)

// StdPath selects stdin or stdout instead of a file.
const StdPath = "-"

const (
	readBufferSize  = 1 << 17
	writeBufferSize = 1 << 20
)

// trackReader remembers the first failure of the underlying reader so that
// I/O errors can be told apart from decoding errors.
type trackReader struct {
	r   io.Reader
	err error
}

func (t *trackReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

// Reader reads alignment records from a SAM or BAM stream.
type Reader struct {
	FileFormat FileFormat
	header     *sam.Header
	rr         sam.RecordReader
	tr         *trackReader
	closers    []io.Closer
}

// OpenReader opens path (stdin with "-") and checks it holds alignments.
// nWorker is the number of BGZF decompression goroutines used for BAM.
func OpenReader(path string, nWorker int) (*Reader, error) {
	var f io.ReadCloser
	if path == StdPath {
		f = io.NopCloser(os.Stdin)
	} else {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
	}
	rd, err := NewReader(f, nWorker)
	if err != nil {
		f.Close()
		return nil, err
	}
	rd.closers = append(rd.closers, f)
	return rd, nil
}

// NewReader detects the format of r and starts decoding it.
func NewReader(r io.Reader, nWorker int) (*Reader, error) {
	rd := &Reader{tr: &trackReader{r: r}}
	br := bufio.NewReaderSize(rd.tr, readBufferSize)
	var err error
	if rd.FileFormat, err = Detect(br); err != nil {
		return nil, err
	}
	if err = rd.FileFormat.CheckAlignment(); err != nil {
		return nil, err
	}
	switch rd.FileFormat.Format {
	case FormatBAM:
		if rd.FileFormat.Compression != CompressionBGZF {
			return nil, fmt.Errorf("%w: BAM input must be BGZF compressed (%s)", ErrUnsupportedCodec, rd.FileFormat)
		}
		var br2 *bam.Reader
		if br2, err = bam.NewReader(br, nWorker); err != nil {
			return nil, fmt.Errorf("Failed to read BAM header: %w", err)
		}
		rd.rr, rd.header = br2, br2.Header()
		rd.closers = append(rd.closers, br2)
	case FormatSAM:
		var in io.Reader = br
		if rd.FileFormat.Compression != CompressionNone {
			zr, err := gzip.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("Failed to open compressed SAM: %w", err)
			}
			rd.closers = append(rd.closers, zr)
			in = zr
		}
		var sr *sam.Reader
		if sr, err = sam.NewReader(in); err != nil {
			return nil, fmt.Errorf("Failed to read SAM header: %w", err)
		}
		rd.rr, rd.header = sr, sr.Header()
	case FormatCRAM:
		return nil, fmt.Errorf("%w: CRAM records cannot be decoded, convert the input to BAM first", ErrUnsupportedCodec)
	}
	return rd, nil
}

// Header returns the header of the input.
func (rd *Reader) Header() *sam.Header {
	return rd.header
}

// Read returns the next record or io.EOF.
func (rd *Reader) Read() (*sam.Record, error) {
	return rd.rr.Read()
}

// IOErr returns the first failure of the underlying byte stream, if any.
func (rd *Reader) IOErr() error {
	return rd.tr.err
}

// Close closes the decoder and the input file.
func (rd *Reader) Close() error {
	var err error
	for i := len(rd.closers) - 1; i >= 0; i-- {
		if e := rd.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	rd.closers = nil
	return err
}

// Writer writes alignment records as SAM or BAM.
type Writer struct {
	format Format
	sw     *sam.Writer
	bw     *bam.Writer
	buf    *bufio.Writer
	f      io.Closer
}

// CreateWriter creates path (stdout with "-") and writes the header in format.
// nWorker is the number of BGZF compression goroutines used for BAM.
func CreateWriter(path string, h *sam.Header, format Format, nWorker int) (*Writer, error) {
	var out io.WriteCloser
	if path == StdPath {
		out = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		out = f
	}
	w, err := NewWriter(out, h, format, nWorker)
	if err != nil {
		out.Close()
		return nil, err
	}
	w.f = out
	return w, nil
}

// NewWriter writes the header of h to w in format.
func NewWriter(w io.Writer, h *sam.Header, format Format, nWorker int) (*Writer, error) {
	wr := &Writer{format: format, buf: bufio.NewWriterSize(w, writeBufferSize)}
	var err error
	switch format {
	case FormatSAM:
		wr.sw, err = sam.NewWriter(wr.buf, h, sam.FlagDecimal)
	case FormatBAM:
		wr.bw, err = bam.NewWriter(wr.buf, h, nWorker)
	default:
		return nil, fmt.Errorf("%w: cannot write %s", ErrUnsupportedCodec, format)
	}
	if err != nil {
		return nil, err
	}
	return wr, nil
}

// Write writes one record.
func (wr *Writer) Write(r *sam.Record) error {
	if wr.bw != nil {
		return wr.bw.Write(r)
	}
	return wr.sw.Write(r)
}

// Close flushes pending records and closes the output file.
func (wr *Writer) Close() error {
	var err error
	if wr.bw != nil {
		err = wr.bw.Close()
	}
	if e := wr.buf.Flush(); e != nil && err == nil {
		err = e
	}
	if wr.f != nil {
		if e := wr.f.Close(); e != nil && err == nil {
			err = e
		}
		wr.f = nil
	}
	return err
}

// Abort stops writing after a failed run. Records already written are flushed
// but the BAM stream is not closed, so no BGZF EOF marker is written and the
// output reads as truncated.
func (wr *Writer) Abort() error {
	err := wr.buf.Flush()
	if wr.f != nil {
		if e := wr.f.Close(); e != nil && err == nil {
			err = e
		}
		wr.f = nil
	}
	return err
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
