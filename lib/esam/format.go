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
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

var (
	ErrUnsupportedContainer = errors.New("unsupported container")
	ErrUnsupportedCodec     = errors.New("unsupported codec")
)

// Category is the family of data held in a file.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySequence
	CategoryVariant
)

func (c Category) String() string {
	switch c {
	case CategorySequence:
		return "sequence data"
	case CategoryVariant:
		return "variant data"
	}
	return "unknown"
}

// Format is the exact file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatSAM
	FormatBAM
	FormatCRAM
	FormatFASTA
	FormatFASTQ
	FormatVCF
	FormatBCF
)

var formatNames = []string{"unknown", "SAM", "BAM", "CRAM", "FASTA", "FASTQ", "VCF", "BCF"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[0]
	}
	return formatNames[f]
}

// Compression is the compression layer wrapping a file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBGZF
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBGZF:
		return "bgzf"
	}
	return "none"
}

// FileFormat describes a detected input.
type FileFormat struct {
	Category    Category
	Format      Format
	Compression Compression
}

func (ff FileFormat) String() string {
	if ff.Compression == CompressionNone {
		return ff.Format.String()
	}
	return ff.Format.String() + "+" + ff.Compression.String()
}

// IsAlignment reports whether the format is SAM, BAM or CRAM.
func (ff FileFormat) IsAlignment() bool {
	return ff.Category == CategorySequence && (ff.Format == FormatSAM || ff.Format == FormatBAM || ff.Format == FormatCRAM)
}

// CheckAlignment returns an error unless the input is sequence data in SAM, BAM or CRAM format.
func (ff FileFormat) CheckAlignment() error {
	if ff.Category != CategorySequence {
		return fmt.Errorf("%w: input is not recognized as sequence data (%s)", ErrUnsupportedContainer, ff.Category)
	}
	if !ff.IsAlignment() {
		return fmt.Errorf("%w: input is not recognized as SAM, BAM or CRAM (%s)", ErrUnsupportedContainer, ff)
	}
	return nil
}

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipFExtra  = 0x04
	inflateSize = 1024
)

var (
	magicBAM  = []byte("BAM\x01")
	magicBCF  = []byte("BCF\x02")
	magicCRAM = []byte("CRAM")
	magicVCF  = []byte("##fileformat=VCF")
)

// Detect peeks at the start of br and returns its format. No byte is consumed.
func Detect(br *bufio.Reader) (FileFormat, error) {
	b, err := br.Peek(br.Size())
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return FileFormat{}, err
	}
	return DetectBytes(b), nil
}

// DetectBytes returns the format of a file starting with b.
func DetectBytes(b []byte) FileFormat {
	if len(b) >= 2 && b[0] == gzipID1 && b[1] == gzipID2 {
		comp := CompressionGzip
		// BGZF: gzip with the "BC" extra subfield
		if len(b) >= 14 && b[3]&gzipFExtra != 0 && b[12] == 'B' && b[13] == 'C' {
			comp = CompressionBGZF
		}
		zr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return FileFormat{Compression: comp}
		}
		defer zr.Close()
		buf := make([]byte, inflateSize)
		n, _ := io.ReadFull(zr, buf)
		ff := detectPlain(buf[:n])
		ff.Compression = comp
		return ff
	}
	return detectPlain(b)
}

func detectPlain(b []byte) FileFormat {
	switch {
	case bytes.HasPrefix(b, magicBAM):
		return FileFormat{Category: CategorySequence, Format: FormatBAM}
	case bytes.HasPrefix(b, magicCRAM):
		return FileFormat{Category: CategorySequence, Format: FormatCRAM}
	case bytes.HasPrefix(b, magicBCF):
		return FileFormat{Category: CategoryVariant, Format: FormatBCF}
	case bytes.HasPrefix(b, magicVCF):
		return FileFormat{Category: CategoryVariant, Format: FormatVCF}
	}
	return detectText(b)
}

func detectText(b []byte) FileFormat {
	if len(b) == 0 {
		return FileFormat{}
	}
	switch b[0] {
	case '@':
		// SAM header line: "@" + two-letter record type + tab
		if len(b) >= 4 && isUpper(b[1]) && isAlpha(b[2]) && b[3] == '\t' {
			return FileFormat{Category: CategorySequence, Format: FormatSAM}
		}
		return FileFormat{Category: CategorySequence, Format: FormatFASTQ}
	case '>':
		return FileFormat{Category: CategorySequence, Format: FormatFASTA}
	}
	// Headerless SAM: first line has the 11 mandatory fields
	line := b
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		line = b[:i]
	}
	if bytes.Count(line, []byte{'\t'}) >= 10 {
		return FileFormat{Category: CategorySequence, Format: FormatSAM}
	}
	return FileFormat{}
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isAlpha(c byte) bool {
	return isUpper(c) || (c >= 'a' && c <= 'z')
}
