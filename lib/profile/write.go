//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

const BinaryVersion uint8 = 1

type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// ParseFormat splits a format such as "csv+lz4" into the profile format and the compression.
func ParseFormat(profileFormat string) (format, zip string, err error) {
	format = profileFormat
	if strings.Contains(profileFormat, "+") {
		doubleFormat := strings.SplitN(profileFormat, "+", 2)
		format, zip = doubleFormat[0], doubleFormat[1]
	}
	switch format {
	case "csv", "binary":
	default:
		return format, zip, fmt.Errorf("Unknown profile format %q (csv or binary)", format)
	}
	switch zip {
	case "", "lz4", "lz4hc", "zst":
	default:
		return format, zip, fmt.Errorf("Unknown profile compression %q (lz4, lz4hc or zst)", zip)
	}
	return format, zip, nil
}

func newZipWriter(w io.Writer, zip string) (GenericWriter, error) {
	switch zip {
	case "lz4":
		return lz4.NewWriter(w), nil
	case "lz4hc":
		lzWriter := lz4.NewWriter(w)
		lzWriter.Header = lz4.Header{CompressionLevel: 9}
		return lzWriter, nil
	case "zst":
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	return nopCloser{w}, nil
}

// Write writes the profile to w in profileFormat ("csv" or "binary", optionally suffixed with "+lz4", "+lz4hc" or "+zst").
func (p *Profile) Write(w io.Writer, profileFormat string) error {
	format, zip, err := ParseFormat(profileFormat)
	if err != nil {
		return err
	}
	writer, err := newZipWriter(w, zip)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(writer)
	switch format {
	case "csv":
		fmt.Fprintln(bw, "position,reduced,lowered")
		for ip := 0; ip < p.Len(); ip++ {
			fmt.Fprintf(bw, "%d,%d,%d\n", ip, p.Reduced[ip], p.Lowered[ip])
		}
	case "binary":
		// Version
		if err = binary.Write(bw, binary.LittleEndian, BinaryVersion); err != nil {
			return err
		}
		// Length and checksum
		l := uint32(p.Len())
		bufChecksum := new(bytes.Buffer)
		if err = binary.Write(bufChecksum, binary.LittleEndian, l); err != nil {
			return err
		}
		if err = binary.Write(bw, binary.LittleEndian, l); err != nil {
			return err
		}
		if err = binary.Write(bw, binary.LittleEndian, adler32.Checksum(bufChecksum.Bytes())); err != nil {
			return err
		}
		// Profiles
		if err = binary.Write(bw, binary.LittleEndian, p.Reduced); err != nil {
			return err
		}
		if err = binary.Write(bw, binary.LittleEndian, p.Lowered); err != nil {
			return err
		}
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	return writer.Close()
}

// WriteFile creates path and writes the profile in profileFormat.
func (p *Profile) WriteFile(path, profileFormat string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = p.Write(f, profileFormat); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
