//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package region restricts edge reduction to reads aligned on target regions.
package region

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
	"github.com/biogo/store/interval"

	"git.sr.ht/~vejnar/TrimQuals/lib/esam"
)

type Region struct {
	Chrom      string
	Start, End int
	Name       string
}

// Length returns the length of region
func (r Region) Length() int {
	return r.End - r.Start
}

// ParseBED parses BED-like lines (chrom, start, end and optional name). Empty,
// comment, track and browser lines are skipped.
func ParseBED(rd io.Reader) (regions []Region, err error) {
	tscanner := bufio.NewScanner(rd)
	var iline int
	for tscanner.Scan() {
		iline++
		line := strings.TrimRight(tscanner.Text(), "\r")
		if len(line) == 0 || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return regions, fmt.Errorf("Line %d: expected at least 3 tab-separated fields, got %d", iline, len(fields))
		}
		r := Region{Chrom: fields[0]}
		if r.Start, err = strconv.Atoi(fields[1]); err != nil {
			return regions, fmt.Errorf("Line %d: wrong start: %w", iline, err)
		}
		if r.End, err = strconv.Atoi(fields[2]); err != nil {
			return regions, fmt.Errorf("Line %d: wrong end: %w", iline, err)
		}
		if r.Start < 0 || r.End <= r.Start {
			return regions, fmt.Errorf("Line %d: wrong interval [%d,%d)", iline, r.Start, r.End)
		}
		if len(fields) > 3 {
			r.Name = fields[3]
		}
		regions = append(regions, r)
	}
	if err = tscanner.Err(); err != nil {
		return
	}
	return
}

// OpenBED parses the BED file at path.
func OpenBED(path string) ([]Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	regions, err := ParseBED(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return regions, nil
}

// Set answers whether alignments overlap any of its regions.
type Set struct {
	trees      map[string]*interval.IntTree
	MinOverlap int
}

// NewSet builds one interval tree per chromosome.
func NewSet(regions []Region, minOverlap int) (*Set, error) {
	s := &Set{trees: make(map[string]*interval.IntTree), MinOverlap: minOverlap}
	for i, r := range regions {
		// New tree for unseen chromosome
		if _, ok := s.trees[r.Chrom]; !ok {
			s.trees[r.Chrom] = &interval.IntTree{}
		}
		iv := IntInterval{Start: r.Start, End: r.End, UID: uintptr(i), Name: r.Name}
		if err := s.trees[r.Chrom].Insert(iv, true); err != nil {
			return nil, err
		}
	}
	for _, tree := range s.trees {
		tree.AdjustRanges()
	}
	return s, nil
}

// Len returns the number of regions.
func (s *Set) Len() (n int) {
	for _, tree := range s.trees {
		n += tree.Len()
	}
	return
}

// Overlaps reports whether the aligned bases of r overlap the regions by at least MinOverlap.
func (s *Set) Overlaps(r *sam.Record) bool {
	if r.Ref == nil || r.Flags&sam.Unmapped != 0 {
		return false
	}
	tree, ok := s.trees[esam.RefName(r)]
	if !ok {
		return false
	}
	var overlap int
	for _, iv := range tree.Get(IntInterval{Start: r.Start(), End: r.End()}) {
		rg := iv.Range()
		overlap += esam.Overlap(r, rg.Start, rg.End)
		if overlap >= s.MinOverlap && overlap > 0 {
			return true
		}
	}
	return false
}
