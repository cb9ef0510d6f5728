//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"github.com/biogo/hts/sam"
)

// missingQual fills QUAL when the record has no quality ('*' in SAM).
const missingQual = 0xff

// LeadingSoftClips returns the length of the soft-clip if it is the first CIGAR operation.
func LeadingSoftClips(r *sam.Record) int {
	if len(r.Cigar) == 0 {
		return 0
	}
	if co := r.Cigar[0]; co.Type() == sam.CigarSoftClipped {
		return co.Len()
	}
	return 0
}

// TrailingSoftClips returns the length of the soft-clip if it is the last CIGAR operation.
func TrailingSoftClips(r *sam.Record) int {
	if len(r.Cigar) == 0 {
		return 0
	}
	if co := r.Cigar[len(r.Cigar)-1]; co.Type() == sam.CigarSoftClipped {
		return co.Len()
	}
	return 0
}

// SoftClips returns the leading and trailing soft-clip lengths.
func SoftClips(r *sam.Record) (leading, trailing int) {
	return LeadingSoftClips(r), TrailingSoftClips(r)
}

// HasQual reports whether the record carries base qualities.
func HasQual(r *sam.Record) bool {
	return len(r.Qual) > 0 && r.Qual[0] != missingQual
}

// RefName returns the reference name of the alignment or "*" if unmapped.
func RefName(r *sam.Record) string {
	if r.Ref == nil {
		return "*"
	}
	return r.Ref.Name()
}

// Overlap returns the length of the overlap between the alignment of the SAM record and the interval specified with start and end.
func Overlap(r *sam.Record, start, end int) int {
	var overlap int
	pos := r.Pos
	for _, co := range r.Cigar {
		t := co.Type()
		con := t.Consumes()
		lr := co.Len() * con.Reference
		if con.Query == con.Reference {
			o := min(pos+lr, end) - max(pos, start)
			if o > 0 {
				overlap += o
			}
		}
		pos += lr
	}
	return overlap
}

func min(a, b int) int {
	if a > b {
		return b
	}
	return a
}

func max(a, b int) int {
	if a < b {
		return b
	}
	return a
}
