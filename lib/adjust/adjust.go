//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package adjust lowers edge qualities of alignment records and streams them
// from a source to a sink.
package adjust

import (
	"github.com/biogo/hts/sam"

	"git.sr.ht/~vejnar/TrimQuals/lib/edge"
	"git.sr.ht/~vejnar/TrimQuals/lib/esam"
	"git.sr.ht/~vejnar/TrimQuals/lib/profile"
	"git.sr.ht/~vejnar/TrimQuals/lib/region"
)

// Outcome is what happened to a record.
type Outcome int

const (
	Adjusted Outcome = iota
	NoQual
	OutsideRegions
)

// Change describes the adjustment of one record.
type Change struct {
	Outcome   Outcome
	Selection edge.Selection
	Reduced   int
	Lowered   int
	// ReducedTwice counts positions inside both windows.
	ReducedTwice int
}

// Adjuster lowers the qualities at the edges of records.
type Adjuster struct {
	Spec edge.Spec
	// Regions restricts adjustment to overlapping records if not nil.
	Regions *region.Set
	// Profile accumulates reductions by position if not nil.
	Profile *profile.Profile
}

// Adjust reduces the edge qualities of r in place. Only r.Qual is modified.
func (a *Adjuster) Adjust(r *sam.Record) (c Change) {
	if !esam.HasQual(r) {
		c.Outcome = NoQual
		return
	}
	if a.Regions != nil && !a.Regions.Overlaps(r) {
		c.Outcome = OutsideRegions
		return
	}
	leadingClip, trailingClip := esam.SoftClips(r)
	c.Selection = edge.Select(len(r.Qual), a.Spec.NumBases, leadingClip, trailingClip)
	if c.Selection.IsEmpty() || a.Spec.QualReduction == 0 {
		return
	}
	c.ReducedTwice = c.Selection.Overlap().Len()
	qual := edge.Apply(r.Qual, c.Selection, a.Spec.QualReduction)
	for i := range qual {
		if qual[i] != r.Qual[i] {
			c.Reduced++
			c.Lowered += int(r.Qual[i] - qual[i])
		}
	}
	if a.Profile != nil {
		a.Profile.AddChange(r.Qual, qual)
	}
	r.Qual = qual
	return
}
