//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package profile accumulates quality reductions by position in the read.
package profile

const initialLength = 512

// Profile counts, for each position of the quality array, the number of
// reduced bases and the total quality lowered.
type Profile struct {
	Reduced []uint64
	Lowered []uint64
}

func NewProfile() *Profile {
	return &Profile{Reduced: make([]uint64, 0, initialLength), Lowered: make([]uint64, 0, initialLength)}
}

// Add records that the quality at pos was lowered by lowered.
func (p *Profile) Add(pos int, lowered uint8) {
	if lowered == 0 || pos < 0 {
		return
	}
	if pos >= len(p.Reduced) {
		p.Grow(pos + 1)
	}
	p.Reduced[pos]++
	p.Lowered[pos] += uint64(lowered)
}

// AddChange records the difference between the quality arrays before and after reduction.
func (p *Profile) AddChange(before, after []byte) {
	for i := 0; i < len(before) && i < len(after); i++ {
		if after[i] < before[i] {
			p.Add(i, before[i]-after[i])
		}
	}
}

// Grow extends the profile to at least n positions.
func (p *Profile) Grow(n int) {
	if n <= len(p.Reduced) {
		return
	}
	p.Reduced = append(p.Reduced, make([]uint64, n-len(p.Reduced))...)
	p.Lowered = append(p.Lowered, make([]uint64, n-len(p.Lowered))...)
}

// Len returns the number of positions.
func (p *Profile) Len() int {
	return len(p.Reduced)
}

// Totals returns the total number of reduced bases and quality lowered.
func (p *Profile) Totals() (reduced, lowered uint64) {
	for i := range p.Reduced {
		reduced += p.Reduced[i]
		lowered += p.Lowered[i]
	}
	return
}
