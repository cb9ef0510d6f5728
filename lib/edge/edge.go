//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package edge lowers base qualities at both ends of a read.
//
// The edge of a read starts where soft-clipping ends: NumBases aligned bases
// are reduced on each side, plus the soft-clipped bases themselves which are
// still present in the quality array.
package edge

import (
	"fmt"
)

const (
	DefaultNumBases      = 3
	DefaultQualReduction = 20
)

// Spec is the run-wide edge configuration.
type Spec struct {
	NumBases      int
	QualReduction uint8
}

// DefaultSpec returns the default edge configuration.
func DefaultSpec() Spec {
	return Spec{NumBases: DefaultNumBases, QualReduction: DefaultQualReduction}
}

// Validate checks NumBases.
func (s Spec) Validate() error {
	if s.NumBases < 0 {
		return fmt.Errorf("Number of edge bases must be positive or zero (got %d)", s.NumBases)
	}
	return nil
}

// Reduce returns q lowered by amount, floored at zero.
func Reduce(q, amount uint8) uint8 {
	if q >= amount {
		return q - amount
	}
	return 0
}

// Window is a half-open [Start,End) range of quality array indices.
type Window struct {
	Start, End int
}

// Len returns the number of positions in the window.
func (w Window) Len() int {
	if w.End <= w.Start {
		return 0
	}
	return w.End - w.Start
}

// Contains reports whether pos is inside the window.
func (w Window) Contains(pos int) bool {
	return pos >= w.Start && pos < w.End
}

// Selection holds the positions reduced at each end of a read.
type Selection struct {
	Leading  Window
	Trailing Window
}

// Select computes the leading and trailing windows of a read of length seqLen.
//
// The leading window covers the first numBases+leadingClip positions. The
// trailing window covers the last numBases+trailingClip positions but never
// reaches below numBases: the raw count is used, not the clip-adjusted one,
// so a long trailing window can still reach into the leading clip offset and
// positions in [numBases, numBases+leadingClip) are then reduced twice.
// Windows are clamped to the array bounds.
func Select(seqLen, numBases, leadingClip, trailingClip int) (sel Selection) {
	if seqLen <= 0 || numBases < 0 {
		return
	}
	if leadingClip < 0 {
		leadingClip = 0
	}
	if trailingClip < 0 {
		trailingClip = 0
	}
	// Leading
	sel.Leading = Window{Start: 0, End: min(numBases+leadingClip, seqLen)}
	// Trailing
	start := max(numBases, seqLen-numBases-trailingClip)
	if start < seqLen {
		sel.Trailing = Window{Start: max(start, 0), End: seqLen}
	}
	return
}

// Positions returns the sorted union of both windows.
func (sel Selection) Positions() []int {
	var positions []int
	for pos := min(sel.Leading.Start, sel.Trailing.Start); pos < max(sel.Leading.End, sel.Trailing.End); pos++ {
		if sel.Leading.Contains(pos) || sel.Trailing.Contains(pos) {
			positions = append(positions, pos)
		}
	}
	return positions
}

// Overlap returns the positions selected by both windows.
func (sel Selection) Overlap() Window {
	o := Window{Start: max(sel.Leading.Start, sel.Trailing.Start), End: min(sel.Leading.End, sel.Trailing.End)}
	if o.Len() == 0 {
		return Window{}
	}
	return o
}

// IsEmpty reports whether no position is selected.
func (sel Selection) IsEmpty() bool {
	return sel.Leading.Len() == 0 && sel.Trailing.Len() == 0
}

// ApplyInPlace reduces the qualities of the leading then the trailing window.
func ApplyInPlace(qual []byte, sel Selection, amount uint8) {
	for _, w := range [2]Window{sel.Leading, sel.Trailing} {
		for pos := max(w.Start, 0); pos < min(w.End, len(qual)); pos++ {
			qual[pos] = Reduce(qual[pos], amount)
		}
	}
}

// Apply returns a reduced copy of qual. The input is not modified.
func Apply(qual []byte, sel Selection, amount uint8) []byte {
	out := make([]byte, len(qual))
	copy(out, qual)
	ApplyInPlace(out, sel, amount)
	return out
}

// ReduceEdges selects and reduces the edges of qual in one call.
func ReduceEdges(qual []byte, s Spec, leadingClip, trailingClip int) []byte {
	return Apply(qual, Select(len(qual), s.NumBases, leadingClip, trailingClip), s.QualReduction)
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
