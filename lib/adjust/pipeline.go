//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package adjust

import (
	"errors"
	"io"

	"github.com/biogo/hts/sam"
	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/TrimQuals/lib/esam"
)

// Source delivers records one at a time and io.EOF at the end.
type Source interface {
	Read() (*sam.Record, error)
}

// Sink receives records.
type Sink interface {
	Write(r *sam.Record) error
}

// ioErrer is implemented by sources able to tell a failing byte stream from
// a record that cannot be decoded.
type ioErrer interface {
	IOErr() error
}

type State int

const (
	Idle State = iota
	Streaming
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Stats counts records and bases processed by a pipeline.
type Stats struct {
	Records        uint64
	Adjusted       uint64
	NoQual         uint64
	OutsideRegions uint64
	BasesReduced   uint64
	QualityLowered uint64
	ReducedTwice   uint64
	References     set.Interface
}

func NewStats() *Stats {
	return &Stats{References: set.New(set.ThreadSafe)}
}

func (s *Stats) add(r *sam.Record, c Change) {
	s.Records++
	switch c.Outcome {
	case Adjusted:
		s.Adjusted++
		s.BasesReduced += uint64(c.Reduced)
		s.QualityLowered += uint64(c.Lowered)
		s.ReducedTwice += uint64(c.ReducedTwice)
		if r.Ref != nil {
			s.References.Add(r.Ref.Name())
		}
	case NoQual:
		s.NoQual++
	case OutsideRegions:
		s.OutsideRegions++
	}
}

// Pipeline moves records from a source to a sink through an adjuster,
// strictly one record at a time.
type Pipeline struct {
	Source   Source
	Sink     Sink
	Adjuster *Adjuster
	Stats    *Stats
	// Progress is called after each written record if not nil.
	Progress func(s *Stats)
	state    State
}

func NewPipeline(src Source, dst Sink, a *Adjuster) *Pipeline {
	return &Pipeline{Source: src, Sink: dst, Adjuster: a, Stats: NewStats()}
}

// State returns the current state of the pipeline.
func (p *Pipeline) State() State {
	return p.state
}

// Run streams all records. It stops at the end of the source or at the first
// error, which is either a *MalformedRecordError or an *IOError.
func (p *Pipeline) Run() error {
	if p.state != Idle {
		return errors.New("Pipeline already run")
	}
	if p.Stats == nil {
		p.Stats = NewStats()
	}
	p.state = Streaming
	for {
		r, err := p.Source.Read()
		if err == io.EOF {
			p.state = Done
			return nil
		} else if err != nil {
			p.state = Failed
			return p.readError(err)
		}
		c := p.Adjuster.Adjust(r)
		if err = p.Sink.Write(r); err != nil {
			p.state = Failed
			return &IOError{Op: "write", Record: p.Stats.Records + 1, Err: err}
		}
		p.Stats.add(r, c)
		if p.Progress != nil {
			p.Progress(p.Stats)
		}
	}
}

func (p *Pipeline) readError(err error) error {
	n := p.Stats.Records + 1
	if ie, ok := p.Source.(ioErrer); ok {
		if ioErr := ie.IOErr(); ioErr != nil {
			return &IOError{Op: "read", Record: n, Err: ioErr}
		}
	}
	return &MalformedRecordError{Record: n, Err: err}
}

var _ Source = (*esam.Reader)(nil)
var _ Sink = (*esam.Writer)(nil)
