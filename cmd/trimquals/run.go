//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"git.sr.ht/~vejnar/TrimQuals/lib/adjust"
	"git.sr.ht/~vejnar/TrimQuals/lib/edge"
	"git.sr.ht/~vejnar/TrimQuals/lib/esam"
	"git.sr.ht/~vejnar/TrimQuals/lib/profile"
	"git.sr.ht/~vejnar/TrimQuals/lib/region"
)

const (
	programName  = "trimquals"
	progressStep = 100000
)

type Config struct {
	PathIn, PathOut  string
	Spec             edge.Spec
	NumWorker        int
	PathRegions      string
	RegionMinOverlap int
	ProfilePath      string
	ProfileFormat    string
	PathReport       string
	NoPG             bool
	CommandLine      string
	VerboseLevel     int
}

// AddCommas adds commas after every 3 characters.
func AddCommas(s string) string {
	if len(s) <= 3 {
		return s
	} else {
		return AddCommas(s[0:len(s)-3]) + "," + s[len(s)-3:]
	}
}

// TrimQuals reduces the edge qualities of all records from cfg.PathIn and writes them to cfg.PathOut.
func TrimQuals(cfg Config, logger *log.Logger) (*adjust.Stats, error) {
	timeStart := time.Now()
	if err := cfg.Spec.Validate(); err != nil {
		return nil, err
	}
	if cfg.ProfilePath != "" {
		if _, _, err := profile.ParseFormat(cfg.ProfileFormat); err != nil {
			return nil, err
		}
	}

	// Regions
	adjuster := &adjust.Adjuster{Spec: cfg.Spec}
	if cfg.PathRegions != "" {
		regions, err := region.OpenBED(cfg.PathRegions)
		if err != nil {
			return nil, err
		}
		adjuster.Regions, err = region.NewSet(regions, cfg.RegionMinOverlap)
		if err != nil {
			return nil, err
		}
		if cfg.VerboseLevel > 0 {
			timeNow := time.Now()
			logger.Printf("%.1fmin - Loaded %d region(s) from %s\n", timeNow.Sub(timeStart).Minutes(), adjuster.Regions.Len(), cfg.PathRegions)
		}
	}
	if cfg.ProfilePath != "" {
		adjuster.Profile = profile.NewProfile()
	}

	// Open input
	rd, err := esam.OpenReader(cfg.PathIn, cfg.NumWorker)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	if cfg.VerboseLevel > 0 {
		timeNow := time.Now()
		logger.Printf("%.1fmin - Opening %s (%s)\n", timeNow.Sub(timeStart).Minutes(), cfg.PathIn, rd.FileFormat)
	}

	// Open output
	header := rd.Header()
	if !cfg.NoPG {
		if header, err = esam.AddProgram(header, programName, version, cfg.CommandLine); err != nil {
			return nil, err
		}
	}
	w, err := esam.CreateWriter(cfg.PathOut, header, rd.FileFormat.Format, cfg.NumWorker)
	if err != nil {
		return nil, err
	}

	// Stream
	p := adjust.NewPipeline(rd, w, adjuster)
	if cfg.VerboseLevel > 0 {
		timeLog := time.Now()
		p.Progress = func(s *adjust.Stats) {
			if s.Records%progressStep != 0 {
				return
			}
			timeNow := time.Now()
			if timeNow.Sub(timeLog).Minutes() > 1. {
				logger.Printf("%.1fmin - %s records - %.2f Mr/hr\n", timeNow.Sub(timeStart).Minutes(), AddCommas(strconv.FormatUint(s.Records, 10)), (float64(s.Records)/timeNow.Sub(timeStart).Hours())/1000000.)
				timeLog = timeNow
			}
		}
	}
	if err = p.Run(); err != nil {
		w.Abort()
		return p.Stats, err
	}
	if err = w.Close(); err != nil {
		return p.Stats, fmt.Errorf("Failed to close output: %w", err)
	}

	// Output: Profile
	if adjuster.Profile != nil {
		if cfg.VerboseLevel > 0 {
			timeNow := time.Now()
			reduced, lowered := adjuster.Profile.Totals()
			logger.Printf("%.1fmin - Writing %s profile in %s (%d positions, %s bases reduced by %s)\n", timeNow.Sub(timeStart).Minutes(), cfg.ProfileFormat, cfg.ProfilePath, adjuster.Profile.Len(), AddCommas(strconv.FormatUint(reduced, 10)), AddCommas(strconv.FormatUint(lowered, 10)))
		}
		if err = adjuster.Profile.WriteFile(cfg.ProfilePath, cfg.ProfileFormat); err != nil {
			return p.Stats, err
		}
	}
	// Output: Report
	if cfg.PathReport != "" {
		if err = WriteReport(cfg.PathReport, p.Stats, rd.FileFormat, cfg.Spec); err != nil {
			return p.Stats, err
		}
	}
	return p.Stats, nil
}
