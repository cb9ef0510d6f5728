//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// trimquals lowers the base qualities at the edges of aligned reads.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"git.sr.ht/~vejnar/TrimQuals/lib/edge"
	"git.sr.ht/~vejnar/TrimQuals/lib/esam"
)

var version = "DEV"

const usageText = `trimquals - Reduce the qualities of the bases located in the edges

Usage:
  trimquals [options] [input (default: - (stdin))] [output (default: - (stdout))]

Input is SAM (plain, gzip or BGZF compressed) or BGZF compressed BAM. CRAM and
uncompressed BAM are recognized but not decoded: convert them to BAM first.
The output is written in the input format.

Options:
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
	flag.PrintDefaults()
}

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var verbose, printVersion, noPG bool
	flag.StringVar(&pathReport, "path_report", "", "Write report to path (stderr with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of BGZF worker(s) for BAM input and output")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	flag.BoolVar(&noPG, "no_pg", false, "Do not add a @PG line to the output header")
	// Arguments: Edges
	var numBases, qualReductionRaw int
	flag.IntVar(&numBases, "num_bases", edge.DefaultNumBases, "Number of bases to process from edges")
	flag.IntVar(&qualReductionRaw, "qual_reduction", edge.DefaultQualReduction, "Quality reduction factor (0 to 255)")
	// Arguments: Regions
	var pathRegions string
	var regionMinOverlap int
	flag.StringVar(&pathRegions, "path_regions", "", "Path to BED file: only reads overlapping these regions are processed (all reads are output)")
	flag.IntVar(&regionMinOverlap, "region_min_overlap", 1, "Minimum total overlap of the read with the region(s)")
	// Arguments: Profile
	var profilePath, profileFormat string
	flag.StringVar(&profilePath, "profile_path", "", "Path to reduction profile output (per read position)")
	flag.StringVar(&profileFormat, "profile_format", "csv", "Profile output format: 'csv' or 'binary', optionally compressed with '+lz4', '+lz4hc' or '+zst'")
	// Arguments: Parse
	flag.Usage = usage
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}

	// Check arguments
	if qualReductionRaw < 0 || qualReductionRaw > 255 {
		log.Fatalf("Quality reduction must be between 0 and 255 (got %d)", qualReductionRaw)
	}
	spec := edge.Spec{NumBases: numBases, QualReduction: uint8(qualReductionRaw)}
	if err := spec.Validate(); err != nil {
		log.Fatal(err)
	}
	if regionMinOverlap < 1 {
		log.Fatal("Minimum region overlap must be at least 1")
	}
	args := flag.Args()
	if len(args) > 2 {
		log.Fatalf("Too many arguments: %s", strings.Join(args[2:], " "))
	}
	pathIn, pathOut := esam.StdPath, esam.StdPath
	if len(args) > 0 {
		pathIn = args[0]
	}
	if len(args) > 1 {
		pathOut = args[1]
	}
	if pathIn != esam.StdPath {
		if _, err := os.Stat(pathIn); os.IsNotExist(err) {
			log.Fatalln(pathIn, "not found")
		}
	}

	cfg := Config{
		PathIn:           pathIn,
		PathOut:          pathOut,
		Spec:             spec,
		NumWorker:        nWorker,
		PathRegions:      pathRegions,
		RegionMinOverlap: regionMinOverlap,
		ProfilePath:      profilePath,
		ProfileFormat:    profileFormat,
		PathReport:       pathReport,
		NoPG:             noPG,
		CommandLine:      strings.Join(os.Args, " "),
		VerboseLevel:     verboseLevel,
	}

	// Diagnostics on stderr: stdout may carry the records
	logger := log.New(os.Stderr, "", 0)
	timeStart := time.Now()
	stats, err := TrimQuals(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}

	// Verbose
	if verboseLevel > 0 {
		timeEnd := time.Now()
		logger.Printf("%.1fmin - Done %s records, %s adjusted.\n", timeEnd.Sub(timeStart).Minutes(), AddCommas(fmt.Sprint(stats.Records)), AddCommas(fmt.Sprint(stats.Adjusted)))
	}
}
