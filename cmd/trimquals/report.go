//
// Copyright (C) 2015-2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"os"

	"git.sr.ht/~vejnar/TrimQuals/lib/adjust"
	"git.sr.ht/~vejnar/TrimQuals/lib/edge"
	"git.sr.ht/~vejnar/TrimQuals/lib/esam"
)

type Report struct {
	Format                string `json:"format"`
	NumBases              int    `json:"num_bases"`
	QualReduction         uint8  `json:"qual_reduction"`
	Records               uint64 `json:"records"`
	RecordsAdjusted       uint64 `json:"records_adjusted"`
	RecordsNoQual         uint64 `json:"records_no_qual"`
	RecordsOutsideRegions uint64 `json:"records_outside_regions"`
	BasesReduced          uint64 `json:"bases_reduced"`
	QualityLowered        uint64 `json:"quality_lowered"`
	BasesReducedTwice     uint64 `json:"bases_reduced_twice"`
	References            int    `json:"references"`
}

func NewReport(stats *adjust.Stats, ff esam.FileFormat, spec edge.Spec) Report {
	return Report{
		Format:                ff.String(),
		NumBases:              spec.NumBases,
		QualReduction:         spec.QualReduction,
		Records:               stats.Records,
		RecordsAdjusted:       stats.Adjusted,
		RecordsNoQual:         stats.NoQual,
		RecordsOutsideRegions: stats.OutsideRegions,
		BasesReduced:          stats.BasesReduced,
		QualityLowered:        stats.QualityLowered,
		BasesReducedTwice:     stats.ReducedTwice,
		References:            stats.References.Size(),
	}
}

func WriteReport(pathReport string, stats *adjust.Stats, ff esam.FileFormat, spec edge.Spec) (err error) {
	report, err := json.MarshalIndent(NewReport(stats, ff, spec), "", "  ")
	if err != nil {
		return err
	}
	report = append(report, '\n')
	if pathReport != esam.StdPath {
		return os.WriteFile(pathReport, report, 0666)
	}
	_, err = os.Stderr.Write(report)
	return err
}
