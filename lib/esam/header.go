//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"strconv"

	"github.com/biogo/hts/sam"
)

// AddProgram returns a copy of h with a @PG line appended. The ID is made
// unique by suffixing ".1", ".2"... and PP points to the last program.
func AddProgram(h *sam.Header, name, version, command string) (*sam.Header, error) {
	nh := h.Clone()
	progs := nh.Progs()
	used := make(map[string]bool, len(progs))
	for _, p := range progs {
		used[p.UID()] = true
	}
	uid := name
	for i := 1; used[uid]; i++ {
		uid = name + "." + strconv.Itoa(i)
	}
	var prev string
	if len(progs) > 0 {
		prev = progs[len(progs)-1].UID()
	}
	if err := nh.AddProgram(sam.NewProgram(uid, name, command, prev, version)); err != nil {
		return nil, err
	}
	return nh, nil
}
