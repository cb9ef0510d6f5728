//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package adjust

import (
	"fmt"
)

// MalformedRecordError is returned when the source cannot decode a record.
type MalformedRecordError struct {
	// Record is the 1-based index of the failing record.
	Record uint64
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("Failed to parse record %d: %v", e.Record, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// IOError is returned when reading from the source or writing to the sink fails.
type IOError struct {
	Op     string
	Record uint64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("Failed to %s record %d: %v", e.Op, e.Record, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
