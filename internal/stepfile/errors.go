// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import stepErrors "github.com/kraklabs/stepsplitter/internal/errors"

// errDataSectionNotFound is returned verbatim by Parse when the DATA
// section cannot be located; its message is pinned to match the
// documented fatal-scenario text in spec scenario 5.
var errDataSectionNotFound = stepErrors.NewMalformedError("Invalid STEP file: DATA section not found")

// readError reports that the input file could not be read.
func readError(path string, cause error) error {
	return stepErrors.NewInputError("cannot read input file "+path, cause)
}
