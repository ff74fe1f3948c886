// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

// MoveElement returns a copy of list with the element at from moved to to.
// All other elements keep their relative order. An out-of-range from or to
// returns an unmodified copy.
func MoveElement[T any](list []T, from, to int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) || from == to {
		return out
	}
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}
