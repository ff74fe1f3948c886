// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package report

import (
	"reflect"
	"testing"
)

func TestMoveElement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"to end", 1, 3, []string{"a", "c", "d", "b"}},
		{"same index", 2, 2, []string{"a", "b", "c", "d"}},
		{"from out of range", 9, 0, []string{"a", "b", "c", "d"}},
		{"negative to", 0, -1, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []string{"a", "b", "c", "d"}
			got := MoveElement(in, tt.from, tt.to)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if !reflect.DeepEqual(in, []string{"a", "b", "c", "d"}) {
				t.Errorf("Expected input untouched, got %v", in)
			}
		})
	}
}

func TestMoveElement_Empty(t *testing.T) {
	t.Parallel()

	if got := MoveElement([]int{}, 0, 0); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}
