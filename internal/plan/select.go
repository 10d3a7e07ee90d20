// SPDX-License-Identifier: MIT

package plan

import (
	"strconv"
	"strings"
)

// Indexed is a plan with its position in the configured plan list.
type Indexed struct {
	Index int
	Plan  Plan
}

// Select picks plans by plan code, the zero-based index written as a
// string. No codes selects every plan. Duplicate codes are kept once.
func Select(plans []Plan, codes []string) ([]Indexed, error) {
	if len(codes) == 0 {
		out := make([]Indexed, len(plans))
		for i, p := range plans {
			out[i] = Indexed{Index: i, Plan: p}
		}
		return out, nil
	}

	seen := make(map[int]bool, len(codes))
	out := make([]Indexed, 0, len(codes))
	for _, code := range codes {
		i, err := strconv.Atoi(strings.TrimSpace(code))
		if err != nil || i < 0 || i >= len(plans) {
			return nil, invalid("planCode", "%q does not name one of %d plans", code, len(plans))
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, Indexed{Index: i, Plan: plans[i]})
	}
	return out, nil
}
