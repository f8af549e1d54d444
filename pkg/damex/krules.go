// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package damex

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// KSqrt is the default extreme-region rule, k = floor(sqrt(n)).
func KSqrt(n int) int {
	return int(math.Sqrt(float64(n)))
}

// KLog is a more conservative rule, k = floor(log(n)).
func KLog(n int) int {
	return int(math.Log(float64(n)))
}

// KFrac returns a rule that keeps a fixed fraction of the sample as
// extreme, k = floor(frac*n), at least 1.
func KFrac(frac float64) func(n int) int {
	return func(n int) int {
		k := int(frac * float64(n))
		if k < 1 {
			k = 1
		}
		return k
	}
}

// ParseKRule resolves a rule name from configuration: "sqrt", "log",
// or "frac:<x>" with x in (0, 1).
func ParseKRule(name string) (func(n int) int, error) {
	switch {
	case name == "" || name == "sqrt":
		return KSqrt, nil
	case name == "log":
		return KLog, nil
	case strings.HasPrefix(name, "frac:"):
		frac, err := strconv.ParseFloat(name[len("frac:"):], 64)
		if err != nil {
			return nil, fmt.Errorf("bad k rule %q: %w", name, err)
		}
		if !(frac > 0 && frac < 1) {
			return nil, fmt.Errorf("bad k rule %q: fraction must be in (0, 1)", name)
		}
		return KFrac(frac), nil
	}
	return nil, fmt.Errorf("unknown k rule %q", name)
}
