// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

import "slices"

// Median returns the middle element of a sorted copy of samples.
// For even lengths the lower middle is returned. The input is not modified.
func Median(samples []uint16) uint16 {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return sorted[(len(sorted)-1)/2]
}

// Variance is the population variance of samples around median
// (sum of squared deviations divided by n).
func Variance(samples []uint16, median uint16) int64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, v := range samples {
		d := int64(v) - int64(median)
		sum += d * d
	}
	return sum / int64(len(samples))
}

// Reliable reports whether both axes of a batch stay within limit.
func Reliable(xs, ys []uint16, mx, my uint16, limit int64) bool {
	return Variance(xs, mx) <= limit && Variance(ys, my) <= limit
}
