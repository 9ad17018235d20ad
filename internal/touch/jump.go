// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

// AcceptJump reports whether next is a plausible successor of last.
// A squared distance exactly equal to threshold² is still accepted.
func AcceptJump(next, last Point, threshold int) bool {
	dx := int64(next.X - last.X)
	dy := int64(next.Y - last.Y)
	t := int64(threshold)
	return dx*dx+dy*dy <= t*t
}
