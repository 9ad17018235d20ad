// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

// History is a fixed-capacity ring of the most recent calibrated points.
// Once full, each push overwrites the oldest entry.
type History struct {
	xs    []int
	ys    []int
	next  int // slot written by the next Push
	count int
}

// NewHistory returns an empty ring holding up to capacity points.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		xs: make([]int, capacity),
		ys: make([]int, capacity),
	}
}

// Push stores p and returns the mean of the filled entries.
func (h *History) Push(p Point) Point {
	h.xs[h.next] = p.X
	h.ys[h.next] = p.Y
	h.next = (h.next + 1) % len(h.xs)
	if h.count < len(h.xs) {
		h.count++
	}
	return h.Mean()
}

// Mean averages the filled entries with integer truncation. An empty
// history yields the origin.
func (h *History) Mean() Point {
	if h.count == 0 {
		return Point{}
	}
	var sx, sy int
	for i := 0; i < h.count; i++ {
		sx += h.xs[i]
		sy += h.ys[i]
	}
	return Point{X: sx / h.count, Y: sy / h.count}
}

// Len is the number of filled entries.
func (h *History) Len() int { return h.count }

// Cap is the ring capacity.
func (h *History) Cap() int { return len(h.xs) }

// Reset empties the ring.
func (h *History) Reset() {
	clear(h.xs)
	clear(h.ys)
	h.next = 0
	h.count = 0
}
