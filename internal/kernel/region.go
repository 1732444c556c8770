// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "fmt"

// Region is a contiguous span of linear pixel indices a stage is
// dispatched over. When Interior is set, indices falling on the first or
// last column of a row are skipped, so the span together with the guard
// covers exactly the pixels that have all eight neighbours in bounds.
type Region struct {
	// Offset is the first linear index of the span.
	Offset int

	// Count is the number of linear indices in the span.
	Count int

	// Width is the row length used by the column guard.
	Width int

	// Interior enables the column guard.
	Interior bool
}

// FullRegion covers every pixel of a width×height frame.
func FullRegion(width, height int) Region {
	return Region{Offset: 0, Count: width * height, Width: width}
}

// InteriorRegion covers the pixels of a width×height frame that are not on
// the outermost one-pixel ring. The span starts one row plus one pixel into
// the frame and is shrunk by the same amount at the end. Frames narrower or
// shorter than three pixels have no interior.
func InteriorRegion(width, height int) Region {
	if width < 3 || height < 3 {
		return Region{Width: width, Interior: true}
	}
	return Region{
		Offset:   width + 1,
		Count:    width*height - 2*(width+1),
		Width:    width,
		Interior: true,
	}
}

// End returns one past the last linear index of the span.
func (r Region) End() int { return r.Offset + r.Count }

// Empty reports whether the span holds no indices.
func (r Region) Empty() bool { return r.Count <= 0 }

// Contains reports whether linear index i is processed by a stage
// dispatched over r.
func (r Region) Contains(i int) bool {
	if i < r.Offset || i >= r.End() {
		return false
	}
	if r.Interior {
		x := i % r.Width
		return x != 0 && x != r.Width-1
	}
	return true
}

// Clip returns the part of [lo, hi) that lies inside the span.
func (r Region) Clip(lo, hi int) (int, int) {
	lo = max(lo, r.Offset)
	hi = min(hi, r.End())
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// String returns a compact description for logs.
func (r Region) String() string {
	kind := "full"
	if r.Interior {
		kind = "interior"
	}
	return fmt.Sprintf("%s[%d:%d]", kind, r.Offset, r.End())
}
