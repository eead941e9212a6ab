// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pathexplore enumerates the index vectors of a lazy
// Cartesian product without materialising it. It is adapted from the
// teacher's aclements-go-misc/go-weave/amb package, which explores a
// tree of ambiguous choice points ("Amb(n)") in depth-first order with
// a pluggable Strategy; here the tree has a fixed, known shape (one
// choice per dimension of the product: per-always-block paths, per
// cycle, per instance — spec.md §4.4), so the odometer-style
// increment-with-carry in StrategyDFS.Next becomes the core of a
// single Cursor type rather than a recursive replay engine.
package pathexplore

// Strategy explores a fixed-shape index space, one coordinate per
// dimension. It mirrors the shape of go-weave/amb.Strategy
// (Next() bool to advance, current state read separately) while
// dropping the replay/panic machinery that package needs to support
// recursive, dynamically-discovered choice points.
type Strategy interface {
	// Next advances to the next index vector in the product and
	// reports whether one exists. The first call (after construction)
	// positions the cursor at the all-zero vector, if the product is
	// non-empty.
	Next() bool

	// Value returns the current index vector. Its contents are only
	// valid between a true-returning Next and the following Next
	// call; callers that need to retain it must copy it.
	Value() []int
}

// Cursor is a deterministic, depth-first Strategy over a fixed set of
// per-dimension sizes (spec.md §4.4's "lazy generator for memory
// discipline"). It enumerates index vectors in the same order as an
// odometer: the last dimension advances fastest, carrying into
// earlier dimensions exactly as go-weave/amb/det.go's StrategyDFS.Next
// walks curPath from its end.
type Cursor struct {
	dims  []int
	cur   []int
	first bool
	empty bool
}

// NewCursor returns a Cursor over the Cartesian product of the given
// per-dimension sizes. A zero-size dimension makes the whole product
// empty, per spec.md's requirement that infeasible or empty path
// lists simply contribute no paths rather than erroring.
func NewCursor(dims []int) *Cursor {
	c := &Cursor{dims: append([]int(nil), dims...), first: true}
	for _, d := range dims {
		if d == 0 {
			c.empty = true
		}
	}
	return c
}

func (c *Cursor) Next() bool {
	if c.empty {
		return false
	}
	if len(c.dims) == 0 {
		// A zero-dimensional product has exactly one (empty) element.
		if c.first {
			c.first = false
			c.cur = nil
			return true
		}
		return false
	}
	if c.first {
		c.first = false
		c.cur = make([]int, len(c.dims))
		return true
	}
	for i := len(c.cur) - 1; i >= 0; i-- {
		c.cur[i]++
		if c.cur[i] < c.dims[i] {
			return true
		}
		c.cur[i] = 0
	}
	c.empty = true
	return false
}

func (c *Cursor) Value() []int {
	return c.cur
}

// Decode inverts the mixed-radix encoding Cursor enumerates in: given
// a flat combination index and the same per-dimension sizes, it
// returns the digit vector that Cursor would have produced for that
// combination (last dimension least significant, fastest-varying).
// pathproduct uses this to unpack a single flat index into, e.g., a
// per-always-block path-index vector.
func Decode(idx int, dims []int) []int {
	out := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		out[i] = idx % dims[i]
		idx /= dims[i]
	}
	return out
}

// Count returns the total number of index vectors the product will
// enumerate, i.e. the product of all dimension sizes (spec.md §4.4
// "Total path count equals the product of per-CFG path counts...").
// It returns 0 if any dimension is empty, and 1 when there are no
// dimensions at all (the single empty vector Cursor yields).
func Count(dims []int) int {
	if len(dims) == 0 {
		return 1
	}
	total := 1
	for _, d := range dims {
		if d == 0 {
			return 0
		}
		total *= d
	}
	return total
}
