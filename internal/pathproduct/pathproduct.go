// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pathproduct computes the Cartesian product of per-CFG path
// lists across always blocks, clock cycles, and module instances
// (spec.md §4.4). It streams combinations lazily through a single
// pathexplore.Cursor: the full product is flattened into one
// mixed-radix space (one digit per (instance, cycle) pair, each
// ranging over that instance's single-cycle combination count), and
// a per-instance digit is itself decoded into a path-index vector
// over that instance's always blocks. This realises the same
// cross(cycles)-cross(instances)-cross(always-blocks) product the
// spec describes without separate nested generator state.
package pathproduct

import (
	"github.com/aclements/symexec/internal/cfg"
	"github.com/aclements/symexec/internal/pathexplore"
)

// InstanceCFGs is the set of per-always-block CFGs for one module
// instance, in a fixed deterministic order (spec.md §5's determinism
// requirement: the order must be stable across runs).
type InstanceCFGs struct {
	Instance string
	Graphs   []*cfg.Graph
}

// Cycle is the set of basic-block paths chosen for one clock cycle,
// one per always block of the instance, in the same order as the
// InstanceCFGs.Graphs it was generated from.
type Cycle struct {
	Paths []cfg.Path
}

// Combination is one point in the full path product: for every
// instance, the sequence of per-cycle path selections.
type Combination struct {
	Cycles map[string][]Cycle
}

// Generator lazily enumerates path-product combinations.
type Generator struct {
	instances []InstanceCFGs
	numCycles int

	singleCycleDims  [][]int // per instance: path-count per always block
	singleCycleCount []int   // per instance: product of singleCycleDims

	cursor *pathexplore.Cursor
	dims   []int // flattened (instance, cycle) -> singleCycleCount[instance]

	// per (instance, cycle) starting offset into dims/cursor digits
	offsets []int
}

// NewGenerator builds a Generator for the given per-instance CFG sets
// and cycle bound. Instances must already be in a deterministic order
// (spec.md §5).
func NewGenerator(instances []InstanceCFGs, numCycles int) *Generator {
	g := &Generator{instances: instances, numCycles: numCycles}

	for _, inst := range instances {
		dims := make([]int, len(inst.Graphs))
		for j, graph := range inst.Graphs {
			dims[j] = len(graph.Paths)
		}
		g.singleCycleDims = append(g.singleCycleDims, dims)
		g.singleCycleCount = append(g.singleCycleCount, pathexplore.Count(dims))
	}

	for i := range instances {
		g.offsets = append(g.offsets, len(g.dims))
		for c := 0; c < numCycles; c++ {
			g.dims = append(g.dims, g.singleCycleCount[i])
		}
	}
	g.cursor = pathexplore.NewCursor(g.dims)
	return g
}

// Total returns the total number of combinations this Generator will
// produce: the product, across instances, of that instance's
// per-cycle combination count raised to the cycle count (spec.md
// §4.4). It may overflow for deeply nested designs or large cycle
// counts; the spec explicitly anticipates this ("astronomical") and
// asks only that enumeration itself stay lazy, which Next/Value do
// regardless of what Total reports.
func (g *Generator) Total() int {
	total := 1
	for _, scc := range g.singleCycleCount {
		for c := 0; c < g.numCycles; c++ {
			total *= scc
		}
	}
	return total
}

// Next advances to the next combination and reports whether one
// exists.
func (g *Generator) Next() bool {
	return g.cursor.Next()
}

// Value decodes the cursor's current flat digit vector into a full
// Combination.
func (g *Generator) Value() Combination {
	digits := g.cursor.Value()
	out := Combination{Cycles: make(map[string][]Cycle, len(g.instances))}
	for i, inst := range g.instances {
		cycles := make([]Cycle, g.numCycles)
		for c := 0; c < g.numCycles; c++ {
			comboIdx := digits[g.offsets[i]+c]
			pathIdx := pathexplore.Decode(comboIdx, g.singleCycleDims[i])
			paths := make([]cfg.Path, len(pathIdx))
			for j, pIdx := range pathIdx {
				paths[j] = inst.Graphs[j].Paths[pIdx]
			}
			cycles[c] = Cycle{Paths: paths}
		}
		out.Cycles[inst.Instance] = cycles
	}
	return out
}
