// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine is the top-level orchestrator (spec.md §5): it
// elaborates a design once, computes the full path product across
// instances and cycles, and executes each combination independently,
// optionally in parallel, collecting assertion violations.
package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aclements/symexec/internal/cache"
	"github.com/aclements/symexec/internal/elaborate"
	"github.com/aclements/symexec/internal/exec"
	"github.com/aclements/symexec/internal/pathproduct"
	"github.com/aclements/symexec/internal/pool"
	"github.com/aclements/symexec/internal/progress"
	"github.com/aclements/symexec/internal/rtlast"
	"github.com/aclements/symexec/internal/smt"
	"github.com/aclements/symexec/internal/store"
	"github.com/aclements/symexec/internal/translate"
)

// Options configures one Execute run (spec.md §6 "Inputs / CLI options").
type Options struct {
	NumCycles            int
	StopOnFirstViolation bool
	Jobs                 int // 0 means run combinations sequentially
	ExploreTime          time.Duration
	Cache                cache.Cache
	Progress             *progress.Reporter
}

// Result summarizes one Execute run.
type Result struct {
	Combinations int
	Explored     int
	Violations   []exec.Violation
	TimedOut     bool
}

// Execute runs bounded symbolic execution over d for opts.NumCycles
// clock cycles (spec.md §1's top-level operation).
func Execute(ctx context.Context, d *rtlast.Design, opts Options) (*Result, error) {
	instances, err := elaborate.Elaborate(d)
	if err != nil {
		return nil, err
	}
	gen := elaborate.Generator(instances, opts.NumCycles)

	if opts.ExploreTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ExploreTime)
		defer cancel()
	}

	res := &Result{Combinations: gen.Total()}
	if opts.Progress != nil {
		opts.Progress.Start()
		defer opts.Progress.Stop()
	}

	var p *pool.Pool
	if opts.Jobs > 1 {
		p = pool.New(opts.Jobs)
	}

	var mu sync.Mutex
	var stop atomic.Bool
	for !stop.Load() && gen.Next() {
		select {
		case <-ctx.Done():
			res.TimedOut = true
			stop.Store(true)
			continue
		default:
		}

		combo := gen.Value()
		run := func() error {
			violations, err := runCombination(instances, combo, opts)
			if err != nil {
				return err
			}

			mu.Lock()
			res.Explored++
			if len(violations) > 0 {
				res.Violations = append(res.Violations, violations...)
			}
			mu.Unlock()

			if opts.Progress != nil {
				opts.Progress.Add(1)
				if len(violations) > 0 {
					opts.Progress.AddViolation()
				}
			}
			if len(violations) > 0 && opts.StopOnFirstViolation {
				stop.Store(true)
			}
			return nil
		}

		if p != nil {
			p.Go(run)
		} else if err := run(); err != nil {
			return res, err
		}
	}
	if p != nil {
		for _, err := range p.Wait() {
			log.Printf("engine: combination failed: %v", err)
		}
	}
	return res, nil
}

// runCombination executes one path-product combination against a
// fresh store and path condition, priming every instance's
// declarations and continuous assignments before each cycle (spec.md
// §4.1's reset discipline: "decls/continuous assignments re-executed
// from scratch before per-cycle execution").
func runCombination(instances []*elaborate.Instance, combo pathproduct.Combination, opts Options) ([]exec.Violation, error) {
	var s store.Store
	var solver smt.Solver = smt.NewBruteForce()
	if opts.Cache != nil {
		solver = &cachingSolver{inner: solver, cache: opts.Cache}
	}
	pc := smt.NewPathCondition(solver)

	var violations []exec.Violation
	if opts.NumCycles == 0 {
		// Zero cycles still primes every instance once (decls and
		// continuous assigns) but executes no procedural statement.
		s = seedInputs(instances, s, 0)
		for _, inst := range instances {
			var err error
			if s, err = runContinuousAssigns(inst, s); err != nil {
				return nil, err
			}
		}
	}
	for cycle := 0; cycle < opts.NumCycles; cycle++ {
		// Inputs get a fresh symbol and decls/continuous assigns are
		// re-evaluated every cycle; registers are untouched here and so
		// keep whatever the previous cycle's nonblocking writes left
		// them holding (spec.md §4.1).
		s = seedInputs(instances, s, cycle)
		for _, inst := range instances {
			var err error
			s, err = runContinuousAssigns(inst, s)
			if err != nil {
				return nil, err
			}
		}

		for _, inst := range instances {
			cycles, ok := combo.Cycles[inst.Path]
			if !ok || cycle >= len(cycles) {
				continue
			}
			paths := cycles[cycle].Paths
			for j, graph := range inst.Graphs {
				if j >= len(paths) {
					continue
				}
				ex := &exec.Executor{
					Store:                s,
					PC:                   pc,
					Instance:             inst.Path,
					Lookup:               inst,
					StopOnFirstViolation: opts.StopOnFirstViolation,
				}
				if err := ex.Run(graph, paths[j]); err != nil {
					return nil, err
				}
				s = ex.Store
				violations = append(violations, ex.Violations()...)
			}
		}
	}
	return violations, nil
}

// seedInputs binds every input port to a fresh symbol scoped to cycle
// and every non-input decl with an initial value to its concrete init,
// leaving everything else unbound so the first read lazily mints a
// fresh symbol. Called once per cycle so each cycle's inputs are free
// variables independent of every other cycle's (spec.md §4.1).
func seedInputs(instances []*elaborate.Instance, s store.Store, cycle int) store.Store {
	for _, inst := range instances {
		for _, d := range inst.Module.Decls {
			switch {
			case d.Direction == rtlast.DirInput:
				seed := fmt.Sprintf("%s.%s@%d", inst.Path, d.Name, cycle)
				s = s.Set(inst.Path, d.Name, store.NewSymbol(d.Width, store.FreshSymbol(seed)))
			case cycle == 0 && d.Init != nil:
				tr := translate.New(s, inst.Path, inst)
				val, st := tr.Expr(d.Init)
				s = st.Set(inst.Path, d.Name, store.NewExpression(d.Width, val))
			}
		}
	}
	return s
}

// runContinuousAssigns re-evaluates every `assign` statement in
// source order against the current store, as a block of blocking
// assignments with no control flow (spec.md §4.1, §9).
func runContinuousAssigns(inst *elaborate.Instance, s store.Store) (store.Store, error) {
	for _, ca := range inst.Module.ContinuousAssigns {
		tr := translate.New(s, inst.Path, inst)
		val, st := tr.Expr(ca.RHS)
		s = st.Set(inst.Path, ca.LHS, store.NewExpression(width(val), val))
	}
	return s, nil
}

func width(e *smt.Expr) int {
	if e.Sort == smt.SortBool {
		return 1
	}
	return e.Width
}

// cachingSolver memoizes CheckSat results keyed by the textual form
// of the accumulated assertion stack (spec.md §6 "Cache format").
type cachingSolver struct {
	inner smt.Solver
	cache cache.Cache

	stack [][]string
	model smt.Model
}

func (c *cachingSolver) Push() {
	c.inner.Push()
	c.stack = append(c.stack, nil)
}

func (c *cachingSolver) Pop() {
	c.inner.Pop()
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *cachingSolver) Assert(e *smt.Expr) {
	c.inner.Assert(e)
	top := len(c.stack) - 1
	c.stack[top] = append(c.stack[top], e.String())
}

func (c *cachingSolver) key() string {
	var parts []string
	for _, scope := range c.stack {
		parts = append(parts, scope...)
	}
	return strings.Join(parts, "\x00")
}

func (c *cachingSolver) CheckSat() smt.Result {
	c.model = nil
	key := c.key()
	if sat, ok := c.cache.Get(key); ok {
		if sat {
			return smt.Sat
		}
		return smt.Unsat
	}
	result := c.inner.CheckSat()
	if result != smt.Unknown {
		c.cache.Set(key, result == smt.Sat)
	}
	if result == smt.Sat {
		c.model = c.inner.Model()
	}
	return result
}

func (c *cachingSolver) Model() smt.Model {
	if c.model == nil && c.inner.CheckSat() == smt.Sat {
		// The last CheckSat was answered from the cache; solve now so
		// the model belongs to the current assertion stack.
		c.model = c.inner.Model()
	}
	return c.model
}

// FormatViolation renders a violation for CLI/log output, including
// the counterexample model the solver produced for it (spec.md §6
// Outputs). Model entries are rendered in sorted-by-name order: v.Model
// is a map, and Go's map iteration order is randomized per instance, so
// ranging over it directly would make two runs over the same design
// report the same violation with its variables in a different order
// (spec.md §8's determinism invariant demands byte-identical reports).
func FormatViolation(v exec.Violation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s failed at %s", v.Instance, v.Kind, v.Pos)
	if len(v.Model) > 0 {
		names := make([]string, 0, len(v.Model))
		for name := range v.Model {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString(" (")
		for i, name := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%d", name, v.Model[name])
		}
		b.WriteString(")")
	}
	return b.String()
}
