// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cache memoizes SMT satisfiability queries keyed by a textual
// form of the query (the engine uses the whole accumulated assertion
// stack, not a single guard), so the engine may skip re-solving a path
// condition it's already seen (spec.md §6).
package cache

import "sync"

// Cache maps a query's textual key to the sat/unsat result the solver
// gave it last time.
type Cache interface {
	Get(key string) (sat bool, ok bool)
	Set(key string, sat bool)
}

// Map is the default, in-memory Cache: a mutex-guarded map, scoped to
// a single process run (spec.md §6's default when --use_cache names
// no external backend).
type Map struct {
	mu sync.RWMutex
	m  map[string]bool
}

func NewMap() *Map {
	return &Map{m: make(map[string]bool)}
}

func (c *Map) Get(key string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sat, ok := c.m[key]
	return sat, ok
}

func (c *Map) Set(key string, sat bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = sat
}
