// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import "testing"

func TestStoreGetSet(t *testing.T) {
	var s Store
	if _, ok := s.Get("top", "count"); ok {
		t.Fatalf("empty store has a binding for count")
	}

	s = s.Set("top", "count", NewConcrete(8, 3))
	v, ok := s.Get("top", "count")
	if !ok || v.Kind != Concrete || v.Width != 8 {
		t.Fatalf("Get after Set = %+v, %v", v, ok)
	}

	s2 := s.Set("top", "count", NewConcrete(8, 4))
	if v, _ := s.Get("top", "count"); v.bits != 3 {
		t.Errorf("original store mutated: count = %d, want 3", v.bits)
	}
	if v, _ := s2.Get("top", "count"); v.bits != 4 {
		t.Errorf("extended store: count = %d, want 4", v.bits)
	}
}

func TestStoreFlatten(t *testing.T) {
	var s Store
	for i := 0; i < chainBudget*3; i++ {
		s = s.Set("top", "count", NewConcrete(8, uint64(i)))
	}
	v, ok := s.Get("top", "count")
	if !ok || v.bits != uint64(chainBudget*3-1) {
		t.Fatalf("after many sets, count = %+v, want %d", v, chainBudget*3-1)
	}
}

func TestStoreTwoLevel(t *testing.T) {
	var s Store
	s = s.Set("dut.fifo", "full", NewConcrete(1, 1))
	s = s.Set("dut.arb", "full", NewConcrete(1, 0))

	v1, _ := s.Get("dut.fifo", "full")
	v2, _ := s.Get("dut.arb", "full")
	if v1.bits == v2.bits {
		t.Fatalf("signals in different instances aliased: %v == %v", v1, v2)
	}
}

func TestFreshSymbolDeterministic(t *testing.T) {
	a := FreshSymbol("top.count#0")
	b := FreshSymbol("top.count#0")
	c := FreshSymbol("top.count#1")
	if a != b {
		t.Errorf("FreshSymbol not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Errorf("FreshSymbol collided across different seeds")
	}
}
