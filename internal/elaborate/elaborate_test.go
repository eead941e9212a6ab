// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elaborate

import (
	"testing"

	"github.com/aclements/symexec/internal/rtlast"
)

func TestElaborateDiscoversInstancesInOrder(t *testing.T) {
	leaf := &rtlast.Module{Name: "leaf", Procedurals: []*rtlast.ProceduralBlock{
		{Kind: rtlast.AlwaysComb, Name: "always_0", Body: &rtlast.Stmt{Kind: rtlast.StmtBlock}},
	}}
	top := &rtlast.Module{
		Name: "top",
		Instances: []rtlast.InstanceDecl{
			{InstanceName: "b_inst", ModuleName: "leaf", Count: 1},
			{InstanceName: "a_inst", ModuleName: "leaf", Count: 2},
		},
	}
	d := &rtlast.Design{Top: "top", Modules: map[string]*rtlast.Module{"top": top, "leaf": leaf}}

	insts, err := Elaborate(d)
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}

	want := []string{"top", "top.a_inst[0]", "top.a_inst[1]", "top.b_inst"}
	if len(insts) != len(want) {
		t.Fatalf("got %d instances, want %d", len(insts), len(want))
	}
	for i, w := range want {
		if insts[i].Path != w {
			t.Errorf("instance %d = %q, want %q", i, insts[i].Path, w)
		}
	}
	if len(insts[1].Graphs) != 1 {
		t.Errorf("leaf instance has %d CFGs, want 1 (one always block)", len(insts[1].Graphs))
	}
}

func TestElaborateUnknownTopModule(t *testing.T) {
	d := &rtlast.Design{Top: "missing", Modules: map[string]*rtlast.Module{}}
	if _, err := Elaborate(d); err == nil {
		t.Fatalf("expected an error for a missing top module")
	}
}
