// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aclements/symexec/internal/rtlast"
)

func writeDesign(t *testing.T, d *rtlast.Design) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "design.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(d); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return path
}

func passThroughDesign() *rtlast.Design {
	body := &rtlast.Stmt{Kind: rtlast.StmtBlock, Stmts: []*rtlast.Stmt{
		{Kind: rtlast.StmtNonblockingAssign, LHS: "q", RHS: rtlast.Ident("d")},
		{Kind: rtlast.StmtAssert, AssertKind: rtlast.AssertImmediate,
			Predicate: rtlast.Bin(rtlast.OpLe, rtlast.Ident("q"), rtlast.Lit(4, 15))},
	}}
	top := &rtlast.Module{
		Name: "top",
		Decls: []rtlast.DataDecl{
			{Name: "d", Width: 4, Direction: rtlast.DirInput},
			{Name: "q", Width: 4, Direction: rtlast.DirInternal},
		},
		Procedurals: []*rtlast.ProceduralBlock{
			{Kind: rtlast.AlwaysFF, Name: "always_0", Body: body},
		},
	}
	return &rtlast.Design{Top: "top", Modules: map[string]*rtlast.Module{"top": top}}
}

func TestRunCleanCompletion(t *testing.T) {
	path := writeDesign(t, passThroughDesign())
	if code := run([]string{"2", path}); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
}

func TestRunZeroCyclesAccepted(t *testing.T) {
	path := writeDesign(t, passThroughDesign())
	if code := run([]string{"0", path}); code != 0 {
		t.Fatalf("run() with num_cycles=0 = %d, want 0", code)
	}
}

func TestRunNegativeCyclesRejected(t *testing.T) {
	path := writeDesign(t, passThroughDesign())
	// "--" stops flag parsing so "-1" is read as the num_cycles
	// argument rather than an unrecognized flag.
	if code := run([]string{"--", "-1", path}); code != 1 {
		t.Fatalf("run() with num_cycles=-1 = %d, want 1", code)
	}
}

func TestRunMissingDesignFile(t *testing.T) {
	if code := run([]string{"2", filepath.Join(t.TempDir(), "missing.json")}); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}
}

func TestRunBadArgs(t *testing.T) {
	if code := run([]string{"notanumber", "design.json"}); code != 1 {
		t.Fatalf("run() = %d, want 1", code)
	}
	if code := run(nil); code != 2 {
		t.Fatalf("run() with no args = %d, want 2", code)
	}
}

func TestRunFlagsFile(t *testing.T) {
	path := writeDesign(t, passThroughDesign())
	flagsPath := filepath.Join(t.TempDir(), "flags.txt")
	if err := os.WriteFile(flagsPath, []byte("-top top -j 1"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if code := run([]string{"--flags-file", flagsPath, "1", path}); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
}
