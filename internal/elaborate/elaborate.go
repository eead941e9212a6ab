// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elaborate walks a rtlast.Design's module hierarchy starting
// at its top module, discovering every module instance and building
// the per-always-block CFG set for each (spec.md §4.4's "per
// instance" dimension of the path product). It is grounded in the
// original implementation's module_count_sv/names_list walk, which
// recursively counts instantiations starting from the top module;
// here the walk runs over an already-resolved rtlast.Design rather
// than a raw parse tree, so it can build the hierarchical instance
// path directly instead of reconstructing it heuristically.
package elaborate

import (
	"fmt"
	"sort"

	"github.com/aclements/symexec/internal/cfg"
	"github.com/aclements/symexec/internal/pathproduct"
	"github.com/aclements/symexec/internal/rtlast"
)

// Instance is one discovered module instance: its full hierarchical
// path (e.g. "top.arb0"), the module it instantiates, and that
// module's declarations, continuous assigns, and per-always-block
// CFGs.
type Instance struct {
	Path   string
	Module *rtlast.Module
	Graphs []*cfg.Graph
}

// Width implements translate.Lookup by consulting the declarations of
// the instance's own module.
func (inst *Instance) Width(instancePath, signal string) (int, bool) {
	if instancePath != inst.Path {
		return 0, false
	}
	for _, d := range inst.Module.Decls {
		if d.Name == signal {
			return d.Width, true
		}
	}
	return 0, false
}

// Elaborate discovers every module instance reachable from d.Top, in
// deterministic pre-order (spec.md §5's determinism requirement), and
// builds each instance's per-always-block CFGs.
func Elaborate(d *rtlast.Design) ([]*Instance, error) {
	top, ok := d.Modules[d.Top]
	if !ok {
		return nil, fmt.Errorf("elaborate: top module %q not found", d.Top)
	}
	var out []*Instance
	if err := walk(d, d.Top, top, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(d *rtlast.Design, path string, m *rtlast.Module, out *[]*Instance) error {
	inst := &Instance{Path: path, Module: m}
	for _, pb := range m.Procedurals {
		inst.Graphs = append(inst.Graphs, cfg.Build(pb.Body))
	}
	*out = append(*out, inst)

	// Sort instance declarations by name so re-running elaboration on
	// the same design always produces the same instance order,
	// regardless of map iteration or parser traversal order upstream.
	decls := append([]rtlast.InstanceDecl(nil), m.Instances...)
	sort.Slice(decls, func(i, j int) bool { return decls[i].InstanceName < decls[j].InstanceName })

	for _, decl := range decls {
		child, ok := d.Modules[decl.ModuleName]
		if !ok {
			return fmt.Errorf("elaborate: %s instantiates unknown module %q", path, decl.ModuleName)
		}
		count := decl.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			childPath := path + "." + decl.InstanceName
			if decl.Count > 1 {
				childPath = fmt.Sprintf("%s.%s[%d]", path, decl.InstanceName, i)
			}
			if err := walk(d, childPath, child, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Generator builds a pathproduct.Generator over every discovered
// instance's CFGs (spec.md §4.4).
func Generator(instances []*Instance, numCycles int) *pathproduct.Generator {
	cfgs := make([]pathproduct.InstanceCFGs, len(instances))
	for i, inst := range instances {
		cfgs[i] = pathproduct.InstanceCFGs{Instance: inst.Path, Graphs: inst.Graphs}
	}
	return pathproduct.NewGenerator(cfgs, numCycles)
}
