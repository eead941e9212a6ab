// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package designio decodes an elaborated rtlast.Design from the
// external SystemVerilog elaboration service rtlast.go describes as
// this module's upstream boundary (spec.md §6 Inputs). This module
// never parses SystemVerilog source itself — CLI option parsing and
// source-file discovery are explicit Non-goals (spec.md §1) — so the
// only supported wire format is the JSON encoding of rtlast's own
// exported struct shape, which a separate elaboration step is
// expected to produce.
package designio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aclements/symexec/internal/rtlast"
)

// Load decodes a Design from r.
func Load(r io.Reader) (*rtlast.Design, error) {
	var d rtlast.Design
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("designio: decode: %w", err)
	}
	if d.Top == "" {
		return nil, fmt.Errorf("designio: design has no top module name")
	}
	if _, ok := d.Modules[d.Top]; !ok {
		return nil, fmt.Errorf("designio: top module %q not present in modules", d.Top)
	}
	return &d, nil
}

// LoadFile decodes a Design from the named file.
func LoadFile(path string) (*rtlast.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
