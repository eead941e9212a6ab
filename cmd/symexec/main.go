// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command symexec performs bounded symbolic execution of an
// elaborated SystemVerilog design, checking immediate assertions over
// every combination of clock cycle, module instance, and always-block
// path (spec.md §1).
//
// Usage:
//
//	symexec [options] <num_cycles> <design-file>
//
// <design-file> is the JSON encoding of an already-elaborated
// rtlast.Design (see internal/designio); this command does not parse
// SystemVerilog source itself (spec.md §1 Non-goals: "CLI option
// parsing, source-file discovery" are explicitly out of the core's
// scope, so -I/-D/--sv below are accepted and, with -B, logged; this
// command does not otherwise use them).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	shellwords "github.com/kballard/go-shellquote"

	"github.com/aclements/symexec/internal/cache"
	"github.com/aclements/symexec/internal/designio"
	"github.com/aclements/symexec/internal/engine"
	"github.com/aclements/symexec/internal/progress"
)

// stringList accumulates repeated -I/-D occurrences, the same way the
// teacher's multi-value flags do (e.g. rtcheck's -debugfuncs, taken
// as a comma list; here each flag occurrence appends instead).
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("symexec", flag.ContinueOnError)

	var (
		includes    stringList
		defines     stringList
		top         = fs.String("top", "top", "top module name")
		useSV       = fs.Bool("sv", false, "enable the SystemVerilog parsing path of the external elaborator")
		useCache    = fs.Bool("use_cache", false, "memoize guard satisfiability across paths in this process")
		cacheAddr   = fs.String("cache_addr", "", "redis `host:port` backing --use_cache (default: in-process map)")
		exploreTime = fs.Duration("explore_time", 0, "wall-clock exploration budget, e.g. 30s (0 = unbounded)")
		debug       = fs.Bool("B", false, "verbose state tracing")
		debugLong   = fs.Bool("debug", false, "alias of -B")
		stopFirst   = fs.Bool("stop-on-first", false, "stop exploring after the first violation")
		jobs        = fs.Int("j", 1, "combinations to execute concurrently")
		flagsFile   = fs.String("flags-file", "", "read additional shell-quoted flags from `file`")
	)
	fs.Var(&includes, "I", "add `path` to the elaborator's include search list")
	fs.Var(&defines, "D", "define `macro` for the elaborator")

	// A lone pre-scan for --flags-file, so its contents can be spliced
	// in ahead of args and parsed together in one pass: flag.Parse
	// lets a later occurrence of a flag override an earlier one, so
	// putting the file's tokens first means explicit command-line
	// flags still win.
	if f := preScanFlagsFile(args); f != "" {
		extra, err := readFlagsFile(f)
		if err != nil {
			log.Printf("symexec: %v", err)
			return 1
		}
		args = append(extra, args...)
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: symexec [options] <num_cycles> <design-file>")
		fs.PrintDefaults()
		return 2
	}
	numCycles, err := strconv.Atoi(fs.Arg(0))
	if err != nil || numCycles < 0 {
		log.Printf("symexec: invalid num_cycles %q", fs.Arg(0))
		return 1
	}
	designPath := fs.Arg(1)

	if *debug || *debugLong {
		log.SetFlags(log.Lmicroseconds | log.Lshortfile)
		log.Printf("symexec: includes=%v defines=%v sv=%v top=%s", []string(includes), []string(defines), *useSV, *top)
	}

	d, err := designio.LoadFile(designPath)
	if err != nil {
		log.Printf("symexec: %v", err)
		return 1
	}
	d.Top = *top

	var c cache.Cache
	if *useCache {
		if *cacheAddr != "" {
			r := cache.NewRedis(context.Background(), *cacheAddr)
			defer r.Close()
			c = r
		} else {
			c = cache.NewMap()
		}
	}

	opts := engine.Options{
		NumCycles:            numCycles,
		StopOnFirstViolation: *stopFirst,
		Jobs:                 *jobs,
		ExploreTime:          *exploreTime,
		Cache:                c,
		Progress:             progress.NewReporter(os.Stderr, 0),
	}

	res, err := engine.Execute(context.Background(), d, opts)
	if err != nil {
		log.Printf("symexec: %v", err)
		return 1
	}

	for _, v := range res.Violations {
		fmt.Println(engine.FormatViolation(v))
	}
	fmt.Printf("%d/%d combinations explored, %d violations\n", res.Explored, res.Combinations, len(res.Violations))

	if res.TimedOut {
		log.Printf("symexec: exploration budget (%s) exceeded", *exploreTime)
		return 1
	}
	return 0
}

// preScanFlagsFile looks for a --flags-file (or -flags-file) value in
// args without otherwise touching flag-parsing state, so its contents
// can be merged into args before the real parse happens.
func preScanFlagsFile(args []string) string {
	for i, a := range args {
		switch {
		case a == "-flags-file" || a == "--flags-file":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-flags-file="):
			return strings.TrimPrefix(a, "-flags-file=")
		case strings.HasPrefix(a, "--flags-file="):
			return strings.TrimPrefix(a, "--flags-file=")
		}
	}
	return ""
}

// readFlagsFile reads path and tokenizes its contents the way a shell
// would, so a flags file can mix -I/-D/other options across multiple
// lines (spec.md §6's CLI surface, expanded with a flags-file option
// per the teacher's direct dependency on go-shellquote).
func readFlagsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flags file: %w", err)
	}
	fields, err := shellwords.Split(string(data))
	if err != nil {
		return nil, fmt.Errorf("tokenizing flags file %s: %w", path, err)
	}
	return fields, nil
}
