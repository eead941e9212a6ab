// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package progress reports how many path-product combinations have
// been explored so far. It is adapted from the teacher's
// go-weave/amb/progress.go ticker-and-atomic-counter design; this
// package drops that file's stdout/stderr pipe redirection, since
// nothing in the exploration loop writes to stdout mid-run the way
// weave's arbitrary instrumented goroutines do; only a single ticker
// printing over a carriage-return-erased line remains.
package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

const resetLine = "\r\x1b[2K"

// Reporter prints a periodically-updated "N/M explored, V violations"
// line ("N explored, V violations" when the total is unknown) while an
// exploration run is in progress (spec.md §7's
// human-facing progress requirement).
type Reporter struct {
	out   io.Writer
	total int64 // 0 means unknown

	done      int64
	violation int64

	stop chan struct{}
	fin  chan struct{}
}

// NewReporter returns a Reporter writing to w. If w is a terminal
// (checked via golang.org/x/term), it prints an overwriting progress
// line every 200ms; otherwise it stays silent between Start and Stop,
// matching the convention of suppressing progress output when stderr
// is redirected to a file or pipe.
func NewReporter(w io.Writer, total int) *Reporter {
	return &Reporter{out: w, total: int64(total)}
}

// interactive reports whether w looks like a terminal; f implements
// Fd() uintptr the way *os.File does.
func interactive(w io.Writer) bool {
	type fder interface{ Fd() uintptr }
	f, ok := w.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Add records n additional combinations completed.
func (r *Reporter) Add(n int) {
	atomic.AddInt64(&r.done, int64(n))
}

// AddViolation records a combination that produced an assertion
// violation.
func (r *Reporter) AddViolation() {
	atomic.AddInt64(&r.violation, 1)
}

// Start begins printing progress in the background, if w is
// interactive. Stop must be called exactly once to clean up.
func (r *Reporter) Start() {
	r.stop = make(chan struct{})
	r.fin = make(chan struct{})
	if !interactive(r.out) {
		close(r.fin)
		return
	}

	go func() {
		defer close(r.fin)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			r.report(false)
			select {
			case <-ticker.C:
			case <-r.stop:
				r.report(true)
				return
			}
		}
	}()
}

func (r *Reporter) report(final bool) {
	done := atomic.LoadInt64(&r.done)
	violations := atomic.LoadInt64(&r.violation)
	if r.total > 0 {
		fmt.Fprintf(r.out, "%s%d/%d explored, %d violations", resetLine, done, r.total, violations)
	} else {
		fmt.Fprintf(r.out, "%s%d explored, %d violations", resetLine, done, violations)
	}
	if final {
		fmt.Fprintln(r.out)
	}
}

// Stop ends the progress goroutine and, if w is interactive, prints a
// final line.
func (r *Reporter) Stop() {
	close(r.stop)
	<-r.fin
}
