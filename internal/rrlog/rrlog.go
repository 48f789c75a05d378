// Package rrlog is a minimal structured-logging shim for the DRR core's own
// diagnostics: non-match reasons (a routine, debug-level event) and the
// uncovered-output warning raised while applying a rewrite. It deliberately
// stays plain fmt-based with no external logging dependency, surfacing
// everything through returned errors at the API boundary instead; see
// DESIGN.md "Deliberately unwired deps" for the fuller rationale.
//
// cmd/drrc installs a colorized Sink (using fatih/color) over this same
// interface for interactive output; the core itself only ever calls
// Debugf/Warnf and never touches color.
package rrlog

import (
	"fmt"
	"os"
)

// Level distinguishes diagnostic severity.
type Level int

const (
	// LevelDebug is a non-match or other routine, expected-to-be-frequent
	// diagnostic.
	LevelDebug Level = iota
	// LevelWarn is the Phase-4 "source output uncovered" class of warning:
	// surprising, but not fatal.
	LevelWarn
)

// Sink receives formatted diagnostic lines. The default Sink writes nothing
// for LevelDebug (the core would otherwise be extremely chatty during a
// fixed-point driver pass) and writes LevelWarn lines to stderr.
type Sink func(level Level, line string)

var active Sink = defaultSink

func defaultSink(level Level, line string) {
	if level == LevelWarn {
		fmt.Fprintln(os.Stderr, line)
	}
}

// SetSink installs sink as the active diagnostic destination, returning the
// previous one so callers (tests, cmd/drrc) can restore it.
func SetSink(sink Sink) Sink {
	prev := active
	if sink != nil {
		active = sink
	}
	return prev
}

// Debugf emits a LevelDebug diagnostic.
func Debugf(format string, args ...interface{}) {
	active(LevelDebug, fmt.Sprintf(format, args...))
}

// Warnf emits a LevelWarn diagnostic.
func Warnf(format string, args ...interface{}) {
	active(LevelWarn, fmt.Sprintf(format, args...))
}
