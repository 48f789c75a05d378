// Package drrset is the ambient rule registry and fixed-point driver: the
// pattern-driver that enumerates candidate anchor operations and iterates
// rules to fixed point, kept outside the core and treated as the caller. It
// exists so this repo has a runnable end-to-end path; cmd/drrc is its only
// caller.
//
// Its functional-option configuration surface (Option / config) and its
// single orchestrating entry point (Drive) follow a builder-style
// convention: one function, deterministic option resolution, no
// partial-cleanup attempts on error.
package drrset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/drrengine/drr"
	"github.com/katalvlaran/drrengine/internal/rrlog"
	"github.com/katalvlaran/drrengine/ir"
)

// ErrFixedPointNotReached is returned by Drive when the configured iteration
// limit is exhausted while the program is still changing. This is ambient
// safety plumbing, not a cost model — it exists purely to keep a misbehaving
// rule set (e.g. one whose result pattern re-creates its own source pattern)
// from looping forever.
var ErrFixedPointNotReached = errors.New("drrset: fixed point not reached within iteration limit")

// Option configures a RuleSet's driver behavior.
type Option func(*config)

type config struct {
	iterationLimit int
}

func defaultConfig() config {
	return config{iterationLimit: 1000}
}

// WithIterationLimit overrides the default fixed-point iteration cap.
func WithIterationLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.iterationLimit = n
		}
	}
}

// RuleSet indexes rules by their anchor opcode, highest benefit first, so a
// driver can look up every rule that could possibly match a given op in
// constant time.
type RuleSet struct {
	cfg      config
	byOpcode map[string][]*drr.Rule
}

// New returns an empty RuleSet configured by opts.
func New(opts ...Option) *RuleSet {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RuleSet{cfg: cfg, byOpcode: make(map[string][]*drr.Rule)}
}

// Register adds r to the set, keeping each opcode bucket sorted by
// descending benefit so Drive tries the most profitable rule first.
func (rs *RuleSet) Register(r *drr.Rule) {
	bucket := append(rs.byOpcode[r.AnchorOpcode()], r)
	sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Benefit() > bucket[j].Benefit() })
	rs.byOpcode[r.AnchorOpcode()] = bucket
}

// Program is the narrow view Drive needs of a host program: its current,
// live operations. ir/memir.Program satisfies this via OpHandles.
type Program interface {
	OpHandles() []ir.OpHandle
}

// Drive repeatedly scans prog's operations, applying the first matching
// rule (by descending benefit) anchored at each op's opcode, until a full
// scan produces no change (fixed point) or the configured iteration limit
// is exhausted. It returns the total number of successful rewrites applied.
//
// Drive is intentionally simple: it has no cost model and does not attempt
// to schedule rules for profitability — it is glue to make the repo
// runnable end to end, not a general-purpose optimizer pass manager.
func (rs *RuleSet) Drive(prog Program, rewriter ir.Rewriter) (int, error) {
	total := 0
	for iter := 0; iter < rs.cfg.iterationLimit; iter++ {
		// A single rewrite can erase or create operations, invalidating the
		// rest of this scan's snapshot: mutations are serialized between
		// anchors, but within one pass over a snapshot a later entry may
		// reference an op this same pass already erased.
		// Re-fetch a fresh snapshot and restart the scan after every
		// successful rewrite instead of trusting a stale one.
		applied, anchorOpcode, benefit := rs.applyFirst(prog.OpHandles(), rewriter)
		if !applied {
			return total, nil
		}
		total++
		rrlog.Debugf("applied rule anchored at %q (benefit %d)", anchorOpcode, benefit)
	}
	return total, fmt.Errorf("%w: after %d iterations, %d rewrites applied", ErrFixedPointNotReached, rs.cfg.iterationLimit, total)
}

// applyFirst scans ops in order and, for each, tries its opcode's rules
// highest-benefit first, applying (and stopping at) the first one whose
// MatchAndRewrite succeeds.
func (rs *RuleSet) applyFirst(ops []ir.OpHandle, rewriter ir.Rewriter) (applied bool, opcode string, benefit int) {
	for _, op := range ops {
		for _, r := range rs.byOpcode[op.OpcodeName()] {
			if r.MatchAndRewrite(op, rewriter) {
				return true, op.OpcodeName(), r.Benefit()
			}
		}
	}
	return false, "", 0
}
