// Package drrengine is a declarative rewrite rule (DRR) engine: a small,
// host-agnostic core for describing a source pattern, a result pattern, and
// the constraints linking them, then matching and applying that rule against
// any intermediate representation that implements the narrow ir.OpHandle /
// ir.ValueHandle / ir.Rewriter capability set.
//
// Everything is organized under subpackages:
//
//	ir/        — the host-IR capability interfaces the core depends on
//	ir/memir/  — a reference in-memory IR implementing those interfaces
//	pattern/   — the immutable pattern-graph model and its builder
//	match/     — the binding environment and the anchored-BFS matcher
//	rewrite/   — the five-phase rewrite applier
//	drr/       — the single polymorphic Rule type tying match+rewrite together
//	drrset/    — a rule registry, fixed-point driver, and YAML rule-set loader
//	internal/cli, cmd/drrc — a reference command-line driver
//
// A rule is authored once, against an abstract pattern graph built with
// pattern.GraphBuilder, and can then be driven against any number of
// concrete operations in any host IR that implements the ir package's
// interfaces — the core itself never depends on a concrete IR.
package drrengine
