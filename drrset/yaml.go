// YAML rule-set descriptors let a rule set be authored as data instead of Go
// code. The strict-decode idiom here — ReadFile, bytes.NewReader into a
// yaml.Decoder with KnownFields(true), then a separate validate pass —
// catches field typos (e.g. "output:" vs "outputs:") as load errors
// instead of silently-ignored fields.
package drrset

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/drrengine/drr"
	"github.com/katalvlaran/drrengine/ir"
	"github.com/katalvlaran/drrengine/ir/memir"
	"github.com/katalvlaran/drrengine/pattern"
)

// TypeSpec is a YAML-authored result type: memir's only host, so the
// descriptor speaks memir's dtype/shape vocabulary directly rather than
// routing through the generic ir.Type interface.
type TypeSpec struct {
	Dtype string  `yaml:"dtype"`
	Shape []int64 `yaml:"shape"`
}

// OpSpec is one OpCall in a YAML-authored pattern graph.
type OpSpec struct {
	Opcode  string            `yaml:"opcode"`
	Inputs  []string          `yaml:"inputs"`
	Outputs []string          `yaml:"outputs"`
	Attrs   map[string]string `yaml:"attrs,omitempty"`
	// ResultType is set only on result-pattern ops that must create a new
	// host operation (pattern.GraphBuilder.TypedOp); a pure erasure/alias
	// rule's result pattern has no Ops at all and never needs this.
	ResultType *TypeSpec `yaml:"result_type,omitempty"`
}

// PatternSpec is one side (source or result) of a YAML-authored rule.
type PatternSpec struct {
	Inputs  []string          `yaml:"inputs,omitempty"`
	Outputs []string          `yaml:"outputs"`
	Ops     []OpSpec          `yaml:"ops,omitempty"`
	Assign  map[string]string `yaml:"assign,omitempty"` // result-pattern only
	// Constraint names a builtin registered on the Builtins map passed to
	// Build; empty means the source pattern carries no constraint.
	Constraint string `yaml:"constraint,omitempty"`
}

// RuleSpec is one YAML-authored rule: a name (documentation only), a
// benefit score, the zero-based index of the source pattern's anchor op,
// and the source/result pattern specs.
type RuleSpec struct {
	Name    string      `yaml:"name"`
	Benefit int         `yaml:"benefit"`
	Anchor  int         `yaml:"anchor"`
	Source  PatternSpec `yaml:"source"`
	Result  PatternSpec `yaml:"result"`
}

// RuleSetSpec is the top-level YAML document: a named, ordered list of rules.
type RuleSetSpec struct {
	Rules []RuleSpec `yaml:"rules"`
}

// Builtins maps a constraint name referenced from YAML to its Go
// implementation. Constraint bodies are necessarily host-specific (they type
// - assert down to a concrete ir.ValueHandle implementation to read anything
// beyond shape/dtype, e.g. memir.Op.Attr), so they cannot themselves be
// authored in YAML; only their selection is data-driven.
type Builtins map[string]pattern.Constraint

// LoadRuleSetSpec reads and strictly decodes a YAML rule-set descriptor from
// path, rejecting unknown fields so a typo'd key surfaces as a load error
// rather than a silently-ignored one.
func LoadRuleSetSpec(path string) (*RuleSetSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("drrset: failed to read rule-set file: %w", err)
	}

	var spec RuleSetSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("drrset: failed to parse rule-set YAML: %w", err)
	}

	if err := validateRuleSetSpec(&spec); err != nil {
		return nil, fmt.Errorf("drrset: invalid rule-set: %w", err)
	}
	return &spec, nil
}

func validateRuleSetSpec(spec *RuleSetSpec) error {
	if len(spec.Rules) == 0 {
		return fmt.Errorf("rule set has no rules")
	}
	for i, r := range spec.Rules {
		if r.Name == "" {
			return fmt.Errorf("rules[%d]: name is required", i)
		}
		if len(r.Source.Ops) == 0 {
			return fmt.Errorf("rule %q: source pattern has no ops", r.Name)
		}
		if r.Anchor < 0 || r.Anchor >= len(r.Source.Ops) {
			return fmt.Errorf("rule %q: anchor %d out of range", r.Name, r.Anchor)
		}
		for _, op := range r.Result.Ops {
			if op.ResultType == nil && len(op.Outputs) > 0 {
				return fmt.Errorf("rule %q: result op %q has outputs but no result_type", r.Name, op.Opcode)
			}
		}
	}
	return nil
}

// Build compiles spec into a ready-to-register RuleSet, resolving any named
// constraints against builtins. It is the YAML-authored counterpart of
// hand-writing drr.New(pattern.NewGraphBuilder()....) calls directly.
func Build(spec *RuleSetSpec, builtins Builtins, opts ...Option) (*RuleSet, error) {
	rs := New(opts...)
	for _, rspec := range spec.Rules {
		r, err := compileRule(rspec, builtins)
		if err != nil {
			return nil, fmt.Errorf("drrset: rule %q: %w", rspec.Name, err)
		}
		rs.Register(r)
	}
	return rs, nil
}

func compileRule(rspec RuleSpec, builtins Builtins) (*drr.Rule, error) {
	var constraints []pattern.Constraint
	if rspec.Source.Constraint != "" {
		c, ok := builtins[rspec.Source.Constraint]
		if !ok {
			return nil, fmt.Errorf("unknown constraint %q", rspec.Source.Constraint)
		}
		constraints = append(constraints, c)
	}

	sb := pattern.NewGraphBuilder()
	for _, name := range rspec.Source.Inputs {
		sb.Input(name)
	}
	for _, op := range rspec.Source.Ops {
		sb.Op(op.Opcode, op.Inputs, op.Outputs, op.Attrs)
	}
	for _, name := range rspec.Source.Outputs {
		sb.Output(name)
	}
	source, err := sb.BuildSource(rspec.Anchor, constraints...)
	if err != nil {
		return nil, fmt.Errorf("source pattern: %w", err)
	}

	rb := pattern.NewGraphBuilder()
	for _, name := range rspec.Result.Inputs {
		rb.Input(name)
	}
	for _, op := range rspec.Result.Ops {
		if op.ResultType == nil {
			rb.Op(op.Opcode, op.Inputs, op.Outputs, op.Attrs)
			continue
		}
		types := make([]ir.Type, len(op.Outputs))
		for i := range types {
			types[i] = memir.NewType(memir.DType(op.ResultType.Dtype), op.ResultType.Shape...)
		}
		rb.TypedOp(op.Opcode, op.Inputs, op.Outputs, types, op.Attrs)
	}
	for _, name := range rspec.Result.Outputs {
		rb.Output(name)
	}
	result, err := rb.BuildResult(rspec.Result.Assign)
	if err != nil {
		return nil, fmt.Errorf("result pattern: %w", err)
	}

	return drr.New(source, result, rspec.Benefit), nil
}
