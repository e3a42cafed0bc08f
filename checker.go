package bmc

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
)

// DefaultMaxSteps is the default unrolling bound.
const DefaultMaxSteps = 20

// Status is the terminal outcome of an unrolling run.
type Status int

// Run outcomes.
const (
	// StatusBoundExhausted means no step within the bound satisfied the
	// property.
	StatusBoundExhausted = Status(iota)

	// StatusReachable means the property became satisfiable at Result.Step.
	StatusReachable

	// StatusStimulusExhausted means the stimulus timeline ran out of
	// segments before the bound was reached. Normal termination.
	StatusStimulusExhausted
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusBoundExhausted:
		return "bound exhausted"
	case StatusReachable:
		return "reachable"
	case StatusStimulusExhausted:
		return "stimulus exhausted"
	default:
		return fmt.Sprintf("Status<%d>", s)
	}
}

// Result is the outcome of a bounded check.
type Result struct {
	Status  Status
	Step    int // step of the counterexample, or last step driven
	Message string
	Trace   Trace // counterexample trace, set when Status is StatusReachable
}

// Checker unrolls a transition system step by step and probes the property
// at every step through a scoped solver region. A single checker drives a
// single solver session; it is not safe for concurrent use.
type Checker struct {
	Solver Solver

	// Receives soft resolution warnings: clock or process names absent from
	// the symbol table and non-integer process literals. The offending
	// constraint is skipped and the run continues.
	Logger *log.Logger

	// Unrolling bound; steps 0 through MaxSteps inclusive are checked.
	MaxSteps int
}

// NewChecker returns a new instance of Checker with warnings discarded.
func NewChecker(solver Solver) *Checker {
	return &Checker{
		Solver:   solver,
		Logger:   log.New(io.Discard, "", 0),
		MaxSteps: DefaultMaxSteps,
	}
}

// Run unrolls sys under stim and reports the first step at which prop is
// satisfiable, or that the bound or timeline was exhausted. The accumulated
// assertion sequence is fully deterministic for fixed inputs. Cancellation
// is checked at step boundaries only; a solver query in flight is not
// interrupted.
func (c *Checker) Run(ctx context.Context, sys *System, prop *CompiledProperty, stim *Stimulus) (*Result, error) {
	names := sys.SymbolNames()
	clockNames := stim.ClockNames()

	steps := make([]Bindings, 0, c.MaxSteps+1)
	segmentIndex, kInSegment := 0, 0

	for k := 0; k <= c.MaxSteps; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if segmentIndex >= len(stim.Segments) {
			return &Result{
				Status:  StatusStimulusExhausted,
				Step:    k - 1,
				Message: fmt.Sprintf("stimulus timeline exhausted after step %d", k-1),
			}, nil
		}
		segment := stim.Segments[segmentIndex]

		// Fresh symbolic instance of every symbol-table entry at step k.
		bindings := make(Bindings, len(names))
		for _, name := range names {
			bindings[name] = sys.Symbols[name].StepTerm(k)
		}
		steps = append(steps, bindings)

		if err := c.assertState(sys, steps, k); err != nil {
			return nil, err
		}
		if err := c.assertInvariant(sys, bindings); err != nil {
			return nil, err
		}
		if err := c.assertClocks(sys, stim, clockNames, bindings, k); err != nil {
			return nil, err
		}
		if err := c.assertStimulus(sys, stim, segment, bindings); err != nil {
			return nil, err
		}

		sat, trace, err := c.probe(prop, names, steps)
		if err != nil {
			return nil, err
		}
		if sat {
			return &Result{
				Status:  StatusReachable,
				Step:    k,
				Message: prop.MessageAt(k),
				Trace:   trace,
			}, nil
		}

		kInSegment++
		if segment.Duration != DurationUnbounded && kInSegment >= segment.Duration {
			segmentIndex++
			kInSegment = 0
		}
	}

	return &Result{
		Status:  StatusBoundExhausted,
		Step:    c.MaxSteps,
		Message: fmt.Sprintf("property not reachable within %d steps", c.MaxSteps),
	}, nil
}

// assertState asserts the initial constraints at step 0 and the transition
// constraints at every later step. Next-state formulas are evaluated
// strictly against the previous step's instances. States with no declared
// transition are left unconstrained at every step.
func (c *Checker) assertState(sys *System, steps []Bindings, k int) error {
	if k == 0 {
		for _, f := range sys.Init {
			if err := c.Solver.Assert(SubstituteExpr(f, steps[0])); err != nil {
				return err
			}
		}
		return nil
	}

	cur, prev := steps[k], steps[k-1]
	for _, sym := range sys.States {
		next, ok := sys.Next[sym]
		if !ok {
			continue
		}

		var constraint Expr
		switch next := next.(type) {
		case Expr:
			constraint = NewBinaryExpr(EQ, cur[sym.Name].(Expr), SubstituteExpr(next, prev))
		case ArrayExpr:
			constraint = NewArrayEqExpr(cur[sym.Name].(ArrayExpr), SubstituteArray(next, prev))
		default:
			panic("unreachable")
		}
		if err := c.Solver.Assert(constraint); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) assertInvariant(sys *System, bindings Bindings) error {
	for _, f := range sys.Invariant {
		f := SubstituteExpr(f, bindings)
		if IsConstantTrue(f) {
			continue
		}
		if err := c.Solver.Assert(f); err != nil {
			return err
		}
	}
	return nil
}

// assertClocks pins every clock variable to (k div period) mod 2 at step k.
func (c *Checker) assertClocks(sys *System, stim *Stimulus, clockNames []string, bindings Bindings, k int) error {
	for _, name := range clockNames {
		sym, ok := sys.Symbols[name]
		if !ok {
			c.Logger.Printf("warning: clock %q not found in design, constraint skipped", name)
			continue
		} else if sym.Sort.Kind != SortBitVec {
			c.Logger.Printf("warning: clock %q is not a bit-vector, constraint skipped", name)
			continue
		}

		value := uint64((k / stim.Clocks[name]) % 2)
		constraint := NewBinaryExpr(EQ, bindings[name].(Expr), NewConstantExpr(value, sym.Sort.Width))
		if err := c.Solver.Assert(constraint); err != nil {
			return err
		}
	}
	return nil
}

// assertStimulus forces the current segment's assignments at this step.
// Variables controlled by a clock are never overridden by the segment.
func (c *Checker) assertStimulus(sys *System, stim *Stimulus, segment Segment, bindings Bindings) error {
	itr := segment.Assigns.Iterator()
	for {
		key, val := itr.Next()
		if key == nil {
			return nil
		}
		name, literal := key.(string), val.(string)

		if _, ok := stim.Clocks[name]; ok {
			continue // clock precedence
		}
		sym, ok := sys.Symbols[name]
		if !ok {
			c.Logger.Printf("warning: process variable %q not found in design, constraint skipped", name)
			continue
		} else if sym.Sort.Kind != SortBitVec {
			c.Logger.Printf("warning: process variable %q is not a bit-vector, constraint skipped", name)
			continue
		}
		value, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			c.Logger.Printf("warning: process value %q for %q is not an integer, constraint skipped", literal, name)
			continue
		}

		constraint := NewBinaryExpr(EQ, bindings[name].(Expr), NewConstantExpr(uint64(value), sym.Sort.Width))
		if err := c.Solver.Assert(constraint); err != nil {
			return err
		}
	}
}

// probe checks the property at the newest step inside a scoped assertion
// region. The scope is popped on every exit path; the counterexample trace
// is extracted from the model before the pop.
func (c *Checker) probe(prop *CompiledProperty, names []string, steps []Bindings) (sat bool, trace Trace, err error) {
	if err := c.Solver.Push(); err != nil {
		return false, nil, err
	}
	defer func() {
		if e := c.Solver.Pop(); e != nil && err == nil {
			sat, trace, err = false, nil, e
		}
	}()

	bindings := steps[len(steps)-1]
	if err := c.Solver.Assert(SubstituteExpr(prop.Predicate, bindings)); err != nil {
		return false, nil, err
	}

	sat, err = c.Solver.Check()
	if err != nil || !sat {
		return false, nil, err
	}

	model, err := c.Solver.Model()
	if err != nil {
		return false, nil, err
	}
	trace, err = buildTrace(model, names, steps)
	if err != nil {
		return false, nil, err
	}
	return true, trace, nil
}
