// Package bmc implements bounded model checking of word-level hardware
// designs. A design is loaded from a BTOR2-style text format into a symbolic
// transition system, a testbench file supplies the property to check plus a
// timed input stimulus, and the checker unrolls the system step by step,
// asking a solver oracle whether the property is reachable at each step.
package bmc

import (
	"errors"
	"fmt"
)

// Width limits of the bit-vector domain. Width-1 expressions form the
// boolean domain.
const (
	WidthBool = 1
	Width64   = 64
)

var (
	ErrSolverTimeout       = errors.New("solver timeout")
	ErrSolverCanceled      = errors.New("solver canceled")
	ErrSolverResourceLimit = errors.New("solver resource limit")
	ErrSolverUnknown       = errors.New("solver unknown result")
)

// Solver is the satisfiability oracle consumed by the checker. Assertions
// accumulate; Push/Pop manage a nested assertion scope so a property probe
// can be discarded without disturbing the accumulated path constraints.
//
// Check reports satisfiability of the accumulated assertions. An "unknown"
// verdict is surfaced as an error (ErrSolverUnknown or one of its siblings),
// never as an unsat result.
type Solver interface {
	Assert(expr Expr) error
	Push() error
	Pop() error
	Check() (sat bool, err error)

	// Model returns the satisfying assignment of the most recent
	// successful Check. Only valid until the next Assert/Push/Pop/Check.
	Model() (Model, error)

	Close() error
}

// Model is a satisfying assignment produced by a Solver.
type Model interface {
	// Value evaluates a bit-vector term to its assigned constant.
	Value(expr Expr) (*ConstantExpr, error)

	// ArrayValue renders the value assigned to an array term.
	ArrayValue(expr ArrayExpr) (string, error)
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
