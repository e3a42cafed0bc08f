package bmc_test

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veriword/bmc"
)

func TestChecker_Run_Reachable(t *testing.T) {
	// Toggle register: s starts at 0 and complements every step.
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 state 1 s
3 zero 1
4 init 1 2 3
5 next 1 2 -2
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
s == 1
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	checker := bmc.NewChecker(newSimSolver())
	checker.MaxSteps = 5
	result, err := checker.Run(context.Background(), sys, prop, stim)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(&bmc.Result{
		Status:  bmc.StatusReachable,
		Step:    1,
		Message: `property 's == 1' became true at step 1`,
		Trace: bmc.Trace{
			{Step: 0, Values: []bmc.TraceValue{{Name: "s", Value: bmc.NewConstantExpr(0, 1)}}},
			{Step: 1, Values: []bmc.TraceValue{{Name: "s", Value: bmc.NewConstantExpr(1, 1)}}},
		},
	}, result); diff != "" {
		t.Fatal(diff)
	}
}

func TestChecker_Run_Counter(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 8
2 zero 1
3 state 1 count
4 init 1 3 2
5 one 1
6 add 1 3 5
7 next 1 3 6
8 sort bitvec 1
9 constd 1 20
10 ugt 8 3 9
11 output 10 overflow
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
count > 20
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	checker := bmc.NewChecker(newSimSolver())
	checker.MaxSteps = 30
	result, err := checker.Run(context.Background(), sys, prop, stim)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := result.Status, bmc.StatusReachable; got != want {
		t.Fatalf("unexpected status: %s", got)
	} else if got, want := result.Step, 21; got != want {
		t.Fatalf("unexpected step: %d", got)
	} else if got, want := result.Message, `property 'count > 20' became true at step 21`; got != want {
		t.Fatalf("unexpected message: %q", got)
	}

	// The counterexample covers every step and reports both the counter and
	// the derived overflow flag.
	if got, want := len(result.Trace), 22; got != want {
		t.Fatalf("unexpected trace length: %d", got)
	}
	if diff := cmp.Diff([]bmc.TraceValue{
		{Name: "count", Value: bmc.NewConstantExpr(21, 8)},
		{Name: "overflow", Value: bmc.NewConstantExpr(1, 1)},
	}, result.Trace[21].Values); diff != "" {
		t.Fatal(diff)
	}
}

// A clocked variable follows (step div period) mod 2.
func TestChecker_Run_ClockPeriod(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 input 1 clk
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
clk == 1
[CLOCK]
clk = 2
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	result, err := bmc.NewChecker(newSimSolver()).Run(context.Background(), sys, prop, stim)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.Status, bmc.StatusReachable; got != want {
		t.Fatalf("unexpected status: %s", got)
	} else if got, want := result.Step, 2; got != want {
		t.Fatalf("unexpected step: %d", got)
	}
}

// A process assignment to a clocked variable never overrides the clock.
func TestChecker_Run_ClockPrecedence(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 input 1 clk
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
clk == 1
[PROCESS]
clk = 0
[CLOCK]
clk = 1
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	result, err := bmc.NewChecker(newSimSolver()).Run(context.Background(), sys, prop, stim)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.Status, bmc.StatusReachable; got != want {
		t.Fatalf("unexpected status: %s", got)
	} else if got, want := result.Step, 1; got != want {
		t.Fatalf("unexpected step: %d", got)
	}
}

func TestChecker_Run_BoundExhausted(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 state 1 s
3 zero 1
4 init 1 2 3
5 next 1 2 2
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
s == 1
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	checker := bmc.NewChecker(newSimSolver())
	checker.MaxSteps = 3
	result, err := checker.Run(context.Background(), sys, prop, stim)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&bmc.Result{
		Status:  bmc.StatusBoundExhausted,
		Step:    3,
		Message: `property not reachable within 3 steps`,
	}, result); diff != "" {
		t.Fatal(diff)
	}
}

func TestChecker_Run_StimulusExhausted(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 state 1 s
3 zero 1
4 init 1 2 3
5 next 1 2 2
`)
	// The process timeline ends after two driven steps; the trailing clock
	// references a signal the design does not have.
	stim := mustParseStimulus(t, `
[PROPERTY]
s == 1
[PROCESS]
x = 0
#2
[CLOCK]
clk = 4
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	checker := bmc.NewChecker(newSimSolver())
	checker.Logger = log.New(&buf, "", 0)
	result, err := checker.Run(context.Background(), sys, prop, stim)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&bmc.Result{
		Status:  bmc.StatusStimulusExhausted,
		Step:    1,
		Message: `stimulus timeline exhausted after step 1`,
	}, result); diff != "" {
		t.Fatal(diff)
	}
	if !strings.Contains(buf.String(), `clock "clk" not found in design`) {
		t.Fatalf("unexpected warning output: %q", buf.String())
	}
}

// Unresolvable process assignments warn and are skipped; the run continues.
func TestChecker_Run_StimulusWarnings(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 state 1 s
3 zero 1
4 init 1 2 3
5 next 1 2 2
6 sort bitvec 8
7 input 6 x
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
s == 1
[PROCESS]
ghost = 1
x = abc
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	checker := bmc.NewChecker(newSimSolver())
	checker.Logger = log.New(&buf, "", 0)
	checker.MaxSteps = 2
	result, err := checker.Run(context.Background(), sys, prop, stim)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.Status, bmc.StatusBoundExhausted; got != want {
		t.Fatalf("unexpected status: %s", got)
	}
	if !strings.Contains(buf.String(), `process variable "ghost" not found in design`) {
		t.Fatalf("unexpected warning output: %q", buf.String())
	}
	if !strings.Contains(buf.String(), `process value "abc" for "x" is not an integer`) {
		t.Fatalf("unexpected warning output: %q", buf.String())
	}
}

// Raising the bound never flips a reachable result, it only extends the
// search.
func TestChecker_Run_Monotonic(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 state 1 s
3 zero 1
4 init 1 2 3
5 next 1 2 -2
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
s == 1
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	for bound, want := range map[int]bmc.Status{
		0:  bmc.StatusBoundExhausted,
		1:  bmc.StatusReachable,
		10: bmc.StatusReachable,
	} {
		checker := bmc.NewChecker(newSimSolver())
		checker.MaxSteps = bound
		result, err := checker.Run(context.Background(), sys, prop, stim)
		if err != nil {
			t.Fatal(err)
		}
		if result.Status != want {
			t.Fatalf("bound %d: unexpected status: %s", bound, result.Status)
		}
		if want == bmc.StatusReachable && result.Step != 1 {
			t.Fatalf("bound %d: unexpected step: %d", bound, result.Step)
		}
	}
}

func TestChecker_Run_ContextCanceled(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 state 1 s
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
s == 1
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := bmc.NewChecker(newSimSolver()).Run(ctx, sys, prop, stim); err != context.Canceled {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Every property probe runs inside its own push/pop scope, and transition
// constraints bind each step to the previous step's instances.
func TestChecker_Run_AssertionDiscipline(t *testing.T) {
	sys := mustParseSystem(t, `
1 sort bitvec 1
2 state 1 s
3 zero 1
4 init 1 2 3
5 next 1 2 -2
`)
	stim := mustParseStimulus(t, `
[PROPERTY]
s == 1
`)
	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		t.Fatal(err)
	}

	solver := &recordingSolver{simSolver: newSimSolver()}
	checker := bmc.NewChecker(solver)
	checker.MaxSteps = 1
	if _, err := checker.Run(context.Background(), sys, prop, stim); err != nil {
		t.Fatal(err)
	}

	t.Run("Ops", func(t *testing.T) {
		if diff := cmp.Diff([]string{
			"assert", "push", "assert", "check", "pop", // step 0
			"assert", "push", "assert", "check", "pop", // step 1
		}, solver.ops); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Transition", func(t *testing.T) {
		if diff := cmp.Diff(
			bmc.NewBinaryExpr(bmc.EQ, bmc.NewSymbolExpr("s_1", 1), bmc.NewNotExpr(bmc.NewSymbolExpr("s_0", 1))),
			solver.asserts[2],
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Probe", func(t *testing.T) {
		if diff := cmp.Diff(bmc.Expr(bmc.NewSymbolExpr("s_0", 1)), solver.asserts[1]); diff != "" {
			t.Fatal(diff)
		}
	})
}

func mustParseSystem(tb testing.TB, input string) *bmc.System {
	tb.Helper()
	sys, err := bmc.NewSystemParser().Parse(strings.NewReader(input))
	if err != nil {
		tb.Fatal(err)
	}
	return sys
}

func mustParseStimulus(tb testing.TB, input string) *bmc.Stimulus {
	tb.Helper()
	stim, err := bmc.ParseStimulus(strings.NewReader(input))
	if err != nil {
		tb.Fatal(err)
	}
	return stim
}

// simSolver implements bmc.Solver by propagating concrete values through the
// deterministic assertion stream the checker produces. Equalities against a
// fresh step instance bind it; everything else must evaluate to a boolean.
type simSolver struct {
	env   map[string]uint64
	unsat bool
	stack []simFrame
}

type simFrame struct {
	env   map[string]uint64
	unsat bool
}

func newSimSolver() *simSolver {
	return &simSolver{env: make(map[string]uint64)}
}

func (s *simSolver) Assert(expr bmc.Expr) error {
	if expr, ok := expr.(*bmc.BinaryExpr); ok && expr.Op == bmc.EQ {
		if s.bind(expr.LHS, expr.RHS) || s.bind(expr.RHS, expr.LHS) {
			return nil
		}
	}

	// Width-1 equalities fold down to a bare symbol or its complement.
	if expr, ok := expr.(*bmc.SymbolExpr); ok {
		if _, bound := s.env[expr.Name]; !bound {
			s.env[expr.Name] = 1
			return nil
		}
	}
	if expr, ok := expr.(*bmc.NotExpr); ok {
		if sym, ok := expr.Expr.(*bmc.SymbolExpr); ok {
			if _, bound := s.env[sym.Name]; !bound {
				s.env[sym.Name] = 0
				return nil
			}
		}
	}

	v, ok := s.eval(expr)
	if !ok {
		return fmt.Errorf("simSolver: cannot evaluate assertion: %v", expr)
	}
	if v == 0 {
		s.unsat = true
	}
	return nil
}

// bind assigns an unbound symbol from an evaluable counterpart.
func (s *simSolver) bind(a, b bmc.Expr) bool {
	sym, ok := a.(*bmc.SymbolExpr)
	if !ok {
		return false
	}
	if _, bound := s.env[sym.Name]; bound {
		return false
	}
	v, ok := s.eval(b)
	if !ok {
		return false
	}
	s.env[sym.Name] = v
	return true
}

func (s *simSolver) eval(expr bmc.Expr) (uint64, bool) {
	switch expr := expr.(type) {
	case *bmc.ConstantExpr:
		return expr.Value, true
	case *bmc.SymbolExpr:
		v, ok := s.env[expr.Name]
		return v, ok
	case *bmc.NotExpr:
		v, ok := s.eval(expr.Expr)
		return ^v & simMask(bmc.ExprWidth(expr)), ok
	case *bmc.IteExpr:
		c, ok := s.eval(expr.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return s.eval(expr.Then)
		}
		return s.eval(expr.Else)
	case *bmc.BinaryExpr:
		l, lok := s.eval(expr.LHS)
		r, rok := s.eval(expr.RHS)
		if !lok || !rok {
			return 0, false
		}
		mask := simMask(bmc.ExprWidth(expr.LHS))
		switch expr.Op {
		case bmc.ADD:
			return (l + r) & mask, true
		case bmc.SUB:
			return (l - r) & mask, true
		case bmc.MUL:
			return (l * r) & mask, true
		case bmc.AND:
			return l & r, true
		case bmc.OR:
			return l | r, true
		case bmc.XOR:
			return l ^ r, true
		case bmc.EQ:
			return simBool(l == r), true
		case bmc.ULT:
			return simBool(l < r), true
		case bmc.ULE:
			return simBool(l <= r), true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

func (s *simSolver) Push() error {
	env := make(map[string]uint64, len(s.env))
	for k, v := range s.env {
		env[k] = v
	}
	s.stack = append(s.stack, simFrame{env: env, unsat: s.unsat})
	return nil
}

func (s *simSolver) Pop() error {
	frame := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.env, s.unsat = frame.env, frame.unsat
	return nil
}

func (s *simSolver) Check() (bool, error) { return !s.unsat, nil }

func (s *simSolver) Model() (bmc.Model, error) { return s, nil }

func (s *simSolver) Close() error { return nil }

func (s *simSolver) Value(expr bmc.Expr) (*bmc.ConstantExpr, error) {
	v, ok := s.eval(expr)
	if !ok {
		return nil, fmt.Errorf("simSolver: unbound expression: %v", expr)
	}
	return bmc.NewConstantExpr(v, bmc.ExprWidth(expr)), nil
}

func (s *simSolver) ArrayValue(expr bmc.ArrayExpr) (string, error) {
	return "", nil
}

func simMask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

func simBool(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// recordingSolver logs the solver calls the checker makes.
type recordingSolver struct {
	*simSolver
	ops     []string
	asserts []bmc.Expr
}

func (s *recordingSolver) Assert(expr bmc.Expr) error {
	s.ops = append(s.ops, "assert")
	s.asserts = append(s.asserts, expr)
	return s.simSolver.Assert(expr)
}

func (s *recordingSolver) Push() error {
	s.ops = append(s.ops, "push")
	return s.simSolver.Push()
}

func (s *recordingSolver) Pop() error {
	s.ops = append(s.ops, "pop")
	return s.simSolver.Pop()
}

func (s *recordingSolver) Check() (bool, error) {
	s.ops = append(s.ops, "check")
	return s.simSolver.Check()
}
