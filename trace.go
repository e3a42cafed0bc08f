package bmc

import (
	"bytes"
	"fmt"
)

// TraceValue is the model value of one named symbol at one step.
type TraceValue struct {
	Name  string
	Value *ConstantExpr // bit-vector value; nil for array symbols
	Array string        // textual form of an array value
}

// TraceStep holds the value of every named symbol at one step.
type TraceStep struct {
	Step   int
	Values []TraceValue
}

// Trace is a counterexample: per-step values for every symbol-table entry,
// extracted from a satisfying assignment.
type Trace []TraceStep

// String returns the formatted counterexample report.
func (t Trace) String() string {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "--- counterexample ---")
	for _, step := range t {
		fmt.Fprintf(&buf, "  --- step %d ---\n", step.Step)
		for _, v := range step.Values {
			if v.Value != nil {
				fmt.Fprintf(&buf, "    %s: %d\n", v.Name, v.Value.Value)
			} else {
				fmt.Fprintf(&buf, "    %s: %s\n", v.Name, v.Array)
			}
		}
	}
	fmt.Fprintln(&buf, "----------------------")
	return buf.String()
}

// buildTrace extracts a per-step, per-symbol value table from a satisfying
// model. Symbol names iterate in sorted order so the trace is deterministic.
func buildTrace(model Model, names []string, steps []Bindings) (Trace, error) {
	trace := make(Trace, len(steps))
	for k, bindings := range steps {
		step := TraceStep{Step: k, Values: make([]TraceValue, 0, len(names))}
		for _, name := range names {
			switch inst := bindings[name].(type) {
			case Expr:
				value, err := model.Value(inst)
				if err != nil {
					return nil, err
				}
				step.Values = append(step.Values, TraceValue{Name: name, Value: value})
			case ArrayExpr:
				s, err := model.ArrayValue(inst)
				if err != nil {
					return nil, err
				}
				step.Values = append(step.Values, TraceValue{Name: name, Array: s})
			default:
				panic("unreachable")
			}
		}
		trace[k] = step
	}
	return trace, nil
}
