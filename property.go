package bmc

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// CompiledProperty is an executable reachability condition: a boolean
// predicate over a design signal, plus the failure message to report when
// the predicate becomes satisfiable.
type CompiledProperty struct {
	// Predicate over the signal's base symbol. The engine substitutes the
	// step-k instance before asserting it.
	Predicate Expr

	message string
}

// MessageAt returns the failure message for a property found reachable at
// step k.
func (p *CompiledProperty) MessageAt(k int) string {
	return fmt.Sprintf(p.message, k)
}

// CompileProperty resolves a property descriptor against a design's symbol
// table and builds the predicate to check at each step. Ordering operators
// always compare unsigned.
func CompileProperty(prop Property, sys *System) (*CompiledProperty, error) {
	sym, ok := sys.Symbols[prop.Signal]
	if !ok {
		return nil, errors.Errorf("property signal %q not found in design", prop.Signal)
	}
	if sym.Sort.Kind != SortBitVec {
		return nil, errors.Errorf("property signal %q is not a bit-vector", prop.Signal)
	}

	value, err := strconv.ParseInt(prop.Value, 10, 64)
	if err != nil {
		return nil, errors.Errorf("property value %q is not an integer", prop.Value)
	}

	var op BinaryOp
	switch prop.Op {
	case "==":
		op = EQ
	case "!=":
		op = NE
	case "<":
		op = ULT
	case "<=":
		op = ULE
	case ">":
		op = UGT
	case ">=":
		op = UGE
	default:
		return nil, errors.Errorf("unsupported property operator %q", prop.Op)
	}

	return &CompiledProperty{
		Predicate: NewBinaryExpr(op, sym.Term().(Expr), NewConstantExpr(uint64(value), sym.Sort.Width)),
		message:   fmt.Sprintf("property '%s %s %d' became true at step %%d", prop.Signal, prop.Op, value),
	}, nil
}
