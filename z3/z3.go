// Package z3 implements the solver oracle on top of an embedded Z3 solver.
//
// Width-1 expressions map to the Bool sort and wider expressions to
// bit-vector sorts. Conversion between the two domains happens at exactly
// two boundaries, toBoolAST and toBitVecAST, so the coercion rules stay
// centralized.
package z3

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/veriword/bmc"
)

/*
#cgo LDFLAGS: -lz3
#include <z3.h>
#include <stdlib.h>
*/
import "C"

// Ensure solver implements interface.
var _ bmc.Solver = (*Solver)(nil)

// Solver is a stateful solver session backed by a single Z3 solver object.
// Assertions accumulate across steps; property probes use Push/Pop scopes.
type Solver struct {
	ctx    *Context
	solver C.Z3_solver
	stats  Stats
}

// NewSolver returns a new instance of Solver.
func NewSolver() (*Solver, error) {
	ctx := NewContext()
	solver := C.Z3_mk_solver(ctx.raw)
	if err := ctx.err("Z3_mk_solver"); err != nil {
		ctx.Close()
		return nil, err
	}
	C.Z3_solver_inc_ref(ctx.raw, solver)
	return &Solver{ctx: ctx, solver: solver}, nil
}

// Close releases the underlying Z3 solver and context.
func (s *Solver) Close() error {
	C.Z3_solver_dec_ref(s.ctx.raw, s.solver)
	return s.ctx.Close()
}

// Stats returns statistics for the solver.
func (s *Solver) Stats() Stats {
	return s.stats
}

// Assert adds a boolean constraint to the current scope.
func (s *Solver) Assert(expr bmc.Expr) error {
	if bmc.ExprWidth(expr) != bmc.WidthBool {
		return fmt.Errorf("z3.Solver.Assert: constraint must be boolean, width=%d", bmc.ExprWidth(expr))
	}
	ast, err := s.ctx.toBoolAST(expr)
	if err != nil {
		return err
	}
	C.Z3_solver_assert(s.ctx.raw, s.solver, ast)
	return s.ctx.err("Z3_solver_assert")
}

// Push enters a nested assertion scope.
func (s *Solver) Push() error {
	C.Z3_solver_push(s.ctx.raw, s.solver)
	return s.ctx.err("Z3_solver_push")
}

// Pop discards the innermost assertion scope.
func (s *Solver) Pop() error {
	C.Z3_solver_pop(s.ctx.raw, s.solver, 1)
	return s.ctx.err("Z3_solver_pop")
}

// Check queries satisfiability of the accumulated assertions. An "unknown"
// verdict is returned as a distinct error, never as unsatisfiable.
func (s *Solver) Check() (bool, error) {
	t := time.Now()
	defer func() {
		s.stats.CheckN++
		s.stats.CheckTime += time.Since(t)
	}()

	ret := C.Z3_solver_check(s.ctx.raw, s.solver)
	if err := s.ctx.err("Z3_solver_check"); err != nil {
		return false, err
	} else if ret == C.Z3_L_FALSE {
		return false, nil
	} else if ret == C.Z3_L_UNDEF {
		reason := C.GoString(C.Z3_solver_get_reason_unknown(s.ctx.raw, s.solver))
		switch {
		case strings.Contains(reason, "timeout"):
			return false, bmc.ErrSolverTimeout
		case strings.Contains(reason, "canceled"):
			return false, bmc.ErrSolverCanceled
		case strings.Contains(reason, "(resource limits reached)"):
			return false, bmc.ErrSolverResourceLimit
		case strings.Contains(reason, "unknown"):
			return false, bmc.ErrSolverUnknown
		default:
			return false, fmt.Errorf("z3: %s", reason)
		}
	}
	return true, nil
}

// Model returns the satisfying assignment from the last successful Check.
// The model is only valid until the next Check or Pop.
func (s *Solver) Model() (bmc.Model, error) {
	model := C.Z3_solver_get_model(s.ctx.raw, s.solver)
	if err := s.ctx.err("Z3_solver_get_model"); err != nil {
		return nil, err
	}
	return &Model{ctx: s.ctx, raw: model}, nil
}

// Model is a satisfying assignment extracted from the solver.
type Model struct {
	ctx *Context
	raw C.Z3_model
}

// Value evaluates a bit-vector expression against the model. Unconstrained
// symbols evaluate with model completion, so a value is always produced.
func (m *Model) Value(expr bmc.Expr) (*bmc.ConstantExpr, error) {
	ast, err := m.ctx.toAST(expr)
	if err != nil {
		return nil, err
	}

	var evaluated C.Z3_ast
	C.Z3_model_eval(m.ctx.raw, m.raw, ast, C.bool(true), &evaluated)
	if err := m.ctx.err("Z3_model_eval"); err != nil {
		return nil, err
	}

	if m.ctx.isBoolAST(evaluated) {
		switch C.Z3_get_bool_value(m.ctx.raw, evaluated) {
		case C.Z3_L_TRUE:
			return bmc.NewBoolConstantExpr(true), nil
		case C.Z3_L_FALSE:
			return bmc.NewBoolConstantExpr(false), nil
		default:
			return nil, fmt.Errorf("z3.Model.Value: non-constant boolean evaluation: %s", m.ctx.astToString(evaluated))
		}
	}

	var value C.uint64_t
	if ok := C.Z3_get_numeral_uint64(m.ctx.raw, evaluated, &value); !bool(ok) {
		return nil, fmt.Errorf("z3.Model.Value: non-numeric evaluation: %s", m.ctx.astToString(evaluated))
	}
	return bmc.NewConstantExpr(uint64(value), m.ctx.bvSize(evaluated)), nil
}

// ArrayValue evaluates an array expression and returns its textual form.
func (m *Model) ArrayValue(expr bmc.ArrayExpr) (string, error) {
	ast, err := m.ctx.toArrayAST(expr)
	if err != nil {
		return "", err
	}

	var evaluated C.Z3_ast
	C.Z3_model_eval(m.ctx.raw, m.raw, ast, C.bool(true), &evaluated)
	if err := m.ctx.err("Z3_model_eval"); err != nil {
		return "", err
	}
	return m.ctx.astToString(evaluated), nil
}

// Context represents a Z3 context object that is used for constructing expressions.
type Context struct {
	raw C.Z3_context
}

// NewContext returns a new instance of Context.
func NewContext() *Context {
	config := C.Z3_mk_config()
	defer C.Z3_del_config(config)

	raw := C.Z3_mk_context(config)
	C.Z3_set_error_handler(raw, nil)
	C.Z3_set_ast_print_mode(raw, C.Z3_PRINT_SMTLIB2_COMPLIANT)
	return &Context{raw: raw}
}

// Close deletes the underlying Z3 context.
func (ctx *Context) Close() error {
	C.Z3_del_context(ctx.raw)
	return nil
}

// err returns the error for the last API call. Returns nil if last call was successful.
func (ctx *Context) err(op string) error {
	if code := C.Z3_get_error_code(ctx.raw); code != C.Z3_OK {
		return &Error{Code: int(code), Op: op, Message: C.GoString(C.Z3_get_error_msg(ctx.raw, code))}
	}
	return nil
}

// toAST returns a new instance of Z3_ast from an expression. Width-1
// expressions generally map to Bool-sorted ASTs; the one exception is an
// array read of a 1-bit element, which stays a bit-vector until a boolean
// is required.
func (ctx *Context) toAST(expr bmc.Expr) (C.Z3_ast, error) {
	switch expr := expr.(type) {
	case *bmc.ConstantExpr:
		return ctx.toConstantAST(expr)
	case *bmc.SymbolExpr:
		return ctx.toSymbolAST(expr)
	case *bmc.SelectExpr:
		return ctx.toSelectAST(expr)
	case *bmc.ConcatExpr:
		return ctx.toConcatAST(expr)
	case *bmc.ExtractExpr:
		return ctx.toExtractAST(expr)
	case *bmc.CastExpr:
		return ctx.toCastAST(expr)
	case *bmc.NotExpr:
		return ctx.toNotAST(expr)
	case *bmc.IteExpr:
		return ctx.toIteAST(expr)
	case *bmc.ArrayEqExpr:
		return ctx.toArrayEqAST(expr)
	case *bmc.BinaryExpr:
		return ctx.toBinaryAST(expr)
	default:
		return nil, fmt.Errorf("z3.Context.toAST: invalid expression type: %T", expr)
	}
}

// toBoolAST converts an expression to a Bool-sorted AST.
func (ctx *Context) toBoolAST(expr bmc.Expr) (C.Z3_ast, error) {
	ast, err := ctx.toAST(expr)
	if err != nil {
		return nil, err
	}
	if ctx.isBoolAST(ast) {
		return ast, nil
	}

	// 1-bit vector: true iff equal to 1.
	one, err := ctx.makeUint64(1, 1)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_eq(ctx.raw, ast, one), ctx.err("Z3_mk_eq")
}

// toBitVecAST converts an expression to a bit-vector-sorted AST.
func (ctx *Context) toBitVecAST(expr bmc.Expr) (C.Z3_ast, error) {
	ast, err := ctx.toAST(expr)
	if err != nil {
		return nil, err
	}
	if !ctx.isBoolAST(ast) {
		return ast, nil
	}

	whenTrue, err := ctx.makeUint64(bmc.ExprWidth(expr), 1)
	if err != nil {
		return nil, err
	}
	whenFalse, err := ctx.makeUint64(bmc.ExprWidth(expr), 0)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_ite(ctx.raw, ast, whenTrue, whenFalse), ctx.err("Z3_mk_ite")
}

func (ctx *Context) toConstantAST(expr *bmc.ConstantExpr) (C.Z3_ast, error) {
	if expr.Width == 1 {
		if expr.IsTrue() {
			return ctx.makeTrue()
		}
		return ctx.makeFalse()
	} else if expr.Width <= 64 {
		return ctx.makeUint64(expr.Width, expr.Value)
	}
	return nil, fmt.Errorf("z3.Context.toConstantAST: invalid expression width: %d", expr.Width)
}

func (ctx *Context) toSymbolAST(expr *bmc.SymbolExpr) (C.Z3_ast, error) {
	var sort C.Z3_sort
	if expr.Width == 1 {
		sort = C.Z3_mk_bool_sort(ctx.raw)
		if err := ctx.err("Z3_mk_bool_sort"); err != nil {
			return nil, err
		}
	} else {
		var err error
		if sort, err = ctx.makeBVSort(expr.Width); err != nil {
			return nil, err
		}
	}

	cname := C.CString(expr.Name)
	defer C.free(unsafe.Pointer(cname))
	nameSymbol := C.Z3_mk_string_symbol(ctx.raw, cname)
	if err := ctx.err("Z3_mk_string_symbol"); err != nil {
		return nil, err
	}
	return C.Z3_mk_const(ctx.raw, nameSymbol, sort), ctx.err("Z3_mk_const")
}

func (ctx *Context) toSelectAST(expr *bmc.SelectExpr) (C.Z3_ast, error) {
	array, err := ctx.toArrayAST(expr.Array)
	if err != nil {
		return nil, err
	}
	index, err := ctx.toBitVecAST(expr.Index)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_select(ctx.raw, array, index), ctx.err("Z3_mk_select")
}

func (ctx *Context) toConcatAST(expr *bmc.ConcatExpr) (C.Z3_ast, error) {
	msb, err := ctx.toBitVecAST(expr.MSB)
	if err != nil {
		return nil, err
	}
	lsb, err := ctx.toBitVecAST(expr.LSB)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_concat(ctx.raw, msb, lsb), ctx.err("Z3_mk_concat")
}

func (ctx *Context) toExtractAST(expr *bmc.ExtractExpr) (C.Z3_ast, error) {
	src, err := ctx.toBitVecAST(expr.Expr)
	if err != nil {
		return nil, err
	}

	// If extracting single bit, use EQ expression to convert to bool sort.
	if expr.Width == 1 {
		extractExpr := C.Z3_mk_extract(ctx.raw, C.uint(expr.Offset), C.uint(expr.Offset), src)
		if err := ctx.err("Z3_mk_extract[bool]"); err != nil {
			return nil, err
		}
		one, err := ctx.makeUint64(1, 1)
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_eq(ctx.raw, extractExpr, one), ctx.err("Z3_mk_eq")
	}

	return C.Z3_mk_extract(ctx.raw, C.uint(expr.Offset+expr.Width-1), C.uint(expr.Offset), src), ctx.err("Z3_mk_extract")
}

func (ctx *Context) toCastAST(expr *bmc.CastExpr) (C.Z3_ast, error) {
	if expr.Signed {
		return ctx.toSignedCastAST(expr)
	}
	return ctx.toUnsignedCastAST(expr)
}

func (ctx *Context) toSignedCastAST(expr *bmc.CastExpr) (C.Z3_ast, error) {
	// Convert boolean cast to if-then-else expression.
	if bmc.ExprWidth(expr.Src) == 1 {
		src, err := ctx.toBoolAST(expr.Src)
		if err != nil {
			return nil, err
		}
		minusOne := int64(-1)
		whenTrue, err := ctx.makeUint64(expr.Width, uint64(minusOne))
		if err != nil {
			return nil, err
		}
		whenFalse, err := ctx.makeUint64(expr.Width, 0)
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_ite(ctx.raw, src, whenTrue, whenFalse), ctx.err("Z3_mk_ite")
	}

	src, err := ctx.toBitVecAST(expr.Src)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_sign_ext(ctx.raw, C.uint(expr.Width-ctx.bvSize(src)), src), ctx.err("Z3_mk_sign_ext")
}

func (ctx *Context) toUnsignedCastAST(expr *bmc.CastExpr) (C.Z3_ast, error) {
	// Convert boolean cast to if-then-else expression.
	if bmc.ExprWidth(expr.Src) == 1 {
		src, err := ctx.toBoolAST(expr.Src)
		if err != nil {
			return nil, err
		}
		whenTrue, err := ctx.makeUint64(expr.Width, 1)
		if err != nil {
			return nil, err
		}
		whenFalse, err := ctx.makeUint64(expr.Width, 0)
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_ite(ctx.raw, src, whenTrue, whenFalse), ctx.err("Z3_mk_ite")
	}

	// Otherwise return zero-padding bit vector.
	src, err := ctx.toBitVecAST(expr.Src)
	if err != nil {
		return nil, err
	}
	padding, err := ctx.makeUint64(expr.Width-ctx.bvSize(src), 0)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_concat(ctx.raw, padding, src), ctx.err("Z3_mk_concat")
}

func (ctx *Context) toNotAST(expr *bmc.NotExpr) (C.Z3_ast, error) {
	// If boolean, use boolean NOT operation.
	if bmc.ExprWidth(expr.Expr) == 1 {
		src, err := ctx.toBoolAST(expr.Expr)
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_not(ctx.raw, src), ctx.err("Z3_mk_not")
	}

	src, err := ctx.toBitVecAST(expr.Expr)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_bvnot(ctx.raw, src), ctx.err("Z3_mk_bvnot")
}

func (ctx *Context) toIteAST(expr *bmc.IteExpr) (C.Z3_ast, error) {
	cond, err := ctx.toBoolAST(expr.Cond)
	if err != nil {
		return nil, err
	}

	// Both branches must carry the same sort, so 1-bit branches go through
	// the boolean domain together.
	if bmc.ExprWidth(expr.Then) == 1 {
		then, err := ctx.toBoolAST(expr.Then)
		if err != nil {
			return nil, err
		}
		els, err := ctx.toBoolAST(expr.Else)
		if err != nil {
			return nil, err
		}
		return C.Z3_mk_ite(ctx.raw, cond, then, els), ctx.err("Z3_mk_ite")
	}

	then, err := ctx.toBitVecAST(expr.Then)
	if err != nil {
		return nil, err
	}
	els, err := ctx.toBitVecAST(expr.Else)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_ite(ctx.raw, cond, then, els), ctx.err("Z3_mk_ite")
}

func (ctx *Context) toArrayEqAST(expr *bmc.ArrayEqExpr) (C.Z3_ast, error) {
	lhs, err := ctx.toArrayAST(expr.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := ctx.toArrayAST(expr.RHS)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_eq(ctx.raw, lhs, rhs), ctx.err("Z3_mk_eq")
}

func (ctx *Context) toBinaryAST(expr *bmc.BinaryExpr) (C.Z3_ast, error) {
	// Width-1 operands of the logical & equality operators live in the
	// boolean domain.
	if bmc.ExprWidth(expr.LHS) == 1 {
		switch expr.Op {
		case bmc.AND, bmc.OR, bmc.XOR, bmc.EQ:
			return ctx.toBinaryBoolAST(expr)
		}
	}

	lhs, err := ctx.toBitVecAST(expr.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := ctx.toBitVecAST(expr.RHS)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case bmc.ADD:
		return C.Z3_mk_bvadd(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvadd")
	case bmc.SUB:
		return C.Z3_mk_bvsub(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsub")
	case bmc.MUL:
		return C.Z3_mk_bvmul(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvmul")
	case bmc.UDIV:
		return C.Z3_mk_bvudiv(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvudiv")
	case bmc.SDIV:
		return C.Z3_mk_bvsdiv(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsdiv")
	case bmc.UREM:
		return C.Z3_mk_bvurem(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvurem")
	case bmc.SREM:
		return C.Z3_mk_bvsrem(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsrem")
	case bmc.AND:
		return C.Z3_mk_bvand(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvand")
	case bmc.OR:
		return C.Z3_mk_bvor(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvor")
	case bmc.XOR:
		return C.Z3_mk_bvxor(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvxor")
	case bmc.SHL:
		return C.Z3_mk_bvshl(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvshl")
	case bmc.LSHR:
		return C.Z3_mk_bvlshr(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvlshr")
	case bmc.ASHR:
		return C.Z3_mk_bvashr(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvashr")
	case bmc.EQ:
		return C.Z3_mk_eq(ctx.raw, lhs, rhs), ctx.err("Z3_mk_eq")
	case bmc.ULT:
		return C.Z3_mk_bvult(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvult")
	case bmc.ULE:
		return C.Z3_mk_bvule(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvule")
	case bmc.UGT:
		return C.Z3_mk_bvugt(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvugt")
	case bmc.UGE:
		return C.Z3_mk_bvuge(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvuge")
	case bmc.SLT:
		return C.Z3_mk_bvslt(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvslt")
	case bmc.SLE:
		return C.Z3_mk_bvsle(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsle")
	case bmc.SGT:
		return C.Z3_mk_bvsgt(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsgt")
	case bmc.SGE:
		return C.Z3_mk_bvsge(ctx.raw, lhs, rhs), ctx.err("Z3_mk_bvsge")
	default:
		return nil, fmt.Errorf("z3.Context.toBinaryAST: unexpected operation: %s", expr.Op)
	}
}

// toBinaryBoolAST handles the boolean readings of AND, OR, XOR & EQ over
// width-1 operands.
func (ctx *Context) toBinaryBoolAST(expr *bmc.BinaryExpr) (C.Z3_ast, error) {
	lhs, err := ctx.toBoolAST(expr.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := ctx.toBoolAST(expr.RHS)
	if err != nil {
		return nil, err
	}

	switch expr.Op {
	case bmc.AND:
		args := [2]C.Z3_ast{lhs, rhs}
		return C.Z3_mk_and(ctx.raw, 2, &args[0]), ctx.err("Z3_mk_and")
	case bmc.OR:
		args := [2]C.Z3_ast{lhs, rhs}
		return C.Z3_mk_or(ctx.raw, 2, &args[0]), ctx.err("Z3_mk_or")
	case bmc.XOR:
		return C.Z3_mk_xor(ctx.raw, lhs, rhs), ctx.err("Z3_mk_xor")
	case bmc.EQ:
		return C.Z3_mk_iff(ctx.raw, lhs, rhs), ctx.err("Z3_mk_iff")
	default:
		return nil, fmt.Errorf("z3.Context.toBinaryBoolAST: unexpected operation: %s", expr.Op)
	}
}

// toArrayAST returns a new instance of Z3_ast from an array expression.
// Element sorts are always bit-vectors, even for 1-bit elements; reads of
// 1-bit elements convert to the boolean domain at their use sites.
func (ctx *Context) toArrayAST(expr bmc.ArrayExpr) (C.Z3_ast, error) {
	switch expr := expr.(type) {
	case *bmc.ArraySymbolExpr:
		return ctx.toArraySymbolAST(expr)
	case *bmc.ConstArrayExpr:
		return ctx.toConstArrayAST(expr)
	case *bmc.StoreExpr:
		return ctx.toStoreAST(expr)
	default:
		return nil, fmt.Errorf("z3.Context.toArrayAST: invalid expression type: %T", expr)
	}
}

func (ctx *Context) toArraySymbolAST(expr *bmc.ArraySymbolExpr) (C.Z3_ast, error) {
	sort, err := ctx.makeArraySort(expr.IndexW, expr.ElemW)
	if err != nil {
		return nil, err
	}

	cname := C.CString(expr.Name)
	defer C.free(unsafe.Pointer(cname))
	nameSymbol := C.Z3_mk_string_symbol(ctx.raw, cname)
	if err := ctx.err("Z3_mk_string_symbol"); err != nil {
		return nil, err
	}
	return C.Z3_mk_const(ctx.raw, nameSymbol, sort), ctx.err("Z3_mk_const")
}

func (ctx *Context) toConstArrayAST(expr *bmc.ConstArrayExpr) (C.Z3_ast, error) {
	domain, err := ctx.makeBVSort(expr.IndexW)
	if err != nil {
		return nil, err
	}
	value, err := ctx.makeUint64(expr.Value.Width, expr.Value.Value)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_const_array(ctx.raw, domain, value), ctx.err("Z3_mk_const_array")
}

func (ctx *Context) toStoreAST(expr *bmc.StoreExpr) (C.Z3_ast, error) {
	array, err := ctx.toArrayAST(expr.Array)
	if err != nil {
		return nil, err
	}
	index, err := ctx.toBitVecAST(expr.Index)
	if err != nil {
		return nil, err
	}
	value, err := ctx.toBitVecAST(expr.Value)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_store(ctx.raw, array, index, value), ctx.err("Z3_mk_store")
}

func (ctx *Context) makeTrue() (C.Z3_ast, error) {
	return C.Z3_mk_true(ctx.raw), ctx.err("Z3_mk_true")
}

func (ctx *Context) makeFalse() (C.Z3_ast, error) {
	return C.Z3_mk_false(ctx.raw), ctx.err("Z3_mk_false")
}

func (ctx *Context) makeBVSort(width uint) (C.Z3_sort, error) {
	return C.Z3_mk_bv_sort(ctx.raw, C.uint(width)), ctx.err("Z3_mk_bv_sort")
}

func (ctx *Context) makeArraySort(indexWidth, elemWidth uint) (C.Z3_sort, error) {
	domain, err := ctx.makeBVSort(indexWidth)
	if err != nil {
		return nil, err
	}
	rng, err := ctx.makeBVSort(elemWidth)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_array_sort(ctx.raw, domain, rng), ctx.err("Z3_mk_array_sort")
}

func (ctx *Context) makeUint64(width uint, value uint64) (C.Z3_ast, error) {
	t, err := ctx.makeBVSort(width)
	if err != nil {
		return nil, err
	}
	return C.Z3_mk_unsigned_int64(ctx.raw, C.uint64_t(value), t), ctx.err("Z3_mk_unsigned_int64")
}

// isBoolAST returns true if the AST carries the Bool sort.
func (ctx *Context) isBoolAST(ast C.Z3_ast) bool {
	t := C.Z3_get_sort(ctx.raw, ast)
	return C.Z3_get_sort_kind(ctx.raw, t) == C.Z3_BOOL_SORT
}

// bvSize returns the bit width of a bit-vector-sorted AST.
func (ctx *Context) bvSize(expr C.Z3_ast) uint {
	t := C.Z3_get_sort(ctx.raw, expr)
	if err := ctx.err("Z3_get_sort"); err != nil {
		panic(err)
	}
	sz := uint(C.Z3_get_bv_sort_size(ctx.raw, t))
	if err := ctx.err("Z3_get_bv_sort_size"); err != nil {
		panic(err)
	}
	return sz
}

func (ctx *Context) astToString(ast C.Z3_ast) string {
	return C.GoString(C.Z3_ast_to_string(ctx.raw, ast))
}

// Error represents an error from the Z3 API.
type Error struct {
	Code    int
	Op      string
	Message string
}

// Error returns the error as a string.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, e.Message, e.Code)
}

// Possible error codes.
const (
	ErrorCodeOK = iota
	ErrorCodeSortError
	ErrorCodeIOB
	ErrorCodeInvalidArg
	ErrorCodeParserError
	ErrorCodeNoParser
	ErrorCodeInvalidPattern
	ErrorCodeMemoutFail
	ErrorCodeFileAccessError
	ErrorCodeInternalFatal
	ErrorCodeInvalidUsage
	ErrorCodeDecRefError
	ErrorCodeException
)

// Stats holds cumulative solver query statistics.
type Stats struct {
	CheckN    int
	CheckTime time.Duration
}
