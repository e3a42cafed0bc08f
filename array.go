package bmc

import (
	"fmt"
	"strings"
)

// ArrayExpr represents a symbolic array of bit-vector elements addressed by
// bit-vector indexes.
type ArrayExpr interface {
	Term
	array()

	// IndexWidth returns the bit width of the array's index domain.
	IndexWidth() uint

	// ElemWidth returns the bit width of the array's elements.
	ElemWidth() uint
}

func (*ArraySymbolExpr) array() {}
func (*ConstArrayExpr) array()  {}
func (*StoreExpr) array()       {}

func (*ArraySymbolExpr) term() {}
func (*ConstArrayExpr) term()  {}
func (*StoreExpr) term()       {}

// ArraySymbolExpr is a named symbolic array variable.
type ArraySymbolExpr struct {
	Name   string
	IndexW uint
	ElemW  uint
}

// NewArraySymbolExpr returns a new instance of ArraySymbolExpr.
func NewArraySymbolExpr(name string, indexWidth, elemWidth uint) *ArraySymbolExpr {
	assert(indexWidth > 0, "array symbol %q: index width cannot be zero", name)
	assert(elemWidth > 0, "array symbol %q: element width cannot be zero", name)
	return &ArraySymbolExpr{Name: name, IndexW: indexWidth, ElemW: elemWidth}
}

// IndexWidth returns the bit width of the array's index domain.
func (e *ArraySymbolExpr) IndexWidth() uint { return e.IndexW }

// ElemWidth returns the bit width of the array's elements.
func (e *ArraySymbolExpr) ElemWidth() uint { return e.ElemW }

// String returns the string representation of the expression.
func (e *ArraySymbolExpr) String() string { return e.Name }

// ConstArrayExpr is an array holding the same value at every index.
type ConstArrayExpr struct {
	Value  *ConstantExpr
	IndexW uint
}

// NewConstArrayExpr returns a new instance of ConstArrayExpr.
func NewConstArrayExpr(value *ConstantExpr, indexWidth uint) *ConstArrayExpr {
	assert(indexWidth > 0, "const array: index width cannot be zero")
	return &ConstArrayExpr{Value: value, IndexW: indexWidth}
}

// IndexWidth returns the bit width of the array's index domain.
func (e *ConstArrayExpr) IndexWidth() uint { return e.IndexW }

// ElemWidth returns the bit width of the array's elements.
func (e *ConstArrayExpr) ElemWidth() uint { return e.Value.Width }

// String returns the string representation of the expression.
func (e *ConstArrayExpr) String() string {
	return fmt.Sprintf("(const-array %s %d)", e.Value, e.IndexW)
}

// StoreExpr is an array equal to Array everywhere except Index, where it
// holds Value.
type StoreExpr struct {
	Array ArrayExpr
	Index Expr
	Value Expr
}

// NewStoreExpr returns a new instance of StoreExpr.
func NewStoreExpr(array ArrayExpr, index, value Expr) ArrayExpr {
	assert(ExprWidth(index) == array.IndexWidth(), "store: index width mismatch: %d != %d", ExprWidth(index), array.IndexWidth())
	assert(ExprWidth(value) == array.ElemWidth(), "store: value width mismatch: %d != %d", ExprWidth(value), array.ElemWidth())

	// Storing the value an array already holds everywhere is a no-op.
	if array, ok := array.(*ConstArrayExpr); ok {
		if value, ok := value.(*ConstantExpr); ok && value.Value == array.Value.Value {
			return array
		}
	}
	return &StoreExpr{Array: array, Index: index, Value: value}
}

// IndexWidth returns the bit width of the array's index domain.
func (e *StoreExpr) IndexWidth() uint { return e.Array.IndexWidth() }

// ElemWidth returns the bit width of the array's elements.
func (e *StoreExpr) ElemWidth() uint { return e.Array.ElemWidth() }

// String returns the string representation of the expression.
func (e *StoreExpr) String() string {
	return fmt.Sprintf("(store %s %s %s)", e.Array, e.Index, e.Value)
}

// SelectExpr reads the element of an array at a given index. It is a scalar
// expression whose width is the array's element width.
type SelectExpr struct {
	Array ArrayExpr
	Index Expr
}

// NewSelectExpr returns a new, possibly folded, array read expression.
func NewSelectExpr(array ArrayExpr, index Expr) Expr {
	assert(ExprWidth(index) == array.IndexWidth(), "select: index width mismatch: %d != %d", ExprWidth(index), array.IndexWidth())

	switch array := array.(type) {
	case *ConstArrayExpr:
		return array.Value
	case *StoreExpr:
		// A read at the exact stored index yields the stored value. A read
		// that provably misses the store falls through to the inner array.
		if cmp := CompareExpr(index, array.Index); cmp == 0 {
			return array.Value
		} else if IsConstantExpr(index) && IsConstantExpr(array.Index) {
			return NewSelectExpr(array.Array, index)
		}
	}
	return &SelectExpr{Array: array, Index: index}
}

// String returns the string representation of the expression.
func (e *SelectExpr) String() string {
	return fmt.Sprintf("(select %s %s)", e.Array, e.Index)
}

// ArrayEqExpr represents the extensional equality of two arrays. It is a
// boolean (width-1) expression.
type ArrayEqExpr struct {
	LHS ArrayExpr
	RHS ArrayExpr
}

// NewArrayEqExpr returns a new instance of ArrayEqExpr.
func NewArrayEqExpr(lhs, rhs ArrayExpr) Expr {
	assert(lhs.IndexWidth() == rhs.IndexWidth(), "array eq: index width mismatch: %d != %d", lhs.IndexWidth(), rhs.IndexWidth())
	assert(lhs.ElemWidth() == rhs.ElemWidth(), "array eq: element width mismatch: %d != %d", lhs.ElemWidth(), rhs.ElemWidth())

	if CompareArrayExpr(lhs, rhs) == 0 {
		return NewBoolConstantExpr(true)
	}
	return &ArrayEqExpr{LHS: lhs, RHS: rhs}
}

// String returns the string representation of the expression.
func (e *ArrayEqExpr) String() string {
	return fmt.Sprintf("(array-eq %s %s)", e.LHS, e.RHS)
}

// CompareArrayExpr returns an integer comparing two array expressions.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareArrayExpr(a, b ArrayExpr) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := arrayExprKind(a), arrayExprKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *ArraySymbolExpr:
		return compareArraySymbolExpr(a, b.(*ArraySymbolExpr))
	case *ConstArrayExpr:
		return compareConstArrayExpr(a, b.(*ConstArrayExpr))
	case *StoreExpr:
		return compareStoreExpr(a, b.(*StoreExpr))
	default:
		panic("unreachable")
	}
}

func compareArraySymbolExpr(a, b *ArraySymbolExpr) int {
	if cmp := strings.Compare(a.Name, b.Name); cmp != 0 {
		return cmp
	}
	if a.IndexW < b.IndexW {
		return -1
	} else if a.IndexW > b.IndexW {
		return 1
	}
	if a.ElemW < b.ElemW {
		return -1
	} else if a.ElemW > b.ElemW {
		return 1
	}
	return 0
}

func compareConstArrayExpr(a, b *ConstArrayExpr) int {
	if a.IndexW < b.IndexW {
		return -1
	} else if a.IndexW > b.IndexW {
		return 1
	}
	return compareConstantExpr(a.Value, b.Value)
}

func compareStoreExpr(a, b *StoreExpr) int {
	if cmp := CompareExpr(a.Index, b.Index); cmp != 0 {
		return cmp
	}
	if cmp := CompareExpr(a.Value, b.Value); cmp != 0 {
		return cmp
	}
	return CompareArrayExpr(a.Array, b.Array)
}

func arrayExprKind(expr ArrayExpr) int {
	switch expr.(type) {
	case *ArraySymbolExpr:
		return 1
	case *ConstArrayExpr:
		return 2
	case *StoreExpr:
		return 3
	default:
		panic("unreachable")
	}
}
