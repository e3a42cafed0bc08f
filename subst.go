package bmc

// Bindings maps symbol names to the terms that replace them during
// substitution. Scalar symbols must map to Expr values and array symbols to
// ArrayExpr values of the same shape.
type Bindings map[string]Term

// SubstituteExpr rebuilds expr with every symbol bound in b replaced by its
// binding. Rebuilding goes through the folding constructors so substituting
// constants also simplifies the result. Unbound symbols are left as-is.
func SubstituteExpr(expr Expr, b Bindings) Expr {
	switch expr := expr.(type) {
	case *ConstantExpr:
		return expr
	case *SymbolExpr:
		if t, ok := b[expr.Name]; ok {
			e, ok := t.(Expr)
			assert(ok, "symbol %q: bound to array, expected bit-vector", expr.Name)
			assert(ExprWidth(e) == expr.Width, "symbol %q: binding width mismatch: %d != %d", expr.Name, ExprWidth(e), expr.Width)
			return e
		}
		return expr
	case *BinaryExpr:
		return NewBinaryExpr(expr.Op, SubstituteExpr(expr.LHS, b), SubstituteExpr(expr.RHS, b))
	case *NotExpr:
		return NewNotExpr(SubstituteExpr(expr.Expr, b))
	case *IteExpr:
		return NewIteExpr(SubstituteExpr(expr.Cond, b), SubstituteExpr(expr.Then, b), SubstituteExpr(expr.Else, b))
	case *ConcatExpr:
		return NewConcatExpr(SubstituteExpr(expr.MSB, b), SubstituteExpr(expr.LSB, b))
	case *ExtractExpr:
		return NewExtractExpr(SubstituteExpr(expr.Expr, b), expr.Offset, expr.Width)
	case *CastExpr:
		return NewCastExpr(SubstituteExpr(expr.Src, b), expr.Width, expr.Signed)
	case *SelectExpr:
		return NewSelectExpr(SubstituteArray(expr.Array, b), SubstituteExpr(expr.Index, b))
	case *ArrayEqExpr:
		return NewArrayEqExpr(SubstituteArray(expr.LHS, b), SubstituteArray(expr.RHS, b))
	default:
		panic("unreachable")
	}
}

// SubstituteArray rebuilds an array expression with every symbol bound in b
// replaced by its binding.
func SubstituteArray(expr ArrayExpr, b Bindings) ArrayExpr {
	switch expr := expr.(type) {
	case *ArraySymbolExpr:
		if t, ok := b[expr.Name]; ok {
			a, ok := t.(ArrayExpr)
			assert(ok, "symbol %q: bound to bit-vector, expected array", expr.Name)
			assert(a.IndexWidth() == expr.IndexW && a.ElemWidth() == expr.ElemW,
				"symbol %q: binding shape mismatch: [%d]%d != [%d]%d",
				expr.Name, a.IndexWidth(), a.ElemWidth(), expr.IndexW, expr.ElemW)
			return a
		}
		return expr
	case *ConstArrayExpr:
		return expr
	case *StoreExpr:
		return NewStoreExpr(SubstituteArray(expr.Array, b), SubstituteExpr(expr.Index, b), SubstituteExpr(expr.Value, b))
	default:
		panic("unreachable")
	}
}
