package bmc_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veriword/bmc"
)

func TestNewSelectExpr(t *testing.T) {
	t.Run("ConstArray", func(t *testing.T) {
		array := bmc.NewConstArrayExpr(bmc.NewConstantExpr(7, 8), 4)
		if diff := cmp.Diff(
			bmc.Expr(bmc.NewConstantExpr(7, 8)),
			bmc.NewSelectExpr(array, bmc.NewSymbolExpr("i", 4)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("StoreHit", func(t *testing.T) {
		mem := bmc.NewArraySymbolExpr("mem", 4, 8)
		v := bmc.NewSymbolExpr("v", 8)
		array := bmc.NewStoreExpr(mem, bmc.NewConstantExpr(3, 4), v)
		if diff := cmp.Diff(
			bmc.Expr(v),
			bmc.NewSelectExpr(array, bmc.NewConstantExpr(3, 4)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("StoreMiss", func(t *testing.T) {
		// A constant miss reads through to the underlying array.
		mem := bmc.NewArraySymbolExpr("mem", 4, 8)
		array := bmc.NewStoreExpr(mem, bmc.NewConstantExpr(3, 4), bmc.NewSymbolExpr("v", 8))
		if diff := cmp.Diff(
			bmc.Expr(bmc.NewSelectExpr(mem, bmc.NewConstantExpr(5, 4))),
			bmc.NewSelectExpr(array, bmc.NewConstantExpr(5, 4)),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Symbolic", func(t *testing.T) {
		mem := bmc.NewArraySymbolExpr("mem", 4, 8)
		i := bmc.NewSymbolExpr("i", 4)
		expr := bmc.NewSelectExpr(mem, i)
		if diff := cmp.Diff(bmc.Expr(&bmc.SelectExpr{Array: mem, Index: i}), expr); diff != "" {
			t.Fatal(diff)
		}
		if w := bmc.ExprWidth(expr); w != 8 {
			t.Fatalf("unexpected width: %d", w)
		}
	})
}

func TestNewStoreExpr_ConstArrayNop(t *testing.T) {
	// Storing the value a constant array already holds is a no-op.
	array := bmc.NewConstArrayExpr(bmc.NewConstantExpr(0, 8), 4)
	if diff := cmp.Diff(
		bmc.ArrayExpr(array),
		bmc.NewStoreExpr(array, bmc.NewSymbolExpr("i", 4), bmc.NewConstantExpr(0, 8)),
	); diff != "" {
		t.Fatal(diff)
	}
}

func TestNewArrayEqExpr_Identical(t *testing.T) {
	mem := bmc.NewArraySymbolExpr("mem", 4, 8)
	if diff := cmp.Diff(
		bmc.Expr(bmc.NewConstantExpr(1, 1)),
		bmc.NewArrayEqExpr(mem, bmc.NewArraySymbolExpr("mem", 4, 8)),
	); diff != "" {
		t.Fatal(diff)
	}
}
