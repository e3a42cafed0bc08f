package bmc_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veriword/bmc"
)

func TestSubstituteExpr(t *testing.T) {
	x, y := bmc.NewSymbolExpr("x", 8), bmc.NewSymbolExpr("y", 8)

	t.Run("Fold", func(t *testing.T) {
		expr := bmc.NewBinaryExpr(bmc.ADD, x, bmc.NewConstantExpr(3, 8))
		if diff := cmp.Diff(
			bmc.Expr(bmc.NewConstantExpr(5, 8)),
			bmc.SubstituteExpr(expr, bmc.Bindings{"x": bmc.NewConstantExpr(2, 8)}),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Partial", func(t *testing.T) {
		expr := bmc.NewBinaryExpr(bmc.ADD, x, y)
		if diff := cmp.Diff(
			bmc.NewBinaryExpr(bmc.ADD, bmc.NewConstantExpr(2, 8), y),
			bmc.SubstituteExpr(expr, bmc.Bindings{"x": bmc.NewConstantExpr(2, 8)}),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Rename", func(t *testing.T) {
		x0 := bmc.NewSymbolExpr("x_0", 8)
		if diff := cmp.Diff(
			bmc.Expr(x0),
			bmc.SubstituteExpr(x, bmc.Bindings{"x": x0}),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Select", func(t *testing.T) {
		mem := bmc.NewArraySymbolExpr("mem", 4, 8)
		mem0 := bmc.NewArraySymbolExpr("mem_0", 4, 8)
		i0 := bmc.NewSymbolExpr("i_0", 4)
		expr := bmc.NewSelectExpr(mem, bmc.NewSymbolExpr("i", 4))
		if diff := cmp.Diff(
			bmc.Expr(bmc.NewSelectExpr(mem0, i0)),
			bmc.SubstituteExpr(expr, bmc.Bindings{"mem": mem0, "i": i0}),
		); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestSubstituteArray(t *testing.T) {
	mem := bmc.NewArraySymbolExpr("mem", 4, 8)
	mem0 := bmc.NewArraySymbolExpr("mem_0", 4, 8)
	addr0 := bmc.NewSymbolExpr("addr_0", 4)
	data0 := bmc.NewSymbolExpr("data_0", 8)

	expr := bmc.NewStoreExpr(mem, bmc.NewSymbolExpr("addr", 4), bmc.NewSymbolExpr("data", 8))
	if diff := cmp.Diff(
		bmc.NewStoreExpr(mem0, addr0, data0),
		bmc.SubstituteArray(expr, bmc.Bindings{"mem": mem0, "addr": addr0, "data": data0}),
	); diff != "" {
		t.Fatal(diff)
	}
}
