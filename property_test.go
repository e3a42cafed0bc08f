package bmc_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veriword/bmc"
)

func TestCompileProperty(t *testing.T) {
	sys, err := bmc.NewSystemParser().Parse(strings.NewReader(`
1 sort bitvec 8
2 state 1 count
`))
	if err != nil {
		t.Fatal(err)
	}
	count := sys.Symbols["count"].Term().(bmc.Expr)

	for _, tt := range []struct {
		op   string
		want bmc.Expr
	}{
		{"==", bmc.NewBinaryExpr(bmc.EQ, count, bmc.NewConstantExpr(20, 8))},
		{"!=", bmc.NewBinaryExpr(bmc.NE, count, bmc.NewConstantExpr(20, 8))},
		{"<", bmc.NewBinaryExpr(bmc.ULT, count, bmc.NewConstantExpr(20, 8))},
		{"<=", bmc.NewBinaryExpr(bmc.ULE, count, bmc.NewConstantExpr(20, 8))},
		{">", bmc.NewBinaryExpr(bmc.UGT, count, bmc.NewConstantExpr(20, 8))},
		{">=", bmc.NewBinaryExpr(bmc.UGE, count, bmc.NewConstantExpr(20, 8))},
	} {
		t.Run(tt.op, func(t *testing.T) {
			prop, err := bmc.CompileProperty(bmc.Property{Signal: "count", Op: tt.op, Value: "20"}, sys)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, prop.Predicate); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestCompiledProperty_MessageAt(t *testing.T) {
	sys, err := bmc.NewSystemParser().Parse(strings.NewReader(`
1 sort bitvec 8
2 state 1 count
`))
	if err != nil {
		t.Fatal(err)
	}
	prop, err := bmc.CompileProperty(bmc.Property{Signal: "count", Op: ">", Value: "20"}, sys)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := prop.MessageAt(5), `property 'count > 20' became true at step 5`; got != want {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestCompileProperty_ErrBadProperty(t *testing.T) {
	sys, err := bmc.NewSystemParser().Parse(strings.NewReader(`
1 sort bitvec 4
2 sort bitvec 8
3 sort array 1 2
4 state 2 count
5 state 3 mem
`))
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name string
		prop bmc.Property
		want string
	}{
		{
			name: "UnknownSignal",
			prop: bmc.Property{Signal: "missing", Op: "==", Value: "1"},
			want: `property signal "missing" not found in design`,
		},
		{
			name: "ArraySignal",
			prop: bmc.Property{Signal: "mem", Op: "==", Value: "1"},
			want: `property signal "mem" is not a bit-vector`,
		},
		{
			name: "NonIntegerValue",
			prop: bmc.Property{Signal: "count", Op: "==", Value: "high"},
			want: `property value "high" is not an integer`,
		},
		{
			name: "UnsupportedOperator",
			prop: bmc.Property{Signal: "count", Op: "===", Value: "1"},
			want: `unsupported property operator "==="`,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := bmc.CompileProperty(tt.prop, sys); err == nil || err.Error() != tt.want {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
