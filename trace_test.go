package bmc_test

import (
	"testing"

	"github.com/veriword/bmc"
)

func TestTrace_String(t *testing.T) {
	trace := bmc.Trace{
		{Step: 0, Values: []bmc.TraceValue{
			{Name: "count", Value: bmc.NewConstantExpr(0, 8)},
			{Name: "mem", Array: "(const-array (const 0 8) 4)"},
		}},
		{Step: 1, Values: []bmc.TraceValue{
			{Name: "count", Value: bmc.NewConstantExpr(1, 8)},
			{Name: "mem", Array: "(const-array (const 0 8) 4)"},
		}},
	}

	want := `--- counterexample ---
  --- step 0 ---
    count: 0
    mem: (const-array (const 0 8) 4)
  --- step 1 ---
    count: 1
    mem: (const-array (const 0 8) 4)
----------------------
`
	if got := trace.String(); got != want {
		t.Fatalf("unexpected output:\n%s", got)
	}
}
