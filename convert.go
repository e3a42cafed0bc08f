package bmc

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// yosysScript builds the synthesis recipe that lowers a Verilog design to
// the word-level intermediate form. Memories survive as arrays and clocked
// flip-flops become explicit transition logic.
func yosysScript(inputFile, topModule, outputFile string) string {
	return strings.Join([]string{
		"read_verilog -nomem2reg -sv " + inputFile,
		"prep -top " + topModule,
		"hierarchy -check",
		"memory -nomap",
		"flatten",
		"clk2fflogic",
		"setundef -undriven -anyseq",
		"write_btor " + outputFile,
	}, "; ")
}

// ConvertVerilog invokes the external yosys synthesis tool to translate a
// Verilog source file into a transition-system file at outputFile. It fails
// loudly if yosys is missing from PATH or the conversion errors.
func ConvertVerilog(ctx context.Context, inputFile, topModule, outputFile string) error {
	if _, err := exec.LookPath("yosys"); err != nil {
		return errors.Wrap(err, "yosys not found in PATH")
	}

	cmd := exec.CommandContext(ctx, "yosys", "-p", yosysScript(inputFile, topModule, outputFile))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "yosys conversion failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}
