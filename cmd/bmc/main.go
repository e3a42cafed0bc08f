package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/veriword/bmc"
	"github.com/veriword/bmc/z3"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bmc", flag.ContinueOnError)
	maxSteps := fs.Int("k", bmc.DefaultMaxSteps, "maximum unrolling steps")
	verbose := fs.Bool("v", false, "verbose")
	fs.Usage = usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() != 3 {
		usage()
		return flag.ErrHelp
	}
	inputPath, topModule, stimulusPath := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if _, err := os.Stat(stimulusPath); err != nil {
		return fmt.Errorf("stimulus file not found: %s", stimulusPath)
	}

	debug := log.New(io.Discard, "", 0)
	if *verbose {
		debug = log.New(os.Stderr, "", 0)
	}
	warn := log.New(os.Stderr, "", 0)

	// Verilog sources convert through yosys first; an existing conversion
	// next to the source is reused.
	designPath := inputPath
	if ext := filepath.Ext(inputPath); ext == ".v" || ext == ".sv" {
		designPath = strings.TrimSuffix(inputPath, ext) + ".btor2"
		if _, err := os.Stat(designPath); os.IsNotExist(err) {
			debug.Printf("converting %s (top %s) to %s", inputPath, topModule, designPath)
			if err := bmc.ConvertVerilog(ctx, inputPath, topModule, designPath); err != nil {
				return err
			}
		} else {
			debug.Printf("reusing existing conversion: %s", designPath)
		}
	}

	parser := bmc.NewSystemParser()
	parser.Logger = warn
	sys, err := parser.ParseFile(designPath)
	if err != nil {
		return fmt.Errorf("parse design: %s", err)
	}
	if *verbose {
		printSummary(debug, sys)
	}

	stim, err := bmc.ParseStimulusFile(stimulusPath)
	if err != nil {
		return fmt.Errorf("parse stimulus: %s", err)
	}
	debug.Printf("property: %s", stim.Property)
	debug.Printf("loaded %d process segments, %d clocks", len(stim.Segments), len(stim.Clocks))
	if *verbose {
		spew.Fdump(os.Stderr, stim.Clocks)
	}

	prop, err := bmc.CompileProperty(stim.Property, sys)
	if err != nil {
		return fmt.Errorf("compile property: %s", err)
	}

	solver, err := z3.NewSolver()
	if err != nil {
		return err
	}
	defer solver.Close()

	checker := bmc.NewChecker(solver)
	checker.MaxSteps = *maxSteps
	checker.Logger = warn

	result, err := checker.Run(ctx, sys, prop, stim)
	if err != nil {
		return err
	}
	debug.Printf("solver: %d checks in %s", solver.Stats().CheckN, solver.Stats().CheckTime)

	switch result.Status {
	case bmc.StatusReachable:
		fmt.Printf("!!! %s !!!\n\n", result.Message)
		fmt.Print(result.Trace.String())
	default:
		fmt.Println(result.Message)
	}
	return nil
}

func printSummary(logger *log.Logger, sys *bmc.System) {
	logger.Printf("states: %v", sys.States)
	logger.Printf("inputs: %v", sys.Inputs)
	logger.Printf("outputs: %v", sys.Outputs)
	for _, f := range sys.Init {
		logger.Printf("init: %s", f)
	}
	for _, f := range sys.Invariant {
		logger.Printf("invariant: %s", f)
	}
	for _, sym := range sys.States {
		if next, ok := sys.Next[sym]; ok {
			logger.Printf("next: %s -> %s", sym.Name, next)
		}
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `
bmc is a bounded model checker for word-level hardware designs.

Usage:

	bmc [flags] <design> <top-module> <stimulus>

The design is a Verilog source (.v/.sv), converted through yosys, or an
already-converted word-level design file. The stimulus file holds the
[PROPERTY], [PROCESS] and [CLOCK] sections driving the check.

Flags:

	-k N    maximum unrolling steps (default 20)
	-v      verbose output
`[1:])
}
