// Command convplan precompiles balanced-convolution FFT plans and writes
// them to a directory for an engine's SetPlanFileDirectory to load at
// startup, trading a one-time offline cost for zero plan-compile latency on
// the audio thread.
//
// Usage:
//
//	convplan [flags] <output-directory>
//
// Examples:
//
//	convplan plans/
//	convplan -min-size 64 -max-size 65536 plans/
//	convplan -gzip=false plans/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-dsp/dsp/convengine/balanced"
)

func main() {
	minSize := flag.Int("min-size", 32, "smallest section size to generate (power of two)")
	maxSize := flag.Int("max-size", 65536, "largest section size to generate (power of two)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: convplan [flags] <output-directory>\n\n")
		fmt.Fprintf(os.Stderr, "Precompiles balanced-convolution FFT plans for every power-of-two\n")
		fmt.Fprintf(os.Stderr, "section size in [min-size, max-size] and writes them as gzipped\n")
		fmt.Fprintf(os.Stderr, "<size>.convolutionPlan.gz files, one per size.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  convplan plans/\n")
		fmt.Fprintf(os.Stderr, "  convplan -min-size 64 -max-size 65536 plans/\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}
	outputDir := args[0]

	if *minSize <= 0 || *maxSize <= 0 || *minSize > *maxSize {
		fmt.Fprintf(os.Stderr, "error: invalid size range [%d, %d]\n", *minSize, *maxSize)
		os.Exit(1)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: create output directory: %v\n", err)
		os.Exit(1)
	}

	balanced.SetPlanFileDirectory(outputDir)

	// A zero impulse response: this tool generates schedules for the
	// generic FFT-plus-identity-impulse constant set, the same shape
	// SetPlanFileDirectory expects to find cached by size alone.
	for n := *minSize; n <= *maxSize; n *= 2 {
		fmt.Printf("generating plan n=%d\n", n)
		impulse := make([]float64, n)
		if _, err := balanced.NewSection(n, impulse, 0); err != nil {
			fmt.Fprintf(os.Stderr, "error: generate plan n=%d: %v\n", n, err)
			os.Exit(1)
		}
	}
}
