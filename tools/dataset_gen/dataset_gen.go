package main

// dataset_gen is a small helper utility that generates deterministic uint64
// key datasets for standalone benchmarking of zdict outside `go test`. It
// emits newline-separated numbers for an external load generator to replay;
// bench/bench_test.go builds its own random dataset in memory and does not
// read these files.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 1000000 --dist zipf --seed 42 --out keys.txt
//
// When --out (-o) is given, the file is written atomically: a generator that
// crashes or is killed mid-run never leaves a truncated dataset file for a
// concurrent benchmark run to pick up.
//
// © 2025 zdict authors. MIT License.

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"
)

func main() {
	var (
		n       = pflag.IntP("n", "n", 1_000_000, "number of keys to generate")
		dist    = pflag.String("dist", "uniform", "distribution: uniform or zipf")
		zipfS   = pflag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV   = pflag.Float64("zipfv", 1.0, "zipf v parameter (>0)")
		seedVal = pflag.Int64("seed", 42, "PRNG seed")
		outPath = pflag.StringP("out", "o", "", "output file (default stdout)")
	)
	pflag.Parse()

	rnd := rand.New(rand.NewSource(*seedVal))

	var gen func() uint64
	switch *dist {
	case "uniform":
		gen = rnd.Uint64
	case "zipf":
		if *zipfS <= 1.0 || *zipfV <= 0 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >0")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, ^uint64(0))
		gen = z.Uint64
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	if *outPath == "" {
		w := bufio.NewWriterSize(os.Stdout, 1<<20)
		defer w.Flush()
		for i := 0; i < *n; i++ {
			fmt.Fprintln(w, gen())
		}
		return
	}

	var buf bytes.Buffer
	buf.Grow(*n * 8)
	for i := 0; i < *n; i++ {
		fmt.Fprintln(&buf, gen())
	}
	if err := atomic.WriteFile(*outPath, &buf); err != nil {
		fmt.Fprintln(os.Stderr, "cannot write file:", err)
		os.Exit(1)
	}
}
