package main

import (
	"time"

	"github.com/spf13/pflag"
)

type options struct {
	target   string
	jsonOut  bool
	watch    bool
	interval time.Duration
	outPath  string
	version  bool
}

func parseFlags() *options {
	opts := &options{}
	pflag.StringVarP(&opts.target, "target", "t", "http://localhost:6060", "base URL of the zdict-instrumented service")
	pflag.BoolVarP(&opts.jsonOut, "json", "j", false, "print the snapshot as JSON instead of a formatted table")
	pflag.BoolVarP(&opts.watch, "watch", "w", false, "poll the snapshot endpoint repeatedly")
	pflag.DurationVarP(&opts.interval, "interval", "i", 2*time.Second, "poll interval in watch mode")
	pflag.StringVarP(&opts.outPath, "out", "o", "", "atomically write each snapshot to this file instead of stdout")
	pflag.BoolVar(&opts.version, "version", false, "print version and exit")
	pflag.Parse()
	return opts
}
