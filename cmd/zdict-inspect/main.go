package main

// zdict-inspect fetches a zdict.Snapshot from a running service's debug
// endpoint and prints it, either as a formatted table or as JSON. It
// supports periodic watch mode and can atomically dump each snapshot to a
// file instead of stdout, so a long-running watch never leaves a half
// written file behind for another process to read mid-write.
//
// The target Go service is expected to expose:
//   - GET /debug/zdict/snapshot — JSON payload shaped like zdict.Snapshot.
//
// © 2025 zdict authors. MIT License.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natefinch/atomic"

	"github.com/zdict-go/zdict/pkg/zdict"
)

var version = "dev"

func main() {
	opts := parseFlags()

	if opts.version {
		fmt.Println(version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := dumpOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := dumpOnce(ctx, opts); err != nil {
		fatal(err)
	}
}

func dumpOnce(ctx context.Context, opts *options) error {
	snap, err := fetchSnapshot(ctx, opts.target)
	if err != nil {
		return err
	}

	var buf []byte
	if opts.jsonOut || opts.outPath != "" {
		buf, err = json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		buf = append(buf, '\n')
	}

	if opts.outPath != "" {
		return atomic.WriteFile(opts.outPath, bytes.NewReader(buf))
	}
	if opts.jsonOut {
		_, err := os.Stdout.Write(buf)
		return err
	}
	return prettyPrint(snap)
}

func fetchSnapshot(ctx context.Context, base string) (zdict.Snapshot, error) {
	var snap zdict.Snapshot
	url := base + "/debug/zdict/snapshot"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return snap, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return snap, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("unexpected status %s", res.Status)
	}
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func prettyPrint(snap zdict.Snapshot) error {
	fmt.Printf("Mode:        %s\n", snap.Mode)
	fmt.Printf("Len:         %d\n", snap.Len)
	fmt.Printf("Capacity:    %d\n", snap.Capacity)
	fmt.Printf("Load factor: %.3f\n", snap.LoadFactor)
	fmt.Printf("Resizes:     %d\n", len(snap.Resizes))
	for _, ev := range snap.Resizes {
		fmt.Printf("  #%d  %d -> %d  (%s)  %s\n", ev.ID, ev.OldCap, ev.NewCap, ev.Cause, ev.OccurredAt.Format(time.RFC3339))
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "zdict-inspect:", err)
	os.Exit(1)
}
