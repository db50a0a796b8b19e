package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/ingest"
	"merchantconsole/internal/model"
)

func main() {
	var (
		domainsCSV  string
		outDir      string
		count       int
		seed        int64
		rate        float64
		durationStr string
		toStdout    bool
	)
	flag.StringVar(&domainsCSV, "domains", "", "Comma-separated domains to generate (default: all)")
	flag.StringVar(&outDir, "out", "simulateddata", "Directory receiving <domain>.ndjson")
	flag.IntVar(&count, "count", 100, "Records written per domain before streaming")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed")
	flag.Float64Var(&rate, "rate", 0, "Records per second appended per domain after the initial batch (0 = write once and exit)")
	flag.StringVar(&durationStr, "duration", "", "Optional streaming duration (e.g., 30s, 2m). Empty means run until interrupted")
	flag.BoolVar(&toStdout, "stdout", false, "Write a single domain to stdout instead of files")
	flag.Parse()

	names, err := parseDomains(domainsCSV)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if durationStr != "" {
		d, err := time.ParseDuration(durationStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid duration: %v\n", err)
			os.Exit(2)
		}
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, d)
		defer stop()
	}

	gen := ingest.NewGenerator(seed, time.Now())
	if toStdout {
		if len(names) != 1 {
			fmt.Fprintln(os.Stderr, "--stdout needs exactly one domain in --domains")
			os.Exit(2)
		}
		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()
		if err := writeAll(w, gen.Records(names[0], count)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", outDir, err)
		os.Exit(1)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range names {
		n := n
		p := filepath.Join(outDir, string(n)+".ndjson")
		// each domain gets its own generator so streams do not share state
		dgen := ingest.NewGenerator(seed+int64(len(n)), time.Now())
		g.Go(func() error { return stream(gctx, p, dgen, n, count, rate) })
		fmt.Fprintf(os.Stderr, "generating %d %s -> %s", count, n, p)
		if rate > 0 {
			fmt.Fprintf(os.Stderr, " then %.2f rec/s", rate)
		}
		fmt.Fprintln(os.Stderr)
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseDomains(csv string) ([]domain.Name, error) {
	if strings.TrimSpace(csv) == "" {
		return domain.All, nil
	}
	var out []domain.Name
	for _, p := range strings.Split(csv, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, ok := domain.Lookup(p)
		if !ok {
			return nil, fmt.Errorf("unknown domain: %s", p)
		}
		out = append(out, d.Name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid domains provided")
	}
	return out, nil
}

func writeAll(w *bufio.Writer, recs []model.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

// stream truncates path, writes the initial batch and then appends one
// record per tick until ctx is done.
func stream(ctx context.Context, path string, gen *ingest.Generator, n domain.Name, count int, rate float64) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := writeAll(w, gen.Records(n, count)); err != nil {
		return err
	}
	if rate <= 0 {
		return nil
	}
	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := writeAll(w, []model.Record{gen.Record(n)}); err != nil {
				return err
			}
		}
	}
}
