package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"merchantconsole/internal/ai"
	"merchantconsole/internal/config"
	"merchantconsole/internal/domain"
	"merchantconsole/internal/ingest"
	"merchantconsole/internal/remote"
	"merchantconsole/internal/source"
	"merchantconsole/internal/ui"
	"merchantconsole/internal/util/logx"
	"merchantconsole/internal/version"
)

func main() {
	logx.SetLevelFromEnv()
	closeLog, err := logx.OutputFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	defer closeLog()
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Println("merchantconsole", version.String())
		return
	}

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, loader := buildSource(cfg)
	var cache *source.Cache
	if !cfg.NoCache {
		cache = source.NewCache(cfg.CacheDir)
	}

	if cfg.ExportFormat != "" {
		path, err := runExport(ctx, cfg, loader, cache)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export failed:", err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	}

	hub := source.NewHub(loader, cache)
	hub.Warm()
	deps := ui.Deps{Hub: hub, Backend: backend}
	if !cfg.Offline && cfg.OpenAIKey() != "" {
		deps.AI = ai.NewOpenAIClient(cfg.OpenAIKey(), cfg.OpenAIBase, cfg.OpenAIModel, cfg.OpenAITimeout())
	}
	if cfg.Watch {
		deps.Watch = source.Watch(ctx, source.FileLoader{Dir: cfg.DataDir, MaxBuf: ingest.DefaultScanBuf}, domain.All)
	}

	logx.Infof("starting merchantconsole %s: %s", version.String(), cfg.String())
	if err := ui.Run(ctx, cfg, deps); err != nil {
		logx.Errorf("merchantconsole exited with error: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildSource returns the backend used for mutations (nil for a read-only
// source) and the loader collections come from.
func buildSource(cfg *config.Config) (remote.Backend, source.Loader) {
	switch cfg.Source() {
	case config.SourceHTTP:
		c := remote.NewClient(cfg.APIBase, cfg.APIToken, cfg.MerchantID, cfg.Timeout())
		return c, c
	case config.SourceFile:
		return nil, source.FileLoader{Dir: cfg.DataDir, MaxBuf: ingest.DefaultScanBuf}
	}
	d := remote.NewDemo(remote.DemoOptions{
		Seed:        cfg.DemoSeed,
		PerDomain:   cfg.DemoRecords,
		Latency:     cfg.DemoLatency,
		FailRate:    cfg.DemoFail,
		PartialRate: cfg.DemoPartial,
	})
	return d, d
}
