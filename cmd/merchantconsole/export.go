package main

import (
	"context"
	"fmt"
	"time"

	"merchantconsole/internal/browser"
	"merchantconsole/internal/config"
	"merchantconsole/internal/domain"
	"merchantconsole/internal/source"
	"merchantconsole/internal/util/logx"
)

// runExport loads one domain, applies --chip and --expr and writes the
// filtered view without starting the console.
func runExport(ctx context.Context, cfg *config.Config, loader source.Loader, cache *source.Cache) (string, error) {
	d, ok := domain.Lookup(cfg.Domain)
	if !ok {
		return "", fmt.Errorf("unknown domain %q", cfg.Domain)
	}
	hub := source.NewHub(loader, cache, d.Name)
	if _, err := hub.Reload(ctx); err != nil {
		return "", err
	}
	recs, _ := hub.Store(d.Name).Snapshot()

	eng := browser.New(d.Fields, d.Accessor())
	defer eng.Close()
	eng.SetCollection(recs)
	for _, c := range cfg.Chips {
		field, value, _ := cfg.ChipPair(c)
		if !eng.AddChip(field, value) {
			logx.Warnf("export: blank chip %q ignored", c)
		}
	}
	if cfg.Expr != "" {
		if err := eng.SetExpr(cfg.Expr); err != nil {
			return "", fmt.Errorf("--expr: %w", err)
		}
	}
	logx.Infof("export: %d of %d %s match", eng.Total(), len(recs), d.Name)
	return eng.Export(cfg.ExportOut, string(d.Name), cfg.ExportFormat, d.Columns, time.Now())
}
