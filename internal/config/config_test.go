package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Setenv("MERCHANT_API_BASE", "")
	t.Setenv("MERCHANT_DATA_DIR", "")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source() != SourceDemo || cfg.PageSize != 10 || cfg.Debounce() != 500*time.Millisecond {
		t.Fatalf("defaults: %s", cfg)
	}
	if cfg.Theme != ThemeDark || cfg.Domain != "contracts" {
		t.Fatalf("theme/domain %s %s", cfg.Theme, cfg.Domain)
	}
}

func TestEnvAndFlags(t *testing.T) {
	t.Setenv("MERCHANT_API_BASE", "http://api.local")
	t.Setenv("MERCHANT_PAGE_SIZE", "20")
	cfg, err := Load([]string{"--merchant-id", "M-7", "--chip", "customerName=jane", "--chip", "status=Active", "--demo-latency-ms", "5"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source() != SourceHTTP || cfg.PageSize != 20 || cfg.MerchantID != "M-7" {
		t.Fatalf("cfg %s", cfg)
	}
	if len(cfg.Chips) != 2 || cfg.DemoLatency != 5*time.Millisecond {
		t.Fatalf("chips %v latency %s", cfg.Chips, cfg.DemoLatency)
	}
	f, v, ok := cfg.ChipPair(cfg.Chips[0])
	if !ok || f != "customerName" || v != "jane" {
		t.Fatalf("pair %q %q", f, v)
	}

	cfg, err = Load([]string{"--demo"})
	if err != nil || cfg.Source() != SourceDemo {
		t.Fatalf("--demo should win: %v", err)
	}
}

func TestValidation(t *testing.T) {
	bad := [][]string{
		{"--export-format", "xml", "--out", "x"},
		{"--export-format", "csv"},
		{"--theme", "neon"},
		{"--domain", "orders"},
		{"--watch"},
		{"--chip", "novalue"},
		{"--demo-fail-rate", "2"},
	}
	for _, args := range bad {
		if _, err := Load(args); err == nil {
			t.Fatalf("%v accepted", args)
		}
	}
	cfg, err := Load([]string{"--page-size", "0", "--export-format", "json", "--out", t.TempDir()})
	if err != nil || cfg.PageSize != 10 {
		t.Fatalf("page size fallback: %v", err)
	}
	cfg, err = Load([]string{"--openai-timeout-sec", "0", "--timeout-sec", "-3"})
	if err != nil || cfg.OpenAITimeout() != 60*time.Second || cfg.Timeout() != 20*time.Second {
		t.Fatalf("timeout fallback: %v", err)
	}
}
