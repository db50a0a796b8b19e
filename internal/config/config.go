package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"merchantconsole/internal/domain"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// SourceKind says where collections are loaded from.
type SourceKind string

const (
	SourceHTTP SourceKind = "http"
	SourceFile SourceKind = "file"
	SourceDemo SourceKind = "demo"
)

type Config struct {
	APIBase     string
	APIToken    string
	MerchantID  string
	TimeoutSec  int
	DataDir     string
	Watch       bool
	Demo        bool
	DemoSeed    int64
	DemoRecords int
	DemoLatency time.Duration
	DemoFail    float64
	DemoPartial float64

	PageSize   int
	DebounceMS int
	Theme      Theme
	Domain     string

	Offline          bool
	NoCache          bool
	CacheDir         string
	OpenAIModel      string
	OpenAIBase       string
	OpenAITimeoutSec int

	ExportFormat string
	ExportOut    string
	Expr         string
	Chips        []string

	ShowVersion bool
}

type chipList []string

func (c *chipList) String() string     { return strings.Join(*c, ",") }
func (c *chipList) Set(v string) error { *c = append(*c, v); return nil }

// Load parses args (without the program name) on top of MERCHANT_* env defaults.
func Load(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("merchantconsole", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.APIBase, "api-base", getenvDefault("MERCHANT_API_BASE", ""), "merchant API base URL (empty: use --data-dir or demo)")
	fs.StringVar(&cfg.APIToken, "api-token", getenvDefault("MERCHANT_API_TOKEN", ""), "bearer token sent to the API")
	fs.StringVar(&cfg.MerchantID, "merchant-id", getenvDefault("MERCHANT_ID", ""), "merchant id sent as User_id")
	fs.IntVar(&cfg.TimeoutSec, "timeout-sec", getenvDefaultInt("MERCHANT_TIMEOUT_SEC", 20), "HTTP request timeout in seconds")
	fs.StringVar(&cfg.DataDir, "data-dir", getenvDefault("MERCHANT_DATA_DIR", ""), "directory of <domain>.ndjson files")
	fs.BoolVar(&cfg.Watch, "watch", false, "reload a domain when its ndjson file grows (with --data-dir)")
	fs.BoolVar(&cfg.Demo, "demo", false, "use the in-process demo backend")
	fs.Int64Var(&cfg.DemoSeed, "demo-seed", 1, "demo data seed")
	fs.IntVar(&cfg.DemoRecords, "demo-records", 60, "demo records per domain")
	latency := fs.Int("demo-latency-ms", 300, "simulated demo latency in milliseconds")
	fs.Float64Var(&cfg.DemoFail, "demo-fail-rate", 0, "share of demo mutations refused (0..1)")
	fs.Float64Var(&cfg.DemoPartial, "demo-partial-rate", 0.3, "share of demo edits answered with a partial payload (0..1)")

	fs.IntVar(&cfg.PageSize, "page-size", getenvDefaultInt("MERCHANT_PAGE_SIZE", 10), "rows per page")
	fs.IntVar(&cfg.DebounceMS, "debounce-ms", getenvDefaultInt("MERCHANT_DEBOUNCE_MS", 500), "search quiet interval in milliseconds")
	theme := string(ThemeDark)
	fs.StringVar(&theme, "theme", getenvDefault("MERCHANT_THEME", string(ThemeDark)), "theme: dark|light")
	fs.StringVar(&cfg.Domain, "domain", string(domain.Contracts), "initial domain: "+names())

	fs.BoolVar(&cfg.Offline, "offline", false, "disable OpenAI and work offline only")
	fs.BoolVar(&cfg.NoCache, "no-cache", false, "disable collection cache (skip read/write)")
	fs.StringVar(&cfg.CacheDir, "cache-dir", getenvDefault("MERCHANT_CACHE_DIR", ""), "collection cache directory (default: temp dir)")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", getenvDefault("MERCHANT_OPENAI_MODEL", "gpt-4o-mini"), "OpenAI model override")
	fs.StringVar(&cfg.OpenAIBase, "openai-base-url", getenvDefault("MERCHANT_OPENAI_BASE_URL", ""), "OpenAI base URL override")
	fs.IntVar(&cfg.OpenAITimeoutSec, "openai-timeout-sec", getenvDefaultInt("MERCHANT_OPENAI_TIMEOUT_SEC", 60), "OpenAI request timeout in seconds")

	fs.StringVar(&cfg.ExportFormat, "export-format", "", "export the filtered domain without the console: csv|json")
	fs.StringVar(&cfg.ExportOut, "out", "", "output directory for export")
	fs.StringVar(&cfg.Expr, "expr", "", "filter expression applied before export")
	var chips chipList
	fs.Var(&chips, "chip", "filter chip field=value (repeatable)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Theme = Theme(theme)
	cfg.DemoLatency = time.Duration(*latency) * time.Millisecond
	cfg.Chips = chips

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("unknown theme %q (dark|light)", c.Theme)
	}
	if _, ok := domain.Lookup(c.Domain); !ok {
		return fmt.Errorf("unknown domain %q (%s)", c.Domain, names())
	}
	switch c.ExportFormat {
	case "", "csv", "json":
	default:
		return fmt.Errorf("unknown export format %q (csv|json)", c.ExportFormat)
	}
	if c.ExportFormat != "" && c.ExportOut == "" {
		return errors.New("--export-format requires --out directory")
	}
	if c.Watch && c.DataDir == "" {
		return errors.New("--watch requires --data-dir")
	}
	for _, ch := range c.Chips {
		if _, _, ok := c.ChipPair(ch); !ok {
			return fmt.Errorf("bad --chip %q, want field=value", ch)
		}
	}
	if c.DemoFail < 0 || c.DemoFail > 1 || c.DemoPartial < 0 || c.DemoPartial > 1 {
		return errors.New("demo rates must be within 0..1")
	}
	if c.PageSize < 1 {
		c.PageSize = 10
	}
	if c.DebounceMS < 0 {
		c.DebounceMS = 0
	}
	if c.TimeoutSec < 1 {
		c.TimeoutSec = 20
	}
	if c.OpenAITimeoutSec < 1 {
		c.OpenAITimeoutSec = 60
	}
	return nil
}

// ChipPair splits a field=value chip flag.
func (c *Config) ChipPair(s string) (field, value string, ok bool) {
	field, value, ok = strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	return field, value, ok && field != ""
}

// Source resolves which loader to use: explicit --demo, then --api-base,
// then --data-dir, else the demo backend.
func (c *Config) Source() SourceKind {
	switch {
	case c.Demo:
		return SourceDemo
	case c.APIBase != "":
		return SourceHTTP
	case c.DataDir != "":
		return SourceFile
	}
	return SourceDemo
}

func (c *Config) Debounce() time.Duration { return time.Duration(c.DebounceMS) * time.Millisecond }

func (c *Config) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }

func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAITimeoutSec) * time.Second
}

func names() string {
	s := make([]string, len(domain.All))
	for i, n := range domain.All {
		s[i] = string(n)
	}
	return strings.Join(s, "|")
}

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvDefaultInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

func (c *Config) String() string {
	return fmt.Sprintf("source=%s api=%s data=%s watch=%v theme=%s offline=%v page=%d", c.Source(), c.APIBase, c.DataDir, c.Watch, c.Theme, c.Offline, c.PageSize)
}
