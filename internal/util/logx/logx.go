// Package logx is an in-memory leveled logger. The console shows its buffer
// in the logs modal; an optional sink mirrors every line.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	}
	return "ERROR"
}

const maxLines = 500

var (
	mu     sync.Mutex
	level  = Info
	ring   [maxLines]string
	head   int // next slot to write
	size   int
	counts [Error + 1]int
	// nil by default so the alt screen is not corrupted
	sink io.Writer
)

func SetLevel(l Level) { mu.Lock(); level = l; mu.Unlock() }

// SetOutput mirrors every logged line to w. nil disables mirroring.
func SetOutput(w io.Writer) { mu.Lock(); sink = w; mu.Unlock() }

// ParseLevel maps a level name onto a Level; unknown names report false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn", "warning":
		return Warn, true
	case "error":
		return Error, true
	}
	return Info, false
}

func SetLevelFromEnv() {
	if l, ok := ParseLevel(os.Getenv("MERCHANT_LOG_LEVEL")); ok {
		SetLevel(l)
	}
}

// OutputFromEnv applies MERCHANT_LOG_FILE (append) or MERCHANT_LOG_STDERR.
// The returned func closes the file, if one was opened.
func OutputFromEnv() (func(), error) {
	if p := strings.TrimSpace(os.Getenv("MERCHANT_LOG_FILE")); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return func() {}, fmt.Errorf("log file: %w", err)
		}
		SetOutput(f)
		return func() { SetOutput(nil); _ = f.Close() }, nil
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MERCHANT_LOG_STDERR"))) {
	case "", "0", "false", "no":
	default:
		SetOutput(os.Stderr)
	}
	return func() {}, nil
}

func Debugf(format string, a ...any) { logf(Debug, format, a...) }
func Infof(format string, a ...any)  { logf(Info, format, a...) }
func Warnf(format string, a ...any)  { logf(Warn, format, a...) }
func Errorf(format string, a ...any) { logf(Error, format, a...) }

func logf(l Level, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	ts := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	line := fmt.Sprintf("%s %-5s %s", ts, l, fmt.Sprintf(format, a...))
	ring[head] = line
	head = (head + 1) % maxLines
	if size < maxLines {
		size++
	}
	counts[l]++
	if sink != nil {
		fmt.Fprintln(sink, line)
	}
}

// Tail returns the last n buffered lines, oldest first. n <= 0 means all.
func Tail(n int) []string {
	mu.Lock()
	defer mu.Unlock()
	if n <= 0 || n > size {
		n = size
	}
	out := make([]string, n)
	start := (head - n + maxLines) % maxLines
	for i := range out {
		out[i] = ring[(start+i)%maxLines]
	}
	return out
}

// Count reports how many lines of level l were logged since start,
// including ones already evicted from the buffer.
func Count(l Level) int {
	mu.Lock()
	defer mu.Unlock()
	if l < Debug || l > Error {
		return 0
	}
	return counts[l]
}
