// Package debounce holds the live search term and publishes a settled copy
// once input has been quiet for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

const DefaultQuiet = 500 * time.Millisecond

// TermBuffer keeps only the latest raw input and the latest settled value.
type TermBuffer struct {
	quiet    time.Duration
	onSettle func(string)

	mu      sync.Mutex
	raw     string
	settled string
	timer   *time.Timer
	gen     uint64
	closed  bool

	// held while onSettle runs so Close can wait for an in-flight publish
	cbMu sync.Mutex
}

// New returns a buffer that calls onSettle (may be nil) from the timer
// goroutine whenever a new settled value is published.
func New(quiet time.Duration, onSettle func(string)) *TermBuffer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &TermBuffer{quiet: quiet, onSettle: onSettle}
}

// Update records raw immediately and reschedules publication.
func (b *TermBuffer) Update(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.raw = raw
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, func() { b.publish(gen) })
}

// Flush publishes the current raw value now and cancels the pending timer.
func (b *TermBuffer) Flush() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	gen := b.gen
	b.mu.Unlock()
	b.publish(gen)
}

// Reset empties raw and settled without publishing and cancels the pending timer.
func (b *TermBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	b.raw = ""
	b.settled = ""
}

func (b *TermBuffer) publish(gen uint64) {
	b.cbMu.Lock()
	defer b.cbMu.Unlock()
	b.mu.Lock()
	if b.closed || gen != b.gen {
		b.mu.Unlock()
		return
	}
	changed := b.settled != b.raw
	b.settled = b.raw
	b.timer = nil
	v := b.settled
	b.mu.Unlock()
	if changed && b.onSettle != nil {
		b.onSettle(v)
	}
}

func (b *TermBuffer) Raw() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raw
}

func (b *TermBuffer) Settled() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settled
}

// Pending reports whether a publication is scheduled.
func (b *TermBuffer) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timer != nil
}

// Close cancels any pending publication. After Close returns onSettle is not
// called again. It must not be called from inside onSettle.
func (b *TermBuffer) Close() {
	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()
	// wait out a publish that already passed the closed check
	b.cbMu.Lock()
	b.cbMu.Unlock()
}
