package debounce

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu   sync.Mutex
	vals []string
	ch   chan string
}

func newRecorder() *recorder { return &recorder{ch: make(chan string, 16)} }

func (r *recorder) settle(v string) {
	r.mu.Lock()
	r.vals = append(r.vals, v)
	r.mu.Unlock()
	r.ch <- v
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vals)
}

func TestRawEchoesImmediately(t *testing.T) {
	b := New(time.Hour, nil)
	defer b.Close()
	b.Update("jo")
	if b.Raw() != "jo" {
		t.Fatalf("raw: %q", b.Raw())
	}
	if b.Settled() != "" {
		t.Fatalf("settled too early: %q", b.Settled())
	}
	if !b.Pending() {
		t.Fatalf("expected pending publication")
	}
}

func TestBurstPublishesOnlyLast(t *testing.T) {
	rec := newRecorder()
	b := New(40*time.Millisecond, rec.settle)
	defer b.Close()
	for _, s := range []string{"j", "jo", "joh", "john"} {
		b.Update(s)
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case v := <-rec.ch:
		if v != "john" {
			t.Fatalf("settled %q, want john", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no publication")
	}
	time.Sleep(80 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Fatalf("expected exactly one publication, got %d", n)
	}
	if b.Settled() != "john" {
		t.Fatalf("Settled() = %q", b.Settled())
	}
}

func TestFlushPublishesNow(t *testing.T) {
	rec := newRecorder()
	b := New(time.Hour, rec.settle)
	defer b.Close()
	b.Update("claim")
	b.Flush()
	if b.Settled() != "claim" || b.Pending() {
		t.Fatalf("flush did not publish: settled=%q pending=%v", b.Settled(), b.Pending())
	}
	if rec.count() != 1 {
		t.Fatalf("callback count %d", rec.count())
	}
	// flushing an unchanged value does not re-notify
	b.Flush()
	if rec.count() != 1 {
		t.Fatalf("unchanged flush notified again")
	}
}

func TestCloseCancelsPending(t *testing.T) {
	rec := newRecorder()
	b := New(20*time.Millisecond, rec.settle)
	b.Update("late")
	b.Close()
	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("publication after Close")
	}
	b.Update("ignored")
	if b.Raw() == "ignored" {
		t.Fatalf("Update accepted after Close")
	}
}

func TestResetIsSilent(t *testing.T) {
	rec := newRecorder()
	b := New(20*time.Millisecond, rec.settle)
	defer b.Close()
	b.Update("smith")
	b.Reset()
	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 || b.Raw() != "" || b.Settled() != "" || b.Pending() {
		t.Fatalf("reset published or left state: count=%d raw=%q", rec.count(), b.Raw())
	}
}
