package pager

import (
	"math/rand"
	"testing"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestTwelveRecordsScenario(t *testing.T) {
	items := seq(12)
	p := New(10)
	p.SetTotal(len(items))
	if got := Slice(p, items); len(got) != 10 {
		t.Fatalf("page 0 shows %d", len(got))
	}
	if p.Label() != "1 – 10 of 12" {
		t.Fatalf("label %q", p.Label())
	}
	p.Next()
	if got := Slice(p, items); len(got) != 2 || got[0] != 10 {
		t.Fatalf("page 1: %v", got)
	}
	if p.Label() != "11 – 12 of 12" {
		t.Fatalf("label %q", p.Label())
	}
	p.Next()
	if p.Index() != 1 {
		t.Fatalf("next past last page: %d", p.Index())
	}
	p.SetPageSize(5)
	if p.Index() != 0 || p.Label() != "1 – 5 of 12" {
		t.Fatalf("after resize index=%d label=%q", p.Index(), p.Label())
	}
}

func TestEmptyTotal(t *testing.T) {
	p := New(10)
	p.SetTotal(0)
	if p.MaxPage() != 0 || p.Label() != "0 – 0 of 0" {
		t.Fatalf("empty: max=%d label=%q", p.MaxPage(), p.Label())
	}
	if got := Slice(p, []int{}); len(got) != 0 {
		t.Fatalf("slice of empty: %v", got)
	}
	p.Prev()
	if p.Index() != 0 {
		t.Fatalf("prev below zero")
	}
}

func TestClampOnShrink(t *testing.T) {
	p := New(5)
	p.SetTotal(23)
	for i := 0; i < 10; i++ {
		p.Next()
	}
	if p.Index() != 4 {
		t.Fatalf("index %d, want 4", p.Index())
	}
	p.SetTotal(7)
	if p.Index() != 1 {
		t.Fatalf("clamped to %d, want 1", p.Index())
	}
	p.SetTotal(5)
	if p.Index() != 0 {
		t.Fatalf("exact multiple should not leave an empty last page, index %d", p.Index())
	}
}

func TestIndexAlwaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	p := New(10)
	for i := 0; i < 2000; i++ {
		switch r.Intn(4) {
		case 0:
			p.SetPageSize(Sizes[r.Intn(len(Sizes))])
		case 1:
			p.Next()
		case 2:
			p.Prev()
		case 3:
			p.SetTotal(r.Intn(120))
		}
		if p.Index() < 0 || p.Index() > p.MaxPage() {
			t.Fatalf("step %d: index %d outside [0,%d]", i, p.Index(), p.MaxPage())
		}
	}
}

func TestCycleSize(t *testing.T) {
	p := New(10)
	p.CycleSize()
	if p.Size() != 20 {
		t.Fatalf("size %d", p.Size())
	}
	p.CycleSize()
	p.CycleSize()
	if p.Size() != 5 {
		t.Fatalf("wrap: size %d", p.Size())
	}
}
