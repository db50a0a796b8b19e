package logx

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestRingDropsOldest(t *testing.T) {
	SetLevel(Debug)
	defer SetLevel(Info)
	for i := 0; i < maxLines+10; i++ {
		Debugf("line %d", i)
	}
	lines := Tail(0)
	if len(lines) != maxLines {
		t.Fatalf("len %d", len(lines))
	}
	if !strings.HasSuffix(lines[0], fmt.Sprintf("line %d", 10)) {
		t.Fatalf("first line %q", lines[0])
	}
	if !strings.HasSuffix(lines[len(lines)-1], fmt.Sprintf("line %d", maxLines+9)) {
		t.Fatalf("last line %q", lines[len(lines)-1])
	}
	if tail := Tail(2); len(tail) != 2 || tail[1] != lines[len(lines)-1] {
		t.Fatalf("tail %v", tail)
	}
}

func TestLevelFilterAndCounts(t *testing.T) {
	SetLevel(Warn)
	defer SetLevel(Info)
	before := Count(Warn)
	Infof("hidden-marker")
	Warnf("shown-marker")
	joined := strings.Join(Tail(0), "\n")
	if strings.Contains(joined, "hidden-marker") || !strings.Contains(joined, "WARN  shown-marker") {
		t.Fatalf("level filter: %q", Tail(2))
	}
	if Count(Warn) != before+1 {
		t.Fatalf("warn count %d -> %d", before, Count(Warn))
	}
	if l, ok := ParseLevel(" WARNING "); !ok || l != Warn {
		t.Fatalf("parse warning")
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatalf("unknown level accepted")
	}
}

func TestOutputMirrorsLines(t *testing.T) {
	var b bytes.Buffer
	SetOutput(&b)
	defer SetOutput(nil)
	Errorf("boom %d", 7)
	if !strings.Contains(b.String(), "ERROR boom 7") {
		t.Fatalf("sink got %q", b.String())
	}
}
