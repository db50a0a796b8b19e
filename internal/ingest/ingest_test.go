package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"merchantconsole/internal/domain"
)

func TestReadRecordsShapes(t *testing.T) {
	in := strings.Join([]string{
		`{"id":"P-1","fields":{"customerName":"Jane","price":10}}`,
		``,
		`{"id":42,"customerName":"John"}`,
		`not json`,
		`{"customerName":"no id"}`,
	}, "\n")
	recs, err := ReadRecords(context.Background(), strings.NewReader(in), "test", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].ID != "P-1" || recs[0].Fields["customerName"] != "Jane" {
		t.Fatalf("wrapped %+v", recs[0])
	}
	if recs[1].ID != "42" || recs[1].Fields["customerName"] != "John" {
		t.Fatalf("flat %+v", recs[1])
	}
	if _, ok := recs[1].Fields["id"]; ok {
		t.Fatalf("id left in fields")
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewGenerator(7, base).Records(domain.Contracts, 20)
	b := NewGenerator(7, base).Records(domain.Contracts, 20)
	if len(a) != 20 || a[19].Fields["customerName"] != b[19].Fields["customerName"] {
		t.Fatalf("not deterministic")
	}
	prods := NewGenerator(1, base).Records(domain.Products, 10)
	if len(prods) < 10 {
		t.Fatalf("variants %d", len(prods))
	}
	for _, p := range prods {
		if _, ok := p.Fields["displayOffered"].(bool); !ok {
			t.Fatalf("product %s without toggle flag", p.ID)
		}
	}
	g := NewGenerator(3, base)
	if r1, r2 := g.Record(domain.Leads), g.Record(domain.Leads); r1.ID == r2.ID {
		t.Fatalf("fresh ids collide")
	}
}

func TestFollowSeesAppendedLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "contracts.ndjson")
	if err := os.WriteFile(p, []byte(`{"id":"old"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lines, _ := Follow(ctx, p)

	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case l := <-lines:
			if l.Text == `{"id":"old"}` {
				t.Fatalf("follow replayed existing content")
			}
			if strings.Contains(l.Text, "new") {
				return
			}
		case <-tick.C:
			if _, err := f.WriteString(`{"id":"new"}` + "\n"); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatalf("no appended line seen")
		}
	}
}
