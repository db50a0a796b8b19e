package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"merchantconsole/internal/model"
)

var cols = []Column{{Header: "Customer Name", Field: "customerName"}, {Header: "Price", Field: "price"}}

func TestCSVRoundTrip(t *testing.T) {
	tricky := `Doe, "Johnny"` + "\nJr."
	recs := []model.Record{
		{ID: "1", Fields: map[string]any{"customerName": tricky, "price": 14500.0}},
		{ID: "2", Fields: map[string]any{"customerName": "Jane", "price": 18999.0}},
		{ID: "3", Fields: map[string]any{"price": 1.5}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs, cols, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Customer Name,Price\r\n") {
		t.Fatalf("header/CRLF: %q", buf.String())
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows %d", len(rows))
	}
	if rows[1][0] != tricky {
		t.Fatalf("round trip mismatch: %q", rows[1][0])
	}
	if rows[1][1] != "14500" || rows[3][0] != "" {
		t.Fatalf("values: %v", rows)
	}
}

func TestCSVKeepsLineBreaksInsideFields(t *testing.T) {
	recs := []model.Record{
		{ID: "1", Fields: map[string]any{"customerName": "a\rb", "price": "x\ny"}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs, cols, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Customer Name,Price\r\n\"a\rb\",\"x\ny\"\r\n"
	if buf.String() != want {
		t.Fatalf("wire bytes\n got %q\nwant %q", buf.String(), want)
	}
}

func TestEmptyExport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, cols, nil); !errors.Is(err, model.ErrEmptyExportSet) {
		t.Fatalf("expected ErrEmptyExportSet, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("header-only output written")
	}
	dir := t.TempDir()
	if _, err := ToFile(dir, "contracts", FormatCSV, nil, cols, nil, time.Now()); !errors.Is(err, model.ErrEmptyExportSet) {
		t.Fatalf("ToFile: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("file created for empty export")
	}
}

func TestToFileNamesAndFormats(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	recs := []model.Record{{ID: "1", Fields: map[string]any{"customerName": "A", "price": 1}}}
	p, err := ToFile(dir, "Contracts", FormatCSV, recs, cols, nil, now)
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if filepath.Base(p) != "contracts_2026-10-18T09-30-00Z.csv" {
		t.Fatalf("name %s", filepath.Base(p))
	}
	p, err = ToFile(dir, "contracts", FormatJSON, recs, cols, nil, now)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	f, err := os.Open(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		t.Fatalf("no ndjson line")
	}
	var r model.Record
	if err := json.Unmarshal(s.Bytes(), &r); err != nil || r.ID != "1" {
		t.Fatalf("ndjson decode: %v %+v", err, r)
	}
}
