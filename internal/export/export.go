package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"merchantconsole/internal/model"
)

// Column maps a CSV header onto a record field.
type Column struct {
	Header string
	Field  string
}

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// WriteCSV writes a header row and one row per record, CRLF terminated.
// Values containing a comma, quote, CR or LF are quoted with inner quotes
// doubled; field bytes are written verbatim.
func WriteCSV(w io.Writer, recs []model.Record, cols []Column, access model.Accessor) error {
	if len(recs) == 0 {
		return model.ErrEmptyExportSet
	}
	if access == nil {
		access = model.DefaultAccess
	}
	rw := newRowWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := rw.write(header); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for _, r := range recs {
		for i, c := range cols {
			row[i] = access(r, c.Field)
		}
		if err := rw.write(row); err != nil {
			return err
		}
	}
	return rw.bw.Flush()
}

// rowWriter quotes with encoding/csv in LF mode and swaps only the record
// terminator for CRLF. csv.Writer.UseCRLF would also rewrite line breaks
// inside quoted fields.
type rowWriter struct {
	bw  *bufio.Writer
	buf bytes.Buffer
	cw  *csv.Writer
}

func newRowWriter(w io.Writer) *rowWriter {
	rw := &rowWriter{bw: bufio.NewWriter(w)}
	rw.cw = csv.NewWriter(&rw.buf)
	return rw
}

func (rw *rowWriter) write(fields []string) error {
	rw.buf.Reset()
	if err := rw.cw.Write(fields); err != nil {
		return err
	}
	rw.cw.Flush()
	if err := rw.cw.Error(); err != nil {
		return err
	}
	line := bytes.TrimSuffix(rw.buf.Bytes(), []byte{'\n'})
	if _, err := rw.bw.Write(line); err != nil {
		return err
	}
	_, err := rw.bw.WriteString("\r\n")
	return err
}

// WriteNDJSON writes one JSON object per record.
func WriteNDJSON(w io.Writer, recs []model.Record) error {
	if len(recs) == 0 {
		return model.ErrEmptyExportSet
	}
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FileName builds "<domain>_<timestamp>.<ext>".
func FileName(domain, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(domain), now.UTC().Format("2006-01-02T15-04-05Z"), ext)
}

// ToFile writes recs in format into dir and returns the created path.
// An empty record set creates no file.
func ToFile(dir, domain, format string, recs []model.Record, cols []Column, access model.Accessor, now time.Time) (string, error) {
	if len(recs) == 0 {
		return "", model.ErrEmptyExportSet
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := FormatCSV
	if format == FormatJSON {
		ext = "ndjson"
	}
	path := filepath.Join(dir, FileName(domain, ext, now))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	switch format {
	case FormatJSON:
		err = WriteNDJSON(f, recs)
	default:
		err = WriteCSV(f, recs, cols, access)
	}
	if err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}
