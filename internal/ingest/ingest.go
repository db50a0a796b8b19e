// Package ingest reads record collections from NDJSON files and follows
// those files for appended lines.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nxadm/tail"

	"merchantconsole/internal/model"
	"merchantconsole/internal/util/logx"
)

const DefaultScanBuf = 1 << 20

type Line struct {
	Text   string
	Source string
	When   time.Time
}

// DecodeLine accepts either {"id":..,"fields":{..}} or a flat object whose
// "id" member becomes the record id.
func DecodeLine(b []byte) (model.Record, error) {
	var wrapped struct {
		ID     json.RawMessage `json:"id"`
		Fields map[string]any  `json:"fields"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return model.Record{}, err
	}
	id, err := idString(wrapped.ID)
	if err != nil {
		return model.Record{}, err
	}
	if wrapped.Fields != nil {
		return model.Record{ID: id, Fields: wrapped.Fields}, nil
	}
	var flat map[string]any
	if err := json.Unmarshal(b, &flat); err != nil {
		return model.Record{}, err
	}
	delete(flat, "id")
	return model.Record{ID: id, Fields: flat}, nil
}

func idString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("record without id")
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}
	// numeric ids keep their literal form
	return string(bytes.TrimSpace(raw)), nil
}

// ReadRecords decodes one record per line. Blank lines are skipped and
// undecodable lines are logged and skipped.
func ReadRecords(ctx context.Context, r io.Reader, src string, maxBuf int) ([]model.Record, error) {
	if maxBuf <= 0 {
		maxBuf = DefaultScanBuf
	}
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 1024*64)
	scanner.Buffer(buf, maxBuf)
	var out []model.Record
	n := 0
	for scanner.Scan() {
		n++
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := DecodeLine(line)
		if err != nil {
			logx.Warnf("ingest: %s:%d: %v", src, n, err)
			continue
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return out, nil
}

func ReadFile(ctx context.Context, path string, maxBuf int) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(ctx, f, path, maxBuf)
}

// Follow emits lines appended to path until ctx is done. Both channels are
// closed on return.
func Follow(ctx context.Context, path string) (<-chan Line, <-chan error) {
	out := make(chan Line, 64)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		t, err := tail.TailFile(path, tail.Config{
			Follow:    true,
			ReOpen:    true,
			MustExist: true,
			Logger:    tail.DiscardingLogger,
			Poll:      true,
			Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		})
		if err != nil {
			errs <- err
			return
		}
		defer t.Cleanup()
		for {
			select {
			case <-ctx.Done():
				_ = t.Stop()
				return
			case l, ok := <-t.Lines:
				if !ok {
					return
				}
				if l.Err != nil {
					select {
					case errs <- l.Err:
					default:
					}
					continue
				}
				select {
				case out <- Line{Text: l.Text, Source: path, When: time.Now()}:
				case <-ctx.Done():
					_ = t.Stop()
					return
				}
			}
		}
	}()
	return out, errs
}
