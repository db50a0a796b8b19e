package ui

import (
	"github.com/charmbracelet/bubbles/table"

	"merchantconsole/internal/model"
)

const markerWidth = 2

// applyColumns rebuilds the table header for the current domain and width.
func (m *Model) applyColumns() {
	cols := m.screen().dom.Columns
	widths := m.computeWidths()
	tc := make([]table.Column, 0, len(cols)+1)
	tc = append(tc, table.Column{Title: "", Width: markerWidth})
	for i, c := range cols {
		tc = append(tc, table.Column{Title: c.Header, Width: widths[i]})
	}
	// rows must never be wider than the header
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tc)
	if m.termWidth > 0 {
		m.tbl.SetWidth(m.termWidth)
	}
}

func (m *Model) computeWidths() []int {
	cols := m.screen().dom.Columns
	total := m.termWidth
	if total <= 0 {
		total = 120
	}
	// one cell of padding per column plus the marker column
	avail := total - markerWidth - 1 - len(cols)
	out := make([]int, len(cols))
	if len(cols) == 0 {
		return out
	}
	need := 0
	for i, c := range cols {
		out[i] = typeMin(c.Header)
		need += out[i]
	}
	extra := avail - need
	if extra <= 0 {
		return out
	}
	share := extra / len(cols)
	for i := range out {
		out[i] += share
	}
	out[len(out)-1] += extra - share*len(cols)
	return out
}

func typeMin(header string) int {
	n := runeLen(header)
	if n < 6 {
		n = 6
	}
	return n
}

// refreshRows renders the current page of the current screen into the table.
func (m *Model) refreshRows() {
	s := m.screen()
	page := s.engine.Page()
	widths := m.computeWidths()
	access := s.engine.Accessor()
	rows := make([]table.Row, 0, len(page))
	for _, r := range page {
		if cur, ok := s.store.Get(r.ID); ok {
			r = cur
		}
		row := make(table.Row, 0, len(s.dom.Columns)+1)
		row = append(row, m.marker(s, r))
		for i, c := range s.dom.Columns {
			row = append(row, truncateRunes(cellText(access(r, c.Field)), widths[i]))
		}
		rows = append(rows, row)
	}
	m.tbl.SetRows(rows)
	if n := len(rows); n == 0 {
		m.tbl.SetCursor(0)
	} else if m.tbl.Cursor() >= n {
		m.tbl.SetCursor(n - 1)
	}
}

func (m *Model) marker(s *screen, r model.Record) string {
	if s.pending(r.ID) {
		return "…"
	}
	if s.dom.ToggleField == "" {
		return ""
	}
	if v, _ := r.Fields[s.dom.ToggleField].(bool); v {
		return "●"
	}
	return "○"
}
