package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) openInline(mode inlineMode) {
	m.inline = mode
	m.input.Reset()
	switch mode {
	case inlineSearch:
		m.input.Prompt = "/"
		m.input.Placeholder = "search " + m.screen().engine.FieldLabel() + " (enter=add chip, tab=field)"
		m.input.SetValue(m.screen().engine.Raw())
		m.input.CursorEnd()
	case inlineExpr:
		m.input.Prompt = ":"
		m.input.Placeholder = "expression, e.g. price > 1000 && status == 'Active'"
		m.input.SetValue(m.screen().engine.Expr())
		m.input.CursorEnd()
	case inlineSuggest:
		m.input.Prompt = "ai> "
		m.input.Placeholder = "describe the records you want"
	}
	m.input.Focus()
}

func (m *Model) closeInline() {
	m.inline = inlineNone
	m.input.Blur()
}

// updateInline handles keys while the bottom input line is active.
func (m *Model) updateInline(msg tea.KeyMsg) tea.Cmd {
	s := m.screen()
	switch msg.Type {
	case tea.KeyEsc:
		if m.inline == inlineSearch {
			s.engine.Flush()
			s.engine.Refresh()
			m.refreshRows()
		}
		m.closeInline()
		return nil
	case tea.KeyTab:
		if m.inline == inlineSearch {
			s.engine.CycleField()
			m.input.Placeholder = "search " + s.engine.FieldLabel() + " (enter=add chip, tab=field)"
			m.refreshRows()
		}
		return nil
	case tea.KeyBackspace:
		if m.inline == inlineSearch && m.input.Value() == "" {
			if n := len(s.engine.Chips()); n > 0 {
				s.engine.RemoveChip(n - 1)
				m.refreshRows()
			}
			return nil
		}
	case tea.KeyEnter:
		v := strings.TrimSpace(m.input.Value())
		switch m.inline {
		case inlineSearch:
			if s.engine.Commit() {
				m.input.Reset()
				m.refreshRows()
			}
			return nil
		case inlineExpr:
			if err := s.engine.SetExpr(v); err != nil {
				m.setError("expression rejected", err)
				return nil
			}
			m.closeInline()
			m.refreshRows()
			if v == "" {
				m.setStatus("expression cleared")
			} else {
				m.setStatus("expression applied: %d match", s.engine.Total())
			}
			return nil
		case inlineSuggest:
			m.closeInline()
			if v == "" {
				return nil
			}
			return m.suggestCmd(s, v)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.inline == inlineSearch && m.input.Value() != s.engine.Raw() {
		s.engine.Type(m.input.Value())
	}
	return cmd
}
