package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"merchantconsole/internal/model"
	"merchantconsole/internal/util/logx"
)

func (m *Model) View() string {
	var v string
	if m.view == viewDetail && m.detail != nil {
		v = m.renderDetail()
	} else {
		v = m.renderList()
	}
	if m.modalActive {
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(m.screens))
	for i, s := range m.screens {
		title := fmt.Sprintf("%s %d", s.dom.Title, s.store.Len())
		if i == m.cur {
			parts[i] = m.styles.TabActive.Render(title)
		} else {
			parts[i] = m.styles.TabInactive.Render(title)
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderList() string {
	s := m.screen()
	labels := map[string]string{}
	for _, f := range s.dom.Fields {
		labels[f.Key] = f.Label
	}
	filters := renderChips(s.engine.Chips(), labels, m.styles)
	if term := s.engine.Settled(); term != "" {
		filters = strings.TrimSpace(filters + " " + m.styles.Field.Render(s.engine.FieldLabel()+" ~ "+term))
	}
	if expr := s.engine.Expr(); expr != "" {
		filters = strings.TrimSpace(filters + " " + m.styles.Help.Render("expr: "+expr))
	}
	if filters == "" {
		filters = m.styles.Help.Render("no filters  [/]=search " + s.engine.FieldLabel())
	}

	pagerLine := fmt.Sprintf("%s   page %d  size %d  field %s",
		s.engine.Label(), s.engine.PageIndex()+1, s.engine.PageSize(), s.engine.FieldLabel())
	if s.ctl != nil {
		if n := s.ctl.PendingCount(); n > 0 {
			pagerLine += m.styles.Pending.Render(fmt.Sprintf("   %d pending", n))
		}
	}

	var bottom string
	switch m.inline {
	case inlineSearch:
		bottom = m.input.View() + m.styles.Help.Render("    [enter]=add chip [tab]=field [esc]=done")
	case inlineExpr:
		bottom = m.input.View() + m.styles.Help.Render("    [enter]=apply [esc]=cancel")
	case inlineSuggest:
		bottom = m.input.View() + m.styles.Help.Render("    [enter]=ask [esc]=cancel")
	default:
		bottom = m.styles.Help.Render("[?]=help [/]=search [space]=toggle [enter]=open [e]=export [←/→]=page [tab]=domain")
	}

	return strings.Join([]string{
		m.renderTabs(),
		filters,
		m.tbl.View(),
		m.styles.Status.Render(pagerLine),
		bottom,
		m.renderStatus(),
	}, "\n")
}

func (m *Model) renderStatus() string {
	busy := ""
	if m.busy > 0 {
		busy = m.spin.View() + " "
	}
	msg := m.lastMsg
	if m.lastErr {
		msg = m.styles.Error.Render(msg)
	} else {
		msg = m.styles.Status.Render(msg)
	}
	return busy + msg
}

func (m *Model) renderDetail() string {
	st := m.detail
	head := m.styles.TabActive.Render(st.dom.Title) + m.styles.Status.Render(" › "+st.rec.ID)
	var body string
	switch {
	case st.loading:
		body = m.spin.View() + " loading detail…"
	case st.err != nil:
		body = m.styles.Error.Render(fmt.Sprintf("could not load detail (%s): %v", model.Classify(st.err), st.err))
	default:
		body = renderSections(st.det, m.styles)
		if st.saving {
			body = m.styles.Pending.Render("saving…") + "\n" + body
		}
	}
	lines := strings.Split(body, "\n")
	h := m.termHeight - 4
	if h < 5 {
		h = 20
	}
	if st.offset > len(lines)-1 {
		st.offset = len(lines) - 1
	}
	if st.offset < 0 {
		st.offset = 0
	}
	end := st.offset + h
	if end > len(lines) {
		end = len(lines)
	}
	hint := "[esc]=back [↑/↓]=scroll [v]=raw"
	if st.dom.CanEdit() {
		hint += " [E]=edit"
	}
	if st.dom.ToggleField != "" {
		hint += " [space]=toggle"
	}
	return strings.Join([]string{
		head,
		strings.Join(lines[st.offset:end], "\n"),
		m.styles.Help.Render(hint),
		m.renderStatus(),
	}, "\n")
}

func (m *Model) renderHelp() string {
	if len(m.helpItems) == 0 {
		m.helpItems = m.buildHelpItems()
	}
	if m.helpSel >= len(m.helpItems) {
		m.helpSel = len(m.helpItems) - 1
	}
	if m.helpSel < 0 {
		m.helpSel = 0
	}
	lines := []string{"Shortcuts:"}
	group := ""
	selLine := 0
	for i, it := range m.helpItems {
		if it.group != group {
			group = it.group
			lines = append(lines, "", group+":")
		}
		prefix := "  "
		if i == m.helpSel {
			prefix = "> "
			selLine = len(lines)
		}
		lines = append(lines, fmt.Sprintf("%s[%s] %s", prefix, keyLabel(it.key), it.text))
	}
	if h := m.modalVP.Height; h > 0 {
		if selLine < m.modalVP.YOffset {
			m.modalVP.YOffset = selLine
		} else if selLine >= m.modalVP.YOffset+h {
			m.modalVP.YOffset = selLine - h + 1
		}
	}
	return m.styles.Help.Render(strings.Join(lines, "\n"))
}

func (m *Model) openHelpModal() {
	m.modalActive = true
	m.modalKind = modalHelp
	m.modalTitle = "Help"
	m.helpItems = m.buildHelpItems()
	m.helpSel = 0
	m.modalBody = m.renderHelp()
	m.resizeModal()
}

func (m *Model) openRawModal(r model.Record) {
	m.modalActive = true
	m.modalKind = modalRaw
	m.modalTitle = "Record " + r.ID
	m.modalBody = colorizeRecord(r, m.styles)
	m.resizeModal()
}

func (m *Model) openAppLogsModal() {
	m.modalActive = true
	m.modalKind = modalLogs
	m.modalTitle = "Application Logs"
	m.modalBody = strings.Join(logx.Tail(500), "\n")
	m.resizeModal()
}

func (m *Model) openForm(f *form) {
	m.form = f
	m.modalActive = true
	m.modalKind = modalForm
	m.modalTitle = f.title
	m.resizeModal()
}

func (m *Model) closeModal() {
	m.modalActive = false
	m.modalKind = modalNone
	m.form = nil
}

func (m *Model) resizeModal() {
	w := m.termWidth - 6
	h := m.termHeight - 6
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.modalVP = viewport.New(w-4, h-4)
	m.modalVP.SetContent(m.modalBody)
}

func (m *Model) renderModal() string {
	var content string
	switch m.modalKind {
	case modalHelp:
		m.modalVP.SetContent(m.renderHelp())
		content = m.modalVP.View() + "\n[esc]=close  [enter]=run"
	case modalForm:
		content = m.form.view(m.styles)
	case modalLogs:
		header := m.styles.Help.Render(fmt.Sprintf("source: %s  loaded: %s  warn: %d  error: %d",
			m.deps.Hub.Loader().Name(), m.deps.Hub.LoadedAt().Format("15:04:05"), logx.Count(logx.Warn), logx.Count(logx.Error)))
		content = header + "\n" + m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	default:
		content = m.modalVP.View() + "\n[esc/enter]=close  [c]=copy"
	}
	boxW := m.termWidth - 6
	if boxW < 20 {
		boxW = 20
	}
	title := m.styles.PopupTitle.Render(m.modalTitle)
	body := m.styles.PopupBox.Width(boxW).Render(title + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}
