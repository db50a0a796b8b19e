package ui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/export"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
	"merchantconsole/internal/source"
	"merchantconsole/internal/util/logx"
)

func (m *Model) buildHelpItems() []helpItem {
	km := m.keymap
	return []helpItem{
		{group: "Navigation", text: "Next domain", key: km.NextTab},
		{group: "Navigation", text: "Previous domain", key: km.PrevTab},
		{group: "Navigation", text: "Previous row", key: tea.Key{Type: tea.KeyUp}},
		{group: "Navigation", text: "Next row", key: tea.Key{Type: tea.KeyDown}},
		{group: "Navigation", text: "Next page", key: km.NextPage},
		{group: "Navigation", text: "Previous page", key: km.PrevPage},
		{group: "Navigation", text: "Cycle page size", key: km.PageSize},

		{group: "Filter", text: "Search / add chip", key: km.Search},
		{group: "Filter", text: "Cycle search field", key: km.CycleField},
		{group: "Filter", text: "Remove last chip", key: km.RemoveChip},
		{group: "Filter", text: "Clear chips", key: km.ClearChips},
		{group: "Filter", text: "Expression filter", key: km.Expr},
		{group: "Filter", text: "Suggest chips (OpenAI)", key: km.Suggest},

		{group: "Records", text: "Open detail", key: km.Open},
		{group: "Records", text: "Toggle status", key: km.Toggle},
		{group: "Records", text: "Edit detail", key: km.Edit},
		{group: "Records", text: "New lead", key: km.NewLead},
		{group: "Records", text: "View raw record", key: km.ViewRaw},

		{group: "Control", text: "Export CSV", key: km.Export},
		{group: "Control", text: "Export JSON lines", key: km.ExportJSON},
		{group: "Control", text: "Reload all domains", key: km.Reload},
		{group: "Control", text: "Sign out (clear data)", key: km.SignOut},
		{group: "Control", text: "Application logs", key: km.AppLogs},
		{group: "Control", text: "Help", key: km.Help},
		{group: "Control", text: "Quit", key: km.Quit},
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		// tabs, chips, pager, input and status lines
		h := msg.Height - 6
		if h < 3 {
			h = 3
		}
		m.tbl.SetHeight(h)
		m.applyColumns()
		m.refreshRows()
		if m.modalActive {
			m.resizeModal()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case settledMsg:
		if m.screen().dom.Name == msg.domain {
			m.refreshRows()
		}
		return m, nil
	case reloadMsg:
		m.busy--
		if errors.Is(msg.err, source.ErrCleared) {
			m.setStatus("reload dropped after sign-out (r to reload)")
			return m, nil
		}
		if msg.err != nil {
			m.setError("reload failed, collections unchanged", msg.err)
			return m, nil
		}
		total := 0
		for _, s := range m.screens {
			s.sync()
			total += msg.counts[s.dom.Name]
		}
		m.refreshRows()
		m.setStatus("loaded %d records from %s", total, m.deps.Hub.Loader().Name())
		return m, nil
	case domainReloadMsg:
		m.busy--
		if errors.Is(msg.err, source.ErrCleared) {
			return m, nil
		}
		if msg.err != nil {
			m.setError("reload "+string(msg.domain), msg.err)
			return m, nil
		}
		if s := m.screenFor(msg.domain); s != nil {
			s.sync()
			if s == m.screen() {
				m.refreshRows()
			}
		}
		m.setStatus("%s reloaded: %d records", msg.domain, msg.n)
		return m, nil
	case watchMsg:
		if msg.closed {
			return m, nil
		}
		return m, tea.Batch(m.reloadDomainCmd(msg.domain), waitWatch(m.deps.Watch))
	case toggleMsg:
		m.busy--
		o := msg.outcome
		if mutate.Discarded(o) {
			return m, nil
		}
		if s := m.screenFor(msg.domain); s != nil {
			s.sync()
			if s == m.screen() {
				m.refreshRows()
			}
		}
		if o.State == mutate.RolledBack {
			m.setError("update failed, reverted "+o.Intent.RecordID, o.Err)
		} else {
			m.setStatus("%s %s set to %v", o.Intent.RecordID, o.Intent.Field, o.Value)
		}
		return m, nil
	case detailMsg:
		m.busy--
		st := msg.state
		if st != m.detail {
			return m, nil
		}
		st.loading = false
		if msg.err != nil {
			st.err = msg.err
			m.setError("detail "+st.rec.ID, msg.err)
			return m, nil
		}
		st.det, st.loaded = msg.det, true
		st.holder.Set(msg.det)
		return m, nil
	case editMsg:
		m.busy--
		msg.state.saving = false
		if errors.Is(msg.err, reconcile.ErrDiscarded) {
			return m, nil
		}
		if msg.err != nil {
			m.setError("save failed, detail unchanged", msg.err)
			return m, nil
		}
		msg.state.det = msg.res.Detail
		if s := m.screenFor(msg.state.dom.Name); s != nil {
			for _, u := range s.dom.ListUpdates(msg.intent) {
				s.store.Set(u.RecordID, u.Field, u.Value)
			}
			s.sync()
			m.refreshRows()
		}
		m.setStatus("saved %s (%s)", msg.intent.RecordID, msg.res.Path)
		return m, nil
	case suggestMsg:
		m.busy--
		if msg.err != nil {
			m.setError("suggest", msg.err)
			return m, nil
		}
		s := m.screenFor(msg.domain)
		if s == nil {
			return m, nil
		}
		added := 0
		for _, c := range msg.s.Chips {
			if s.engine.AddChip(c.Field, c.Value) {
				added++
			}
		}
		if msg.s.Expr != "" {
			if err := s.engine.SetExpr(msg.s.Expr); err != nil {
				logx.Warnf("ui: suggested expression %q rejected: %v", msg.s.Expr, err)
			}
		}
		if s == m.screen() {
			m.refreshRows()
		}
		m.setStatus("AI added %d chips (%d dropped)", added, msg.s.Dropped)
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.modalActive {
		return m.updateModal(msg)
	}
	if m.inline != inlineNone {
		return m, m.updateInline(msg)
	}
	if m.view == viewDetail {
		return m.updateDetail(msg)
	}
	return m.updateList(msg)
}

func (m *Model) switchTab(delta int) {
	n := len(m.screens)
	m.cur = (m.cur + delta + n) % n
	m.applyColumns()
	m.tbl.SetCursor(0)
	m.refreshRows()
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	s := m.screen()
	switch {
	case keyMatches(msg, km.Quit):
		return m, tea.Quit
	case keyMatches(msg, km.NextTab):
		m.switchTab(1)
	case keyMatches(msg, km.PrevTab):
		m.switchTab(-1)
	case keyMatches(msg, km.Search):
		m.openInline(inlineSearch)
	case keyMatches(msg, km.Expr):
		m.openInline(inlineExpr)
	case keyMatches(msg, km.Suggest):
		m.openInline(inlineSuggest)
	case keyMatches(msg, km.CycleField):
		s.engine.CycleField()
		m.refreshRows()
		m.setStatus("search field: %s", s.engine.FieldLabel())
	case keyMatches(msg, km.RemoveChip):
		if n := len(s.engine.Chips()); n > 0 {
			s.engine.RemoveChip(n - 1)
			m.refreshRows()
		}
	case keyMatches(msg, km.ClearChips):
		if s.engine.ClearChips() {
			m.refreshRows()
			m.setStatus("filters cleared")
		}
	case keyMatches(msg, km.NextPage):
		s.engine.NextPage()
		m.tbl.SetCursor(0)
		m.refreshRows()
	case keyMatches(msg, km.PrevPage):
		s.engine.PrevPage()
		m.tbl.SetCursor(0)
		m.refreshRows()
	case keyMatches(msg, km.PageSize):
		n := s.engine.CyclePageSize()
		m.tbl.SetCursor(0)
		m.refreshRows()
		m.setStatus("page size %d", n)
	case keyMatches(msg, km.Open):
		if rec, ok := m.selected(); ok {
			return m, m.openDetail(s, rec)
		}
	case keyMatches(msg, km.Toggle):
		if rec, ok := m.selected(); ok {
			return m, m.toggleCmd(s, rec)
		}
	case keyMatches(msg, km.NewLead):
		if s.dom.Name != domain.Leads {
			m.setStatus("new records can only be created on the Leads tab")
			return m, nil
		}
		m.openForm(leadForm())
	case keyMatches(msg, km.Export):
		m.export(export.FormatCSV)
	case keyMatches(msg, km.ExportJSON):
		m.export(export.FormatJSON)
	case keyMatches(msg, km.Reload):
		m.setStatus("reloading…")
		return m, m.reloadCmd()
	case keyMatches(msg, km.SignOut):
		m.deps.Hub.Clear()
		for _, sc := range m.screens {
			sc.engine.Reset()
			sc.sync()
		}
		m.refreshRows()
		m.setStatus("signed out, collections cleared (r to reload)")
	case keyMatches(msg, km.ViewRaw):
		if rec, ok := m.selected(); ok {
			m.openRawModal(rec)
		}
	case keyMatches(msg, km.AppLogs):
		m.openAppLogsModal()
	case keyMatches(msg, km.Help):
		m.openHelpModal()
	default:
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := m.keymap
	st := m.detail
	switch {
	case keyMatches(msg, km.Back), keyMatches(msg, km.Quit):
		st.holder.Close()
		m.detail = nil
		m.view = viewList
		m.refreshRows()
	case keyMatches(msg, km.Edit):
		switch {
		case !st.dom.CanEdit():
			m.setStatus("%s cannot be edited", st.dom.Title)
		case !st.loaded:
			m.setStatus("detail not loaded yet")
		case st.saving:
			m.setStatus("save in progress")
		default:
			m.openForm(editForm(st.det, st.dom.Editable))
		}
	case keyMatches(msg, km.Toggle):
		if s := m.screenFor(st.dom.Name); s != nil {
			if rec, ok := s.store.Get(st.rec.ID); ok {
				return m, m.toggleCmd(s, rec)
			}
		}
	case keyMatches(msg, km.ViewRaw):
		rec := st.rec
		if s := m.screenFor(st.dom.Name); s != nil {
			if cur, ok := s.store.Get(rec.ID); ok {
				rec = cur
			}
		}
		m.openRawModal(rec)
	case keyMatches(msg, km.AppLogs):
		m.openAppLogsModal()
	case keyMatches(msg, km.Help):
		m.openHelpModal()
	case msg.Type == tea.KeyUp:
		if st.offset > 0 {
			st.offset--
		}
	case msg.Type == tea.KeyDown:
		st.offset++
	case msg.Type == tea.KeyPgUp:
		st.offset -= 10
		if st.offset < 0 {
			st.offset = 0
		}
	case msg.Type == tea.KeyPgDown:
		st.offset += 10
	}
	return m, nil
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modalKind {
	case modalForm:
		f := m.form
		switch msg.Type {
		case tea.KeyEsc:
			m.closeModal()
			return m, nil
		case tea.KeyTab, tea.KeyDown:
			f.move(1)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			f.move(-1)
			return m, nil
		case tea.KeyEnter:
			m.closeModal()
			if f.kind == formLead {
				m.createLead(f)
				return m, nil
			}
			changed := f.changed()
			if changed == nil {
				m.setStatus("no changes")
				return m, nil
			}
			if m.detail == nil {
				return m, nil
			}
			return m, m.submitEditCmd(m.detail, changed)
		}
		return m, f.update(msg)
	case modalHelp:
		switch {
		case msg.Type == tea.KeyUp:
			if m.helpSel > 0 {
				m.helpSel--
			}
		case msg.Type == tea.KeyDown:
			if m.helpSel+1 < len(m.helpItems) {
				m.helpSel++
			}
		case msg.Type == tea.KeyEnter:
			m.closeModal()
			if len(m.helpItems) > 0 {
				return m, keyCmd(m.helpItems[m.helpSel].key)
			}
		case msg.Type == tea.KeyEsc, keyMatches(msg, m.keymap.Quit), keyMatches(msg, m.keymap.Help):
			m.closeModal()
		}
		return m, nil
	}
	switch {
	case msg.Type == tea.KeyEsc, msg.Type == tea.KeyEnter:
		m.closeModal()
		return m, nil
	case msg.String() == "c":
		copyToClipboard(m.modalBody)
		m.setStatus("copied to clipboard")
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m *Model) export(format string) {
	s := m.screen()
	dir := m.cfg.ExportOut
	if dir == "" {
		dir = "."
	}
	path, err := s.engine.Export(dir, string(s.dom.Name), format, s.dom.Columns, time.Now())
	if errors.Is(err, model.ErrEmptyExportSet) {
		m.setStatus("nothing to export")
		return
	}
	if err != nil {
		m.setError("export failed", err)
		return
	}
	logx.Infof("ui: exported %d %s to %s", s.engine.Total(), s.dom.Name, path)
	m.setStatus("exported %d rows to %s", s.engine.Total(), path)
}
