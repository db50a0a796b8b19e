package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
	"merchantconsole/internal/remote"
	"merchantconsole/internal/util/logx"
)

// Remote work runs in commands; results come back as messages.

func (m *Model) reloadCmd() tea.Cmd {
	m.busy++
	hub, ctx := m.deps.Hub, m.ctx
	return func() tea.Msg {
		counts, err := hub.Reload(ctx)
		return reloadMsg{counts: counts, err: err}
	}
}

func (m *Model) reloadDomainCmd(n domain.Name) tea.Cmd {
	m.busy++
	hub, ctx := m.deps.Hub, m.ctx
	return func() tea.Msg {
		c, err := hub.ReloadDomain(ctx, n)
		return domainReloadMsg{domain: n, n: c, err: err}
	}
}

func waitWatch(ch <-chan domain.Name) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		return watchMsg{domain: n, closed: !ok}
	}
}

// toggleCmd applies the proposed value now and settles it once the backend answers.
func (m *Model) toggleCmd(s *screen, rec model.Record) tea.Cmd {
	if s.ctl == nil {
		if m.deps.Backend == nil {
			m.setStatus("read-only source: toggles need --api-base or --demo")
		} else {
			m.setStatus("%s cannot be toggled", s.dom.Title)
		}
		return nil
	}
	in, err := mutate.ToggleIntent(s.store, rec.ID, s.dom.ToggleField)
	if err != nil {
		m.setError("toggle", err)
		return nil
	}
	t, err := s.ctl.Begin(in)
	if errors.Is(err, mutate.ErrPending) {
		m.setStatus("update already in progress for %s", rec.ID)
		return nil
	}
	if err != nil {
		m.setError("toggle", err)
		return nil
	}
	s.sync()
	m.refreshRows()
	m.busy++
	ctx, name := m.ctx, s.dom.Name
	return func() tea.Msg {
		ups, err := s.mut.Apply(ctx, in)
		return toggleMsg{domain: name, outcome: s.ctl.Settle(t, ups, err)}
	}
}

// recordDetail shows a record as one flat section when no richer detail exists.
func recordDetail(d *domain.Domain, r model.Record) model.Detail {
	if det, ok := d.Detail(r); ok {
		return det
	}
	sec := model.Section{Name: string(d.Name), Fields: map[string]string{}}
	for k, v := range r.Fields {
		sec.Fields[k] = model.Stringify(v)
	}
	return model.Detail{ID: r.ID, Sections: []model.Section{sec}}
}

func (m *Model) openDetail(s *screen, rec model.Record) tea.Cmd {
	st := &detailState{dom: s.dom, rec: rec}
	if m.deps.Backend != nil {
		st.holder = reconcile.NewHolder(remote.Editor(m.deps.Backend, s.dom, func() (model.Detail, bool) {
			return st.holder.Detail()
		}), s.dom.Required)
	} else {
		st.holder = reconcile.NewHolder(reconcile.EditorFunc(readOnlyEdit), s.dom.Required)
	}
	m.detail = st
	m.view = viewDetail
	if m.deps.Backend == nil {
		st.det = recordDetail(s.dom, rec)
		st.loaded = true
		st.holder.Set(st.det)
		return nil
	}
	st.loading = true
	m.busy++
	b, ctx := m.deps.Backend, m.ctx
	return func() tea.Msg {
		det, err := remote.FetchDetail(ctx, b, st.dom, st.rec)
		return detailMsg{state: st, det: det, err: err}
	}
}

func readOnlyEdit(_ context.Context, in reconcile.EditIntent) (reconcile.Response, error) {
	return reconcile.Response{}, fmt.Errorf("edit %s: read-only source: %w", in.RecordID, model.ErrMutationRejected)
}

func (m *Model) submitEditCmd(st *detailState, sections map[string]map[string]string) tea.Cmd {
	in := reconcile.EditIntent{RecordID: st.rec.ID, Sections: sections}
	st.saving = true
	m.busy++
	ctx := m.ctx
	return func() tea.Msg {
		res, err := st.holder.Submit(ctx, in)
		return editMsg{state: st, intent: in, res: res, err: err}
	}
}

func (m *Model) suggestCmd(s *screen, request string) tea.Cmd {
	if !m.deps.AI.Enabled() || m.cfg.Offline {
		m.setStatus("AI assistant disabled (offline or OPENAI_API_KEY unset)")
		return nil
	}
	m.busy++
	client, ctx, name, fields := m.deps.AI, m.ctx, s.dom.Name, s.dom.Fields
	return func() tea.Msg {
		sg, err := client.SuggestChips(ctx, fields, request)
		return suggestMsg{domain: name, s: sg, err: err}
	}
}

// createLead adds a lead from the form locally; the backend has no create endpoint.
func (m *Model) createLead(f *form) {
	s := m.screenFor(domain.Leads)
	if s == nil {
		return
	}
	qty, _ := strconv.Atoi(f.value("quantity"))
	price, _ := strconv.ParseFloat(f.value("price"), 64)
	rec := domain.NewLead(domain.LeadInput{
		TransactionID:   f.value("transactionId"),
		TransactionDate: f.value("transactionDate"),
		CustomerName:    f.value("customerName"),
		CustomerEmail:   f.value("customerEmail"),
		ProductName:     f.value("productName"),
		Quantity:        qty,
		LineItemPrice:   price,
	}, time.Now())
	s.store.Prepend(rec)
	s.sync()
	m.refreshRows()
	logx.Infof("ui: lead %s created", rec.ID)
	m.setStatus("lead %s created", model.DefaultAccess(rec, "customerName"))
}
