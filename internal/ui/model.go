package ui

import (
	"merchantconsole/internal/browser"
	"merchantconsole/internal/config"
	"merchantconsole/internal/domain"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/remote"
	"merchantconsole/internal/util/logx"
)

func newScreen(d *domain.Domain, store *model.Store, cfg *config.Config, backend remote.Backend, onSettle func(string)) *screen {
	s := &screen{dom: d, store: store}
	s.engine = browser.New(d.Fields, d.Accessor(),
		browser.WithQuiet(cfg.Debounce()),
		browser.WithPageSize(cfg.PageSize),
		browser.WithOnSettle(onSettle),
	)
	if backend != nil && d.CanToggle() {
		s.mut = remote.Mutator(backend, d, store)
		s.ctl = mutate.NewController(store, s.mut,
			mutate.WithRecordGuard(),
			mutate.WithNotify(func(o mutate.Outcome) {
				if o.State == mutate.RolledBack {
					logx.Warnf("ui: %s %s.%s rolled back (%s): %v", d.Name, o.Intent.RecordID, o.Intent.Field, model.Classify(o.Err), o.Err)
					return
				}
				logx.Infof("ui: %s %s.%s = %v", d.Name, o.Intent.RecordID, o.Intent.Field, o.Value)
			}),
		)
	}
	s.sync()
	return s
}

// sync feeds the current store contents to the engine.
func (s *screen) sync() {
	recs, _ := s.store.Snapshot()
	s.engine.SetCollection(recs)
}

func (s *screen) close() {
	s.engine.Close()
	if s.ctl != nil {
		s.ctl.Close()
	}
}

func (s *screen) pending(id string) bool {
	return s.ctl != nil && s.ctl.IsPending(id, s.dom.ToggleField)
}

func (m *Model) screen() *screen { return m.screens[m.cur] }

func (m *Model) screenFor(n domain.Name) *screen {
	for _, s := range m.screens {
		if s.dom.Name == n {
			return s
		}
	}
	return nil
}

// selected returns the record under the table cursor on the current page.
func (m *Model) selected() (model.Record, bool) {
	page := m.screen().engine.Page()
	i := m.tbl.Cursor()
	if i < 0 || i >= len(page) {
		return model.Record{}, false
	}
	// re-read so the caller sees optimistic writes
	if r, ok := m.screen().store.Get(page[i].ID); ok {
		return r, true
	}
	return page[i], true
}

func (m *Model) setStatus(format string, a ...any) {
	m.lastMsg = sprintf(format, a...)
	m.lastErr = false
}

func (m *Model) setError(prefix string, err error) {
	m.lastMsg = sprintf("%s (%s): %v", prefix, model.Classify(err), err)
	m.lastErr = true
	logx.Warnf("ui: %s", m.lastMsg)
}

func (m *Model) closeAll() {
	for _, s := range m.screens {
		s.close()
	}
	if m.detail != nil && m.detail.holder != nil {
		m.detail.holder.Close()
	}
}
