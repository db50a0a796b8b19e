package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"merchantconsole/internal/config"
)

func initialModel(ctx context.Context, cfg *config.Config, deps Deps) *Model {
	m := &Model{
		ctx:    ctx,
		cfg:    cfg,
		deps:   deps,
		styles: NewStyles(cfg.Theme == config.ThemeDark),
		keymap: DefaultKeyMap(),
		input:  textinput.New(),
		spin:   spinner.New(),
	}
	m.spin.Spinner = spinner.Dot
	m.input.CharLimit = 256
	m.modalVP = viewport.New(80, 20)

	for i, d := range deps.Hub.Domains() {
		name := d.Name
		m.screens = append(m.screens, newScreen(d, deps.Hub.Store(name), cfg, deps.Backend, func(term string) {
			m.post(settledMsg{domain: name, term: term})
		}))
		if string(name) == cfg.Domain {
			m.cur = i
		}
	}

	m.tbl = table.New(table.WithFocused(true), table.WithHeight(cfg.PageSize))
	ts := table.DefaultStyles()
	ts.Header = m.styles.TableStyles.Header
	ts.Cell = m.styles.TableStyles.Cell
	ts.Selected = m.styles.TableStyles.Selected
	m.tbl.SetStyles(ts)
	m.applyColumns()
	m.refreshRows()
	return m
}

// post forwards msg into the running program without blocking the caller,
// which may be a timer goroutine.
func (m *Model) post(msg tea.Msg) {
	if send := m.send; send != nil {
		go send(msg)
	}
}

func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	m := initialModel(ctx, cfg, deps)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	m.send = p.Send
	_, err := p.Run()
	m.closeAll()
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.reloadCmd()}
	if m.deps.Watch != nil {
		cmds = append(cmds, waitWatch(m.deps.Watch))
	}
	return tea.Batch(cmds...)
}
