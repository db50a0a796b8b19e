package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"merchantconsole/internal/ai"
	"merchantconsole/internal/browser"
	"merchantconsole/internal/config"
	"merchantconsole/internal/domain"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
	"merchantconsole/internal/remote"
	"merchantconsole/internal/source"
)

type view int

const (
	viewList view = iota
	viewDetail
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalRaw
	modalLogs
	modalForm
)

type inlineMode int

const (
	inlineNone inlineMode = iota
	inlineSearch
	inlineExpr
	inlineSuggest
)

// Deps are the collaborators the console drives. Backend may be nil, in
// which case the console is read-only.
type Deps struct {
	Hub     *source.Hub
	Backend remote.Backend
	AI      *ai.OpenAIClient
	Watch   <-chan domain.Name
}

// screen is the list state of one domain tab.
type screen struct {
	dom    *domain.Domain
	store  *model.Store
	engine *browser.Engine
	ctl    *mutate.Controller
	mut    mutate.Mutator
}

// detailState backs the detail view of one record.
type detailState struct {
	dom     *domain.Domain
	rec     model.Record
	holder  *reconcile.Holder
	det     model.Detail
	loaded  bool
	loading bool
	saving  bool
	err     error
	offset  int
}

type Model struct {
	ctx  context.Context
	cfg  *config.Config
	deps Deps
	send func(tea.Msg)

	screens []*screen
	cur     int
	view    view
	detail  *detailState

	tbl        table.Model
	input      textinput.Model
	spin       spinner.Model
	styles     Styles
	keymap     KeyMap
	termWidth  int
	termHeight int

	inline  inlineMode
	busy    int
	lastMsg string
	lastErr bool

	modalActive bool
	modalKind   modalKind
	modalVP     viewport.Model
	modalTitle  string
	modalBody   string
	helpItems   []helpItem
	helpSel     int
	form        *form
}

type helpItem struct {
	group string
	text  string
	key   tea.Key
}

// Messages posted back into the update loop.
type (
	settledMsg struct {
		domain domain.Name
		term   string
	}
	reloadMsg struct {
		counts map[domain.Name]int
		err    error
	}
	domainReloadMsg struct {
		domain domain.Name
		n      int
		err    error
	}
	watchMsg struct {
		domain domain.Name
		closed bool
	}
	toggleMsg struct {
		domain  domain.Name
		outcome mutate.Outcome
	}
	detailMsg struct {
		state *detailState
		det   model.Detail
		err   error
	}
	editMsg struct {
		state  *detailState
		intent reconcile.EditIntent
		res    reconcile.Result
		err    error
	}
	suggestMsg struct {
		domain domain.Name
		s      ai.Suggestion
		err    error
	}
)

func keyCmd(k tea.Key) tea.Cmd {
	return func() tea.Msg {
		if k.Type == tea.KeyRunes {
			return tea.KeyMsg{Type: k.Type, Runes: k.Runes}
		}
		return tea.KeyMsg{Type: k.Type}
	}
}

func keyLabel(k tea.Key) string {
	switch k.Type {
	case tea.KeyRunes:
		if len(k.Runes) == 1 {
			r := k.Runes[0]
			if r == ' ' {
				return "space"
			}
			return string(r)
		}
		return strings.ToLower(string(k.Runes))
	case tea.KeyEnter:
		return "enter"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyTab:
		return "tab"
	case tea.KeyShiftTab:
		return "shift-tab"
	case tea.KeyLeft:
		return "left"
	case tea.KeyRight:
		return "right"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	default:
		return strings.ToLower(k.String())
	}
}
