package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"merchantconsole/internal/model"
)

type formKind int

const (
	formEdit formKind = iota
	formLead
)

type formField struct {
	section string
	key     string
	initial string
	input   textinput.Model
}

// form is a column of labelled text inputs shown in a modal.
type form struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
}

func newForm(kind formKind, title string) *form {
	return &form{kind: kind, title: title}
}

func (f *form) add(section, key, value string) {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 256
	in.SetValue(value)
	if len(f.fields) == 0 {
		in.Focus()
	}
	f.fields = append(f.fields, formField{section: section, key: key, initial: value, input: in})
}

// editForm lists every field of the editable sections of d.
func editForm(d model.Detail, editable []string) *form {
	f := newForm(formEdit, "Edit "+d.ID)
	for _, name := range editable {
		sec, ok := d.Section(name)
		if !ok {
			continue
		}
		for _, k := range sec.FieldNames() {
			f.add(name, k, sec.Fields[k])
		}
	}
	return f
}

func leadForm() *form {
	f := newForm(formLead, "New lead")
	for _, k := range []string{"customerName", "customerEmail", "productName", "transactionId", "transactionDate", "quantity", "price"} {
		f.add("lead", k, "")
	}
	return f
}

func (f *form) move(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// changed returns the edited values grouped by section, nil when nothing changed.
func (f *form) changed() map[string]map[string]string {
	var out map[string]map[string]string
	for _, fl := range f.fields {
		v := strings.TrimSpace(fl.input.Value())
		if v == strings.TrimSpace(fl.initial) {
			continue
		}
		if out == nil {
			out = map[string]map[string]string{}
		}
		if out[fl.section] == nil {
			out[fl.section] = map[string]string{}
		}
		out[fl.section][fl.key] = v
	}
	return out
}

func (f *form) value(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return strings.TrimSpace(fl.input.Value())
		}
	}
	return ""
}

func (f *form) view(st Styles) string {
	width := 0
	for _, fl := range f.fields {
		if n := len(fl.section) + len(fl.key) + 1; n > width {
			width = n
		}
	}
	var b strings.Builder
	for i, fl := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = "> "
		}
		label := fmt.Sprintf("%-*s", width, fl.section+"."+fl.key)
		b.WriteString(marker + st.Key.Render(label) + "  " + fl.input.View() + "\n")
	}
	if len(f.fields) == 0 {
		b.WriteString(st.Help.Render("nothing to edit") + "\n")
	}
	b.WriteString("[tab/↑↓]=move  [enter]=save  [esc]=cancel")
	return b.String()
}
