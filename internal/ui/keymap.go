package ui

import tea "github.com/charmbracelet/bubbletea"

type KeyMap struct {
	NextTab     tea.Key
	PrevTab     tea.Key
	Search      tea.Key
	Expr        tea.Key
	Suggest     tea.Key
	CycleField  tea.Key
	RemoveChip  tea.Key
	ClearChips  tea.Key
	NextPage    tea.Key
	PrevPage    tea.Key
	PageSize    tea.Key
	Open        tea.Key
	Toggle      tea.Key
	Edit        tea.Key
	NewLead     tea.Key
	Export      tea.Key
	ExportJSON  tea.Key
	Reload      tea.Key
	SignOut     tea.Key
	ViewRaw     tea.Key
	AppLogs     tea.Key
	Help        tea.Key
	Back        tea.Key
	Quit        tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab:    tea.Key{Type: tea.KeyTab},
		PrevTab:    tea.Key{Type: tea.KeyShiftTab},
		Search:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'/'}},
		Expr:       tea.Key{Type: tea.KeyRunes, Runes: []rune{':'}},
		Suggest:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'a'}},
		CycleField: tea.Key{Type: tea.KeyRunes, Runes: []rune{'f'}},
		RemoveChip: tea.Key{Type: tea.KeyRunes, Runes: []rune{'x'}},
		ClearChips: tea.Key{Type: tea.KeyRunes, Runes: []rune{'X'}},
		NextPage:   tea.Key{Type: tea.KeyRight},
		PrevPage:   tea.Key{Type: tea.KeyLeft},
		PageSize:   tea.Key{Type: tea.KeyRunes, Runes: []rune{'s'}},
		Open:       tea.Key{Type: tea.KeyEnter},
		Toggle:     tea.Key{Type: tea.KeyRunes, Runes: []rune{' '}},
		Edit:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'E'}},
		NewLead:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'n'}},
		Export:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'e'}},
		ExportJSON: tea.Key{Type: tea.KeyRunes, Runes: []rune{'j'}},
		Reload:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'r'}},
		SignOut:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'O'}},
		ViewRaw:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'v'}},
		AppLogs:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'L'}},
		Help:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'?'}},
		Back:       tea.Key{Type: tea.KeyEsc},
		Quit:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}
