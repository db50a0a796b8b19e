package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Base        lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Chip        lipgloss.Style
	Field       lipgloss.Style
	Help        lipgloss.Style
	Section     lipgloss.Style
	Key         lipgloss.Style
	Pending     lipgloss.Style
	TableStyles TableStyles
	PopupBox    lipgloss.Style
	PopupTitle  lipgloss.Style

	JSONKey    lipgloss.Style
	JSONString lipgloss.Style
	JSONNumber lipgloss.Style
	JSONBool   lipgloss.Style
	JSONNull   lipgloss.Style
	JSONPunct  lipgloss.Style
}

type TableStyles struct {
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
}

func NewStyles(dark bool) Styles {
	s := Styles{}
	if dark {
		s.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		s.TabActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")).Underline(true)
		s.TabInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.Chip = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("110")).Padding(0, 1)
		s.Field = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		s.Section = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		s.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.JSONKey = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
		s.JSONString = lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
		s.JSONNumber = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
		s.JSONBool = lipgloss.NewStyle().Foreground(lipgloss.Color("176"))
		s.JSONNull = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
		s.JSONPunct = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	} else {
		s.Base = lipgloss.NewStyle()
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		s.TabActive = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27")).Underline(true)
		s.TabInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Chip = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("25")).Padding(0, 1)
		s.Field = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("130"))
		s.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Section = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("166"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.JSONKey = lipgloss.NewStyle().Foreground(lipgloss.Color("25"))
		s.JSONString = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
		s.JSONNumber = lipgloss.NewStyle().Foreground(lipgloss.Color("130"))
		s.JSONBool = lipgloss.NewStyle().Foreground(lipgloss.Color("90"))
		s.JSONNull = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.JSONPunct = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
	s.TableStyles = TableStyles{
		Header:   lipgloss.NewStyle().Bold(true).PaddingRight(1),
		Cell:     lipgloss.NewStyle().PaddingRight(1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
	}
	return s
}
