package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#D4A017", "#FF0000", "#04B575", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	stars  lipgloss.Style
	err    lipgloss.Style
	detail lipgloss.Style
	help   lipgloss.Style
}

func NewPalette(t, s, e, d, h string) *Palette {
	return &Palette{
		title:  NewBold(t),
		stars:  NewBold(s),
		err:    NewBold(e),
		detail: NewStyle(d),
		help:   NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
