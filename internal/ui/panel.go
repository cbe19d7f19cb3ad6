package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Field is one labelled line of a Panel
type Field struct {
	Label string
	Value string
}

// Panel is a bordered box of labelled fields with an optional free-text body
type Panel struct {
	Title  string
	Fields []Field
	Body   string
}

// Add appends a field, skipping empty values
func (p *Panel) Add(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	p.Fields = append(p.Fields, Field{Label: label, Value: value})
}

// Render draws the panel with s
func (p *Panel) Render(s Styles) string {
	width := 0
	for _, f := range p.Fields {
		if w := lipgloss.Width(f.Label); w > width {
			width = w
		}
	}

	lines := make([]string, 0, len(p.Fields)+2)
	for _, f := range p.Fields {
		label := s.Label.Render(f.Label + ":" + strings.Repeat(" ", width-lipgloss.Width(f.Label)))
		lines = append(lines, label+" "+f.Value)
	}
	if p.Body != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, p.Body)
	}

	box := s.Panel.Render(strings.Join(lines, "\n"))
	if p.Title == "" {
		return box
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(p.Title), box)
}
