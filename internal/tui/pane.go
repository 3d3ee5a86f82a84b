package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/mcncl/humlplay/internal/models"
)

// pane is a textarea with a selected format. It implements session.Editor.
type pane struct {
	area   textarea.Model
	format models.Format
}

func newPane(f models.Format, placeholder string) *pane {
	area := textarea.New()
	area.Placeholder = placeholder
	area.ShowLineNumbers = true
	area.CharLimit = 0
	area.MaxHeight = 0
	area.Prompt = ""
	return &pane{area: area, format: f}
}

func (p *pane) Content() string {
	return p.area.Value()
}

func (p *pane) SetContent(text string) {
	p.area.SetValue(text)
}

func (p *pane) Format() models.Format {
	return p.format
}

func (p *pane) SetFormat(f models.Format) {
	p.format = f
}
